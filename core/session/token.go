package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Payload is the decoded middle segment of a session token.
type Payload map[string]interface{}

var urlSafeToStd = strings.NewReplacer("-", "+", "_", "/")

// DecodeClaims decodes the payload segment of a compact "header.payload[.signature]" token.
// The signature is NOT verified: the issuing service is the only verifier and decoded
// claims must only ever drive UI routing.
// It never panics; ok is false for any malformed input.
func DecodeClaims(token string) (Payload, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, false
	}

	seg := urlSafeToStd.Replace(parts[1])
	if rem := len(seg) % 4; rem != 0 {
		seg += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.StdEncoding.DecodeString(seg)
	if err != nil || !utf8.Valid(raw) {
		return nil, false
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return nil, false
	}
	return payload, true
}
