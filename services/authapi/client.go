package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/session"
)

const maxBodySize = 64 << 10

var ErrEmptyToken = errors.New("auth service returned an empty token")

// Error is a non-2xx answer; Message is the response text as sent by the service.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Client talks to the external auth service. Both endpoints answer with the raw token as plain text.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ session.AuthClient = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: conf.AuthServiceURL,
		http:    &http.Client{Timeout: conf.SyncTimeout},
	}
}

func (c *Client) Signup(ctx context.Context, req session.SignupRequest) (string, error) {
	return c.postToken(ctx, "/auth/signup", req)
}

func (c *Client) Login(ctx context.Context, req session.LoginRequest) (string, error) {
	return c.postToken(ctx, "/auth/login", req)
}

func (c *Client) postToken(ctx context.Context, path string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "encoding request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "POST %s", path)
	}
	defer res.Body.Close()

	text, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return "", errors.Wrapf(err, "reading %s response after %s", path, time.Since(start))
	}
	msg := strings.TrimSpace(string(text))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if msg == "" {
			msg = fmt.Sprintf("Request failed: %d", res.StatusCode)
		}
		return "", &Error{Status: res.StatusCode, Message: msg}
	}
	if msg == "" {
		return "", ErrEmptyToken
	}
	return msg, nil
}
