package emailsvc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoquest/ecoquest/core"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:          "EcoQuest",
		DefaultFromEmail: "noreply@ecoquest.local",
		FrontendBaseURL:  "http://localhost:5173",
		SendgridAPIKey:   "SG.test",
	}
}

func TestConsoleService(t *testing.T) {
	var out strings.Builder
	svc := newConsoleService(testConfig(), nil, &out)

	svc.sendMessage(&core.EmailMessage{
		To:           []mail.Address{{Address: "t@example.com"}},
		Subject:      "Approved",
		TextTemplate: template.Must(template.New("t").Parse("sign in at {{.FrontendBaseURL}}/auth")),
	})
	svc.sendMessage(&core.EmailMessage{Subject: "nobody", BodyStr: "dropped"})

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "sign in at http://localhost:5173/auth", sent[0].TextContent)

	printed := out.String()
	assert.Contains(t, printed, `From: "EcoQuest" <noreply@ecoquest.local>`)
	assert.Contains(t, printed, "Subject: [EcoQuest] Approved")
	assert.Contains(t, printed, "To: <t@example.com>")
	assert.Contains(t, printed, "sign in at http://localhost:5173/auth")
}

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock(testConfig())
	svc.SendMessages(&core.EmailMessage{To: []mail.Address{{Address: "a@example.com"}}, BodyStr: "hi"})
	assert.Len(t, svc.Sent(), 1, "synchronous")
}

func TestNewService(t *testing.T) {
	conf := testConfig()
	conf.Debug = true
	_, ok := NewService(conf, nil).(*consoleService)
	assert.True(t, ok)

	conf.Debug = false
	_, ok = NewService(conf, nil).(*sendgridService)
	assert.True(t, ok)

	conf.SendgridAPIKey = ""
	_, ok = NewService(conf, nil).(*consoleService)
	assert.True(t, ok)
}

func TestSendgridService_Send(t *testing.T) {
	var (
		mu      sync.Mutex
		auth    string
		payload map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		if strings.Contains(string(body), "fail@example.com") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	defer func(h string) { host = h }(host)
	host = srv.URL

	svc := NewSendgridService(testConfig(), nil)
	err := svc.sendMessage(&core.EmailMessage{
		To:      []mail.Address{{Address: "t@example.com"}},
		Subject: "Approved",
		BodyStr: "welcome",
	})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, "Bearer SG.test", auth)
	assert.Equal(t, "noreply@ecoquest.local", payload["from"].(map[string]interface{})["email"])
	personalizations := payload["personalizations"].([]interface{})
	assert.Equal(t, "[EcoQuest] Approved", personalizations[0].(map[string]interface{})["subject"])
	mu.Unlock()

	err = svc.sendMessage(&core.EmailMessage{To: []mail.Address{{Address: "fail@example.com"}}, BodyStr: "x"})
	assert.Error(t, err)

	assert.NoError(t, svc.sendMessage(&core.EmailMessage{BodyStr: "no recipients"}))
}
