package userapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/progress"
	"github.com/ecoquest/ecoquest/core/session"
)

const maxBodySize = 1 << 20

var ErrUserNotFound = errors.New("user not found")

// StatusError is a non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: request failed: %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Client talks to the external user/progress service with bearer auth.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
}

var (
	_ progress.Remote       = (*Client)(nil)
	_ session.UserDirectory = (*Client)(nil)
)

func NewClient(conf *core.Config, validate *validator.Validate) *Client {
	return &Client{
		baseURL:  conf.UserServiceURL,
		http:     &http.Client{Timeout: conf.SyncTimeout},
		validate: validate,
	}
}

// Progress

func (c *Client) InitializeProgress(ctx context.Context, token string, userID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/progress/initialize/%d", userID), token, nil, nil)
}

func (c *Client) UpdateProgress(ctx context.Context, token string, userID int64, req progress.UpdateProgressRequest) (*UserProgress, error) {
	var out UserProgress
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/progress/update/%d", userID), token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PushPathIncrement is UpdateProgress for callers that only care about the outcome.
func (c *Client) PushPathIncrement(ctx context.Context, token string, userID int64, req progress.UpdateProgressRequest) error {
	_, err := c.UpdateProgress(ctx, token, userID, req)
	return err
}

func (c *Client) Paths(ctx context.Context, token string) ([]LearningPath, error) {
	out := make([]LearningPath, 0)
	if err := c.do(ctx, http.MethodGet, "/api/progress/paths", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UserProgress(ctx context.Context, token string, userID int64) ([]UserProgress, error) {
	out := make([]UserProgress, 0)
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/progress/user/%d", userID), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Achievements(ctx context.Context, token string, userID int64) (*Achievements, error) {
	var out Achievements
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/progress/achievements/%d", userID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context, token string, userID int64) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/progress/stats/%d", userID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users

func (c *Client) PendingUsers(ctx context.Context, token string) ([]User, error) {
	out := make([]User, 0)
	if err := c.do(ctx, http.MethodGet, "/users/pending", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ApproveUser(ctx context.Context, token string, id int64) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d/approve", id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RejectUser(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), token, nil, nil)
}

func (c *Client) CreateAdmin(ctx context.Context, token string, req CreateUserRequest) (*User, error) {
	req.Email = core.CleanString(req.Email, true /* lower */)
	req.Role = session.ParseRole(string(req.Role))
	if err := c.validate.Struct(req); err != nil {
		return nil, err
	}
	var out User
	if err := c.do(ctx, http.MethodPost, "/users/admin", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FindUserByEmail(ctx context.Context, token, email string) (*User, error) {
	email = core.CleanString(email)
	if email == "" {
		return nil, ErrUserNotFound
	}
	var out User
	if err := c.do(ctx, http.MethodGet, "/users?email="+url.QueryEscape(email), token, nil, &out); err != nil {
		if se, ok := errors.Cause(err).(*StatusError); ok && se.Status == http.StatusNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) FindUserID(ctx context.Context, token, email string) (int64, error) {
	usr, err := c.FindUserByEmail(ctx, token, email)
	if err != nil {
		return 0, err
	}
	return usr.ID, nil
}

// do sends payload as JSON and decodes + validates the answer into out (when not nil).
func (c *Client) do(ctx context.Context, method, path, token string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return errors.Wrapf(err, "reading %s %s", method, path)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: res.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}

	if err = json.Unmarshal(raw, out); err != nil {
		return core.NewValidationError(errors.Wrapf(err, "decoding %s %s", method, path))
	}
	if err = c.validateResponse(out); err != nil {
		return core.NewValidationError(errors.Wrapf(err, "invalid %s %s response", method, path))
	}
	return nil
}

func (c *Client) validateResponse(out interface{}) error {
	v := reflect.Indirect(reflect.ValueOf(out))
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			if err := c.validate.Struct(v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return c.validate.Struct(v.Interface())
}
