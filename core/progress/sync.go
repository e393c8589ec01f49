package progress

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ecoquest/ecoquest/core"
)

// UpdateProgressRequest is the remote "increment percent" payload.
type UpdateProgressRequest struct {
	PathID           int64 `json:"pathId"`
	IncrementPercent int   `json:"incrementPercent"`
}

// PathIncrementPayload maps a local path progress mutation to its remote payload.
// Only numeric path ids exist remotely.
func PathIncrementPayload(pathID string, increment int) (UpdateProgressRequest, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(pathID), 10, 64)
	if err != nil || id <= 0 {
		return UpdateProgressRequest{}, false
	}
	return UpdateProgressRequest{PathID: id, IncrementPercent: increment}, true
}

// Remote is the user/progress service as seen by the Syncer.
type Remote interface {
	InitializeProgress(ctx context.Context, token string, userID int64) error
	PushPathIncrement(ctx context.Context, token string, userID int64, req UpdateProgressRequest) error
}

// Syncer mirrors path progress to the remote service, best-effort.
// Calls run in the background and are never de-duplicated.
type Syncer struct {
	remote      Remote
	logger      core.Logger
	timeout     time.Duration
	wg          sync.WaitGroup
	initialized sync.Map // userID -> struct{}
}

func NewSyncer(remote Remote, logger core.Logger, timeout time.Duration) *Syncer {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Syncer{remote: remote, logger: logger, timeout: timeout}
}

// PathProgressed schedules the remote call and reports whether one was scheduled.
func (s *Syncer) PathProgressed(token string, userID int64, pathID string, increment int) bool {
	if s == nil || s.remote == nil || token == "" || userID <= 0 {
		return false
	}
	req, ok := PathIncrementPayload(pathID, increment)
	if !ok {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if _, done := s.initialized.Load(userID); !done {
			// initializing an already initialized user fails remotely; that's fine
			if err := s.remote.InitializeProgress(ctx, token, userID); err != nil {
				s.logger.Debug("initializing remote progress", err, map[string]interface{}{"userId": userID})
			}
			s.initialized.Store(userID, struct{}{})
		}

		if err := s.remote.PushPathIncrement(ctx, token, userID, req); err != nil {
			s.logger.Warn("syncing path progress", err, map[string]interface{}{
				"userId": userID, "pathId": req.PathID, "incrementPercent": req.IncrementPercent,
			})
		}
	}()
	return true
}

// Wait blocks until every scheduled call has returned.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
