package approval

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/session"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrInvalidEmail = errors.New("email is required")
	ErrNotGatedRole = errors.New("role does not require approval")
)

// Decision is the outcome reported to a Notifier.
type Decision string

const (
	Approved Decision = "APPROVED"
	Rejected Decision = "REJECTED"
)

type (
	// Record is a pending approval request.
	Record struct {
		Email       string       `json:"email"`
		Role        session.Role `json:"role"`
		RequestedAt time.Time    `json:"requestedAt"`
	}

	// Notifier is told about approval decisions, best-effort.
	Notifier interface {
		Notify(ctx context.Context, rec Record, decision Decision) error
	}

	// Registry tracks pending and approved accounts of gated roles.
	// Pending records and the approved set live in two independent slots.
	Registry struct {
		mutex    sync.Mutex
		store    core.KVStore
		logger   core.Logger
		notifier Notifier
	}
)

var _ session.Approvals = (*Registry)(nil)

// NewRegistry returns a Registry. notifier may be nil.
func NewRegistry(store core.KVStore, logger core.Logger, notifier Notifier) *Registry {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Registry{store: store, logger: logger, notifier: notifier}
}

func normalize(email string) string {
	return core.CleanString(email, true /* lower */)
}

// RequestApproval adds a pending record unless one already exists for email.
func (reg *Registry) RequestApproval(ctx context.Context, email string, role session.Role) error {
	email = normalize(email)
	if email == "" {
		return ErrInvalidEmail
	}
	if !role.IsGated() {
		return ErrNotGatedRole
	}

	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	pending := reg.loadPending(ctx)
	for _, rec := range pending {
		if rec.Email == email {
			return nil
		}
	}
	pending = append(pending, Record{Email: email, Role: role, RequestedAt: NowFunc().UTC()})
	reg.save(ctx, core.SlotPendingApprovals, pending)
	return nil
}

// ListPending returns pending records in request order.
func (reg *Registry) ListPending(ctx context.Context) []Record {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	return reg.loadPending(ctx)
}

func (reg *Registry) Pending(ctx context.Context, email string) (Record, bool) {
	email = normalize(email)
	for _, rec := range reg.ListPending(ctx) {
		if rec.Email == email {
			return rec, true
		}
	}
	return Record{}, false
}

// Approve removes the pending record (if any) and adds email to the approved set.
func (reg *Registry) Approve(ctx context.Context, email string) error {
	email = normalize(email)
	if email == "" {
		return ErrInvalidEmail
	}

	reg.mutex.Lock()
	rec, _ := reg.removePending(ctx, email)
	approved := reg.loadApproved(ctx)
	if !core.ContainsString(approved, email) {
		approved = append(approved, email)
		reg.save(ctx, core.SlotApprovedUsers, approved)
	}
	reg.mutex.Unlock()

	reg.notify(rec, Approved)
	return nil
}

// Reject removes the pending record (if any). The approved set is left untouched.
func (reg *Registry) Reject(ctx context.Context, email string) error {
	email = normalize(email)
	if email == "" {
		return ErrInvalidEmail
	}

	reg.mutex.Lock()
	rec, found := reg.removePending(ctx, email)
	reg.mutex.Unlock()

	if found {
		reg.notify(rec, Rejected)
	}
	return nil
}

func (reg *Registry) IsApproved(ctx context.Context, email string) bool {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	return core.ContainsString(reg.loadApproved(ctx), normalize(email))
}

// ListApproved returns the approved emails in approval order.
func (reg *Registry) ListApproved(ctx context.Context) []string {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	return reg.loadApproved(ctx)
}

// removePending must be called with the mutex held.
func (reg *Registry) removePending(ctx context.Context, email string) (Record, bool) {
	pending := reg.loadPending(ctx)
	rec := Record{Email: email}
	found := false
	remaining := pending[:0]
	for _, r := range pending {
		if r.Email == email {
			rec, found = r, true
			continue
		}
		remaining = append(remaining, r)
	}
	if found {
		reg.save(ctx, core.SlotPendingApprovals, remaining)
	}
	return rec, found
}

func (reg *Registry) loadPending(ctx context.Context) []Record {
	pending := make([]Record, 0)
	reg.load(ctx, core.SlotPendingApprovals, &pending)
	if pending == nil {
		pending = make([]Record, 0)
	}
	return pending
}

func (reg *Registry) loadApproved(ctx context.Context) []string {
	approved := make([]string, 0)
	reg.load(ctx, core.SlotApprovedUsers, &approved)
	if approved == nil {
		approved = make([]string, 0)
	}
	return approved
}

// load leaves dest untouched when the slot is absent or unreadable.
func (reg *Registry) load(ctx context.Context, key string, dest interface{}) {
	raw, err := reg.store.Get(ctx, key)
	if err != nil {
		if err != core.ErrSlotNotFound {
			reg.logger.Error("reading "+key, err)
		}
		return
	}
	if err = json.Unmarshal(raw, dest); err != nil {
		reg.logger.Error("decoding "+key, errors.Wrap(err, "corrupted slot"))
	}
}

func (reg *Registry) save(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err == nil {
		err = reg.store.Set(ctx, key, raw)
	}
	if err != nil {
		reg.logger.Error("persisting "+key, err)
	}
}

func (reg *Registry) notify(rec Record, decision Decision) {
	if reg.notifier == nil {
		return
	}
	go func() {
		if err := reg.notifier.Notify(context.Background(), rec, decision); err != nil {
			reg.logger.Warn("notifying approval decision", err, map[string]interface{}{"email": rec.Email, "decision": decision})
		}
	}()
}
