package session

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrEmptyToken           = errors.New("empty session token")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSignupFailed         = errors.New("signup failed")
	ErrPendingApproval      = errors.New("your account is pending approval by the admin")
	ErrInvalidAdminLogin    = errors.New("invalid admin credentials")
)

type (
	// AuthClient is the external service issuing session tokens.
	AuthClient interface {
		Signup(ctx context.Context, req SignupRequest) (string, error)
		Login(ctx context.Context, req LoginRequest) (string, error)
	}

	// Approvals is the subset of the approval registry the session flows rely on.
	Approvals interface {
		RequestApproval(ctx context.Context, email string, role Role) error
		IsApproved(ctx context.Context, email string) bool
	}

	// UserDirectory resolves the remote numeric id of a signed in user.
	UserDirectory interface {
		FindUserID(ctx context.Context, token, email string) (int64, error)
	}

	Options struct {
		Store     core.KVStore
		Auth      AuthClient
		Approvals Approvals
		Directory UserDirectory // optional
		Validate  *validator.Validate
		Logger    core.Logger
		Conf      *core.Config
	}

	// Service owns the device's current session: the token slot and the flows that fill it.
	Service struct {
		store       core.KVStore
		auth        AuthClient
		approvals   Approvals
		dir         UserDirectory
		validate    *validator.Validate
		logger      core.Logger
		admin       adminCredentials
		syncTimeout time.Duration
	}
)

func NewService(opts Options) (*Service, error) {
	admin, err := newAdminCredentials(opts.Conf)
	if err != nil {
		return nil, errors.Wrap(err, "loading admin credentials")
	}
	logger := opts.Logger
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Service{
		store:       opts.Store,
		auth:        opts.Auth,
		approvals:   opts.Approvals,
		dir:         opts.Directory,
		validate:    opts.Validate,
		logger:      logger,
		admin:       admin,
		syncTimeout: opts.Conf.SyncTimeout,
	}, nil
}

// Signin stores token as the current session token.
func (svc *Service) Signin(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	return errors.Wrap(svc.store.Set(ctx, core.SlotAuthToken, []byte(token)), "storing session token")
}

// Signout clears the session token and the remote user id.
func (svc *Service) Signout(ctx context.Context) error {
	if err := svc.store.Delete(ctx, core.SlotAuthToken); err != nil {
		return errors.Wrap(err, "clearing session token")
	}
	if err := svc.store.Delete(ctx, core.SlotUserID); err != nil {
		return errors.Wrap(err, "clearing user id")
	}
	return nil
}

func (svc *Service) Token(ctx context.Context) (string, bool) {
	raw, err := svc.store.Get(ctx, core.SlotAuthToken)
	if err != nil {
		if err != core.ErrSlotNotFound {
			svc.logger.Error("reading session token", err)
		}
		return "", false
	}
	token := strings.TrimSpace(string(raw))
	return token, token != ""
}

// Current re-derives the session Claims from the stored token.
func (svc *Service) Current(ctx context.Context) (*Claims, bool) {
	token, ok := svc.Token(ctx)
	if !ok {
		return nil, false
	}
	return ParseSession(token, NowFunc())
}

// UserID returns the remote numeric id resolved after the last login, if any.
func (svc *Service) UserID(ctx context.Context) (int64, bool) {
	raw, err := svc.store.Get(ctx, core.SlotUserID)
	if err != nil {
		if err != core.ErrSlotNotFound {
			svc.logger.Error("reading user id", err)
		}
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (svc *Service) Signup(ctx context.Context, req SignupRequest) (*Claims, error) {
	if err := req.Validate(svc.validate); err != nil {
		return nil, err
	}

	token, err := svc.auth.Signup(ctx, req)
	if err != nil {
		if isPendingApproval(err) {
			return nil, ErrPendingApproval
		}
		svc.logger.Warn("signup rejected by auth service", err, map[string]interface{}{"email": req.Email})
		return nil, errors.Wrap(ErrSignupFailed, err.Error())
	}
	if err = svc.Signin(ctx, token); err != nil {
		return nil, err
	}

	if req.Role.IsGated() {
		if err = svc.approvals.RequestApproval(ctx, req.Email, req.Role); err != nil {
			svc.logger.Error("requesting approval", err, map[string]interface{}{"email": req.Email})
		}
		if err = svc.Signout(ctx); err != nil {
			return nil, err
		}
		return nil, ErrPendingApproval
	}

	claims, ok := ParseSession(token, NowFunc())
	if !ok {
		// the token is opaque to us; fall back to what the user submitted
		claims = &Claims{Email: req.Email, Role: req.Role, FirstName: req.FirstName, LastName: req.LastName}
	}
	svc.resolveUserID(token, claims.Email)
	return claims, nil
}

func (svc *Service) Login(ctx context.Context, req LoginRequest) (*Claims, error) {
	if err := req.Validate(svc.validate); err != nil {
		return nil, err
	}

	token, err := svc.auth.Login(ctx, req)
	if err != nil {
		if isPendingApproval(err) {
			return nil, ErrPendingApproval
		}
		return nil, errors.Wrap(ErrAuthenticationFailed, err.Error())
	}
	if err = svc.Signin(ctx, token); err != nil {
		return nil, err
	}

	claims, ok := ParseSession(token, NowFunc())
	if !ok {
		if err = svc.Signout(ctx); err != nil {
			return nil, err
		}
		return nil, errors.Wrap(ErrAuthenticationFailed, "unreadable session token")
	}
	if claims.Role.IsGated() && !svc.approvals.IsApproved(ctx, claims.Email) {
		if err = svc.Signout(ctx); err != nil {
			return nil, err
		}
		return nil, ErrPendingApproval
	}

	svc.resolveUserID(token, claims.Email)
	return claims, nil
}

// resolveUserID looks up the remote user id in the background; failures are only logged.
func (svc *Service) resolveUserID(token, email string) {
	if svc.dir == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), svc.syncTimeout)
		defer cancel()

		id, err := svc.dir.FindUserID(ctx, token, email)
		if err != nil {
			svc.logger.Warn("resolving remote user id", err, map[string]interface{}{"email": email})
			return
		}
		if err = svc.store.Set(ctx, core.SlotUserID, []byte(strconv.FormatInt(id, 10))); err != nil {
			svc.logger.Error("storing user id", err)
		}
	}()
}

func isPendingApproval(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "PENDING_APPROVAL") || strings.Contains(strings.ToLower(msg), "pending")
}
