package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/dig"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/access"
	"github.com/ecoquest/ecoquest/core/approval"
	"github.com/ecoquest/ecoquest/core/discussion"
	"github.com/ecoquest/ecoquest/core/learning"
	"github.com/ecoquest/ecoquest/core/progress"
	"github.com/ecoquest/ecoquest/core/session"
	"github.com/ecoquest/ecoquest/services/userapi"
)

type (
	// RemoteUsers approves or rejects accounts on the user service.
	RemoteUsers interface {
		ApproveUser(ctx context.Context, token string, id int64) (*userapi.User, error)
		RejectUser(ctx context.Context, token string, id int64) error
	}

	ServerDeps struct {
		dig.In

		Conf        *core.Config
		Logger      core.Logger
		Session     *session.Service
		Gate        *access.Gate
		Progress    *progress.Store
		Syncer      *progress.Syncer `optional:"true"`
		Approvals   *approval.Registry
		RemoteUsers RemoteUsers `optional:"true"`
		Board       *discussion.Board
		Learning    *learning.Service
		Validate    *validator.Validate
		Translator  ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if conf.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	}
	s.app.Use(sessionMiddleware(s.deps.Session))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", home(conf.AppName))

	v1 := s.app.Group("/v1")
	registerSessionAPI(v1, s.deps)
	registerProgressAPI(v1, s.deps)
	registerApprovalAPI(v1, s.deps)
	registerDiscussionAPI(v1, s.deps)
	registerLearningAPI(v1, s.deps)
}

// Start blocks until the server stops. Startup errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(appName string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+appName+"!")
	}
}
