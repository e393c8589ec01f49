package dig_container

import (
	"context"
	"io"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/ecoquest/ecoquest/apps/api/echo"
	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/access"
	"github.com/ecoquest/ecoquest/core/approval"
	"github.com/ecoquest/ecoquest/core/discussion"
	"github.com/ecoquest/ecoquest/core/learning"
	"github.com/ecoquest/ecoquest/core/progress"
	"github.com/ecoquest/ecoquest/core/session"
	"github.com/ecoquest/ecoquest/services/authapi"
	emailsvc "github.com/ecoquest/ecoquest/services/email"
	logsvc "github.com/ecoquest/ecoquest/services/logger"
	"github.com/ecoquest/ecoquest/services/userapi"
	"github.com/ecoquest/ecoquest/services/wiki"
	"github.com/ecoquest/ecoquest/storage/database"
)

// StoreParam is the opened slot store and the closer releasing it.
type StoreParam struct {
	dig.In
	Store  core.KVStore
	Closer io.Closer
}

type sessionParams struct {
	dig.In
	Conf      *core.Config
	Store     core.KVStore
	Auth      session.AuthClient
	Approvals *approval.Registry
	Directory session.UserDirectory `optional:"true"`
	Validate  *validator.Validate
	Logger    core.Logger
}

func newRollbarLogger(conf *core.Config) (*logsvc.RollbarLogger, error) {
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		return nil, errors.Wrap(err, "building zap logger")
	}
	return logsvc.NewRollbarLogger(zl.Named("api"), conf), nil
}

func newLogger(l *logsvc.RollbarLogger) core.Logger { return l }

func newStore(conf *core.Config, logger core.Logger) (core.KVStore, io.Closer) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.SyncTimeout)
	defer cancel()

	store, closer, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal("setting up storage", err, map[string]interface{}{"driver": conf.Storage.Driver})
	}
	return store, closer
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	session.InitValidators(validate, translator)
	return validate
}

func newNotifier(mailSvc core.EmailService, conf *core.Config) approval.Notifier {
	return approval.NewMailNotifier(mailSvc, conf.FrontendBaseURL)
}

func newSession(p sessionParams) (*session.Service, error) {
	return session.NewService(session.Options{
		Store:     p.Store,
		Auth:      p.Auth,
		Approvals: p.Approvals,
		Directory: p.Directory,
		Validate:  p.Validate,
		Logger:    p.Logger,
		Conf:      p.Conf,
	})
}

func newGate(reg *approval.Registry, conf *core.Config) *access.Gate {
	return access.NewGate(reg, conf.AdminEmail)
}

func newProgressStore(kv core.KVStore, logger core.Logger, validate *validator.Validate, conf *core.Config) *progress.Store {
	return progress.NewStore(kv, logger, validate, conf.TotalPaths)
}

func newSyncer(remote progress.Remote, logger core.Logger, conf *core.Config) *progress.Syncer {
	return progress.NewSyncer(remote, logger, conf.SyncTimeout)
}

func newLearning(source learning.Source, kv core.KVStore, logger core.Logger, conf *core.Config) *learning.Service {
	return learning.NewService(source, kv, logger, conf.LearningTimeout)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newRollbarLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newStore))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newNotifier))
	must(c.Provide(approval.NewRegistry))
	must(c.Provide(authapi.NewClient, dig.As(new(session.AuthClient))))
	must(c.Provide(userapi.NewClient, dig.As(
		new(session.UserDirectory), new(progress.Remote), new(echoapi.RemoteUsers),
	)))
	must(c.Provide(wiki.NewClient, dig.As(new(learning.Source))))
	must(c.Provide(newSession))
	must(c.Provide(newGate))
	must(c.Provide(newProgressStore))
	must(c.Provide(newSyncer))
	must(c.Provide(discussion.NewBoard))
	must(c.Provide(newLearning))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
