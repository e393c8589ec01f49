package main

import (
	"context"
	"log"
	"os"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/approval"
	"github.com/ecoquest/ecoquest/core/session"
	emailsvc "github.com/ecoquest/ecoquest/services/email"
	logsvc "github.com/ecoquest/ecoquest/services/logger"
	"github.com/ecoquest/ecoquest/storage/database"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	errAndDie(err)
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	defer logger.Sync()

	// set up storage
	ctx, cancel := context.WithTimeout(context.Background(), conf.SyncTimeout)
	store, closer, err := database.Open(ctx, conf)
	cancel()
	errAndDie(err)
	defer closer.Close()

	// set up services
	mailSvc := emailsvc.NewService(conf, logger)
	registry := approval.NewRegistry(store, logger, approval.NewMailNotifier(mailSvc, conf.FrontendBaseURL))
	sessionSvc, err := session.NewService(session.Options{
		Store:     store,
		Approvals: registry,
		Validate:  core.NewValidator(core.NewTranslator()),
		Logger:    logger,
		Conf:      conf,
	})
	errAndDie(err)

	// start CLI
	cli := commandLine{
		registry: registry,
		session:  sessionSvc,
		out:      os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err, map[string]interface{}{"args": os.Args[1:]})
		}
		closer.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
