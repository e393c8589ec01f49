package main

import (
	"context"
	"fmt"
	"log"

	dig_container "github.com/ecoquest/ecoquest/apps/api/di/dig"
	echoapi "github.com/ecoquest/ecoquest/apps/api/echo"
	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/progress"
	logsvc "github.com/ecoquest/ecoquest/services/logger"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		logger *logsvc.RollbarLogger,
		storeParam dig_container.StoreParam,
		syncer *progress.Syncer,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build), map[string]interface{}{
			"env": conf.Env, "storage": conf.Storage.Driver,
		})

		defer logger.Sync()
		defer func() {
			if err := storeParam.Closer.Close(); err != nil {
				logger.Error("closing storage", err)
			}
		}()
		defer syncer.Wait()
		defer logger.Info("Application stopped")

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
