package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/jmoiron/sqlx"

	"github.com/classtrack/classtrack/apps/api/di"
	echoapi "github.com/classtrack/classtrack/apps/api/echo"
	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/services/scheduler"
)

func main() {
	c := di.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam di.DBLoggerParam,
		db *sqlx.DB,
		server *echoapi.Server,
		digest *scheduler.DigestScheduler,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info("Application initializing", map[string]interface{}{"version": conf.Build, "env": conf.Env})

		dbLogger := dbLoggerParam.Logger
		defer func() {
			if err := db.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		defer apiLogger.Info("Application stopped")

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				apiLogger.Error("debug server closed", err)
			}
		}()

		// =========================================================================
		// Start Absence Digest

		if err := digest.Start(); err != nil {
			apiLogger.Error("starting absence digest", err)
		}
		defer digest.Stop()

		// =========================================================================
		// Start API Service

		go server.Start()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Error("server error", err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info("Start shutdown...", map[string]interface{}{"signal": sig.String()})

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error("could not stop server gracefully", err)

				if err = server.Close(); err != nil {
					apiLogger.Error("could not force stop server", err)
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
