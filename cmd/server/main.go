package main

import (
	"context"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"resourcefinda/internal/env"
	"resourcefinda/internal/loader"
	"resourcefinda/internal/server"
	"resourcefinda/internal/service"
	"resourcefinda/internal/state"
	"resourcefinda/pkg/datastore"
	"resourcefinda/pkg/graceful"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	env.LoadEnv()

	cfg, err := env.LoadServer()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := env.ConfigureLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Fatal("Invalid logging configuration")
	}
	if !log.IsLevelEnabled(log.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	client := datastore.NewClient(
		datastore.WithEndpoint(cfg.DatastoreURL),
		datastore.WithResourceID(cfg.ResourceID),
	)
	refresher := service.NewRefresher(loader.New(client), state.NewStore(), cfg.LoadTimeout)

	// A failed first load is shown as a banner; the server still starts.
	if err := refresher.Refresh(ctx, ""); err != nil {
		log.WithError(err).Warn("Initial load failed, serving empty map")
	}

	srv := server.New(server.Config{
		Addr:                cfg.Addr,
		Render:              cfg.Render,
		ReloadRatePerMinute: cfg.ReloadRatePerMinute,
		Version:             version,
	}, refresher)

	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Fatal("HTTP server failed")
	}
	log.Info("Server stopped")
}
