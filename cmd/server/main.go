package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-trust/internal/bus"
	"github.com/MKhiriev/go-vault-trust/internal/config"
	handlerHTTP "github.com/MKhiriev/go-vault-trust/internal/handler/http"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/server"
	"github.com/MKhiriev/go-vault-trust/internal/service"
	"github.com/MKhiriev/go-vault-trust/internal/store"
	"github.com/MKhiriev/go-vault-trust/internal/worker"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("go-vault-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := log.WithContext(context.Background())

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to postgres")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error running migrations")
	}

	revocationBus := newRevocationBus(ctx, cfg.Storage.Redis, log)
	defer revocationBus.Close()

	repositories := store.NewRepositories(db, log)
	services := service.NewServices(repositories, revocationBus, *cfg, log)

	sweeper := worker.NewSweeper(services.GrantService, cfg.Workers.SweepInterval, log)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	handler := handlerHTTP.NewHandler(services, log)
	srv, err := server.NewServer(handler.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

// newRevocationBus prefers redis when a URL is configured; otherwise the
// in-process bus serves single-instance deployments.
func newRevocationBus(ctx context.Context, cfg config.Redis, log *logger.Logger) bus.RevocationBus {
	if cfg.URL == "" {
		log.Info().Msg("no redis configured, using in-process revocation bus")
		return bus.NewMemoryBus(log)
	}

	redisBus, err := bus.NewRedisBus(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to redis")
	}
	return redisBus
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
