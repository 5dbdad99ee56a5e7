package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/minmo-hq/offrampd/internal/config"
	"github.com/minmo-hq/offrampd/internal/core/application"
	"github.com/minmo-hq/offrampd/internal/infrastructure/db"
	scheduler "github.com/minmo-hq/offrampd/internal/infrastructure/scheduler/gocron"
	"github.com/minmo-hq/offrampd/internal/interface/web"
	"github.com/minmo-hq/offrampd/pkg/minmo"
	log "github.com/sirupsen/logrus"
)

// nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	log.Info("starting offrampd...")

	if !cfg.DisableTelemetry {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: version,
		}); err != nil {
			log.WithError(err).Warn("failed to initialize error monitoring")
		} else {
			log.RegisterExitHandler(func() {
				sentry.Flush(2 * time.Second)
			})
		}
	}

	dbSvc, err := db.NewService(db.ServiceConfig{
		DbType:   "badger",
		DbConfig: []any{cfg.Datadir, log.New()},
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}

	buildInfo := application.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	client := &minmo.Api{
		URL:     cfg.SwapAPIURL,
		APIKey:  cfg.SwapAPIKey,
		AgentID: cfg.AgentID,
	}

	schedulerSvc := scheduler.NewScheduler()
	rateCache := application.NewRateCache(client, cfg.RateTTL)

	appSvc, err := application.NewService(
		buildInfo, dbSvc, schedulerSvc, client, rateCache,
		minmo.Currency(cfg.FiatCurrency), cfg.PollInterval, cfg.RateRefresh,
	)
	if err != nil {
		log.WithError(err).Fatal(err)
	}

	svc := web.NewService(web.Config{
		HTTPPort:         cfg.HTTPPort,
		DisableTelemetry: cfg.DisableTelemetry,
	}, appSvc)

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		log.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
}
