package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/config"
	"github.com/mamadbah2/mandi/internal/repository/mongodb"
	"github.com/mamadbah2/mandi/internal/repository/sheets"
	"github.com/mamadbah2/mandi/internal/scheduler"
	"github.com/mamadbah2/mandi/internal/seed"
	"github.com/mamadbah2/mandi/internal/server/handlers"
	"github.com/mamadbah2/mandi/internal/server/router"
	"github.com/mamadbah2/mandi/internal/service/aggregator"
	commandsvc "github.com/mamadbah2/mandi/internal/service/commands"
	"github.com/mamadbah2/mandi/internal/service/pricing"
	reportingsvc "github.com/mamadbah2/mandi/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/mandi/internal/service/whatsapp"
	"github.com/mamadbah2/mandi/internal/store"
	whatsappclient "github.com/mamadbah2/mandi/pkg/clients/whatsapp"
	"github.com/mamadbah2/mandi/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level, "mandi"))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	seedValue := cfg.Data.Seed
	if seedValue == 0 {
		seedValue = uint64(time.Now().UnixNano())
	}

	st := store.New(store.WithLogger(logger.Named(baseLogger, "store")))
	catalog := seed.DefaultCatalog()
	seeder := seed.NewSeeder(catalog, rand.New(rand.NewPCG(seedValue, seedValue^0x9e3779b97f4a7c15)), time.Now, logger.Named(baseLogger, "seed"))
	if err := seeder.Load(st); err != nil {
		baseLogger.Fatal("failed to seed store", zap.Error(err))
	}
	baseLogger.Info("store ready", zap.Uint64("seed", seedValue))

	chartLocation, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Scheduler.Timezone), zap.Error(err))
	}
	aggregatorSvc := aggregator.NewService(st, cfg.Data.NearbyLimit, logger.Named(baseLogger, "svc.aggregator")).InLocation(chartLocation)
	pricingSvc := pricing.NewService(st, catalog, rand.New(rand.NewPCG(seedValue+1, seedValue)), time.Now, logger.Named(baseLogger, "svc.pricing"))

	var (
		sinks   []reportingsvc.SnapshotSink
		archive handlers.SnapshotArchive
	)

	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(baseLogger, "repo.mongodb"))
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sinks = append(sinks, mongoRepo)
		archive = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI missing, snapshots not archived to mongodb")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sinks = append(sinks, sheets.NewSnapshotWriter(sheetsRepo))
	} else {
		baseLogger.Warn("google sheets not configured, snapshots not mirrored")
	}

	reportingSvc := reportingsvc.NewService(aggregatorSvc, st, sinks, logger.Named(baseLogger, "svc.reporting"))
	commandDispatcher := commandsvc.NewService(reportingSvc, st, logger.Named(baseLogger, "svc.commands"))

	messagingOpts := whatsappsvc.Options{
		VerifyToken: cfg.WhatsApp.VerifyToken,
		Dispatcher:  commandDispatcher,
		Directory:   st,
		Sessions:    whatsappsvc.NewSessionManager(),
		Logger:      logger.Named(baseLogger, "svc.whatsapp"),
	}
	if cfg.WhatsApp.Enabled() {
		messagingOpts.Client = whatsappclient.NewClient(whatsappclient.Options{
			BaseURL:       cfg.WhatsApp.BaseURL,
			APIVersion:    cfg.WhatsApp.APIVersion,
			AccessToken:   cfg.WhatsApp.AccessToken,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		})
	} else {
		baseLogger.Warn("whatsapp credentials missing, messaging disabled")
	}
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(messagingOpts)

	engine := router.New(router.Handlers{
		Dashboard:       handlers.NewDashboardHandler(aggregatorSvc, logger.Named(baseLogger, "handlers.dashboard")),
		Catalog:         handlers.NewCatalogHandler(st, aggregatorSvc, cfg.Data.NearbyLimit, logger.Named(baseLogger, "handlers.catalog")),
		Prices:          handlers.NewPriceHandler(st, aggregatorSvc, pricingSvc, logger.Named(baseLogger, "handlers.prices")),
		Recommendations: handlers.NewRecommendationHandler(st, logger.Named(baseLogger, "handlers.recommendations")),
		Snapshots:       handlers.NewSnapshotHandler(archive, logger.Named(baseLogger, "handlers.snapshots")),
		Webhook:         handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp")),
	}, logger.Named(baseLogger, "router"))

	jobs := scheduler.Jobs{Pricing: pricingSvc, Reporting: reportingSvc}
	if messagingSvc.Enabled() {
		jobs.Alerts = messagingSvc
	}
	sched, err := scheduler.NewScheduler(cfg.Scheduler, jobs, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
