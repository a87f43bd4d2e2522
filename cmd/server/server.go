package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campuskit/calsync/internal/calendar/httpapi"
	"github.com/campuskit/calsync/internal/controller/http/syncapi"
	"github.com/campuskit/calsync/internal/reconciler"
	mappingSqlite "github.com/campuskit/calsync/internal/repositories/mapping/sqlite"
	rosterSqlite "github.com/campuskit/calsync/internal/repositories/roster/sqlite"
	"github.com/campuskit/calsync/pkg/common/config"
	"github.com/campuskit/calsync/pkg/common/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("info").Fatal("load config: %v", err)
	}
	log := logger.New(os.Stdout, cfg.LogLevel, !cfg.LogJSON)
	log.Info("starting calendar sync service")

	mappingRepo, err := mappingSqlite.NewSQLiteRepo(cfg.MappingDBPath)
	if err != nil {
		log.Fatal("init mapping repo: %v", err)
	}
	rosterRepo, err := rosterSqlite.NewSQLiteRepo(cfg.RosterDBPath)
	if err != nil {
		log.Fatal("init roster repo: %v", err)
	}

	aclClient := httpapi.NewClient(httpapi.Config{
		BaseURL:   cfg.CalendarBaseURL,
		AppID:     cfg.CalendarAppID,
		AppSecret: cfg.CalendarAppSecret,
		Timeout:   cfg.CalendarTimeout,
	}, log)

	opts := reconciler.Options{
		EnableRemovals: cfg.EnableRemovals,
		ReconcileRoles: cfg.ReconcileRoles,
		Concurrency:    cfg.SyncConcurrency,
	}
	rec := reconciler.NewReconciler(rosterRepo, aclClient, opts, log)
	batch := reconciler.NewBatchReconciler(rec, opts.Concurrency, log)

	h := syncapi.NewHandler(mappingRepo, rosterRepo, rec, batch, log)
	router := chi.NewRouter()
	router.Use(middleware.RequestSize(1 << 20))
	router.Use(middleware.Recoverer)
	router.Mount("/", h.Router())

	addr := ":" + cfg.Port
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Info("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen: %v", err)
		}
	}()

	// Optional interval sync loop; an external scheduler hitting
	// /api/sync/run is the usual driver, but small deployments can let the
	// service pace itself.
	loopCtx, loopCancel := context.WithCancel(context.Background())
	defer loopCancel()
	if cfg.SyncInterval > 0 {
		go runSyncLoop(loopCtx, cfg.SyncInterval, mappingRepo, batch, log)
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down...")
	loopCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown: %v", err)
	}
	mappingRepo.Disconnect()
	rosterRepo.Disconnect()
	log.Info("server stopped")
}

func runSyncLoop(ctx context.Context, interval time.Duration, mappings *mappingSqlite.SQLiteRepo, batch *reconciler.BatchReconciler, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info("interval sync enabled: every %s", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ms, err := mappings.GetValidCalendarMappings(ctx)
			if err != nil {
				log.Error("interval sync: fetch mappings: %v", err)
				continue
			}
			batch.SyncMultipleCourses(ctx, ms)
		}
	}
}
