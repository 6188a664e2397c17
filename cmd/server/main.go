package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmorrell/narthex/internal/config"
	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/domain/schedule"
	"github.com/jmorrell/narthex/internal/domain/supervisor"
	"github.com/jmorrell/narthex/internal/sqlite"
	"github.com/jmorrell/narthex/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if cfg.Supervisor.SigningKey == "" {
		logger.Error("NARTHEX_SIGNING_KEY is required")
		os.Exit(1)
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	locationRepo := sqlite.NewLocationRepository(db)
	personRepo := sqlite.NewPersonRepository(db)
	scheduleRepo := sqlite.NewScheduleRepository(db)
	attendanceRepo := sqlite.NewAttendanceRepository(db)
	idempotencyRepo := sqlite.NewIdempotencyRepository(db)
	supervisorRepo := sqlite.NewSupervisorRepository(db)
	overrideStore := sqlite.NewOverrideStore(db)

	ledger := location.NewLedger(locationRepo, logger)
	scheduleSvc := schedule.NewService(scheduleRepo, logger)
	codes := checkin.NewCodeGenerator(attendanceRepo, cfg.Checkin.CodeLength)
	engine := checkin.NewEngine(ledger, scheduleSvc, attendanceRepo, personRepo, idempotencyRepo, codes, logger)
	batch := checkin.NewBatch(engine, attendanceRepo, ledger, logger)
	supervisorSvc := supervisor.NewService(
		supervisorRepo,
		overrideStore,
		personRepo,
		attendanceRepo,
		ledger,
		codes,
		supervisor.TokenConfig{
			Issuer:     cfg.Supervisor.Issuer,
			SigningKey: cfg.Supervisor.SigningKey,
			SessionTTL: cfg.Supervisor.SessionTTL,
		},
		logger,
	)

	router := transport.NewRouter(transport.Config{
		Engine:      engine,
		Batch:       batch,
		Ledger:      ledger,
		Schedules:   scheduleSvc,
		Supervisors: supervisorSvc,
		People:      personRepo,
		CampusID:    cfg.Campus.ID,
		RatePerMin:  cfg.Server.RatePerMin,
		Logger:      logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
