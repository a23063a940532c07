package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/api"
	"workshop-payroll-bot/internal/client"
	"workshop-payroll-bot/internal/config"
	"workshop-payroll-bot/internal/database"
	"workshop-payroll-bot/internal/handler"
	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/repository"
	"workshop-payroll-bot/internal/service"
	"workshop-payroll-bot/pkg/telegram"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetAppConfig()
	logging.SetLevel(cfg.LogLevel)
	logrus.Info("Config initialized...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		backend client.Backend
		server  *http.Server
		closeDB func()
	)

	if cfg.BackendURL != "" {
		// Remote mode: the API and the database live elsewhere.
		if cfg.TelegramToken == "" {
			logrus.Fatal("BACKEND_URL is set but TELEGRAM_BOT_TOKEN is empty: nothing to run")
		}
		backend = client.NewHTTPBackend(cfg.BackendURL, nil)
		logrus.WithField("backend_url", cfg.BackendURL).Info("Using remote backend")
	} else {
		svc, cleanup := setupService(cfg)
		closeDB = cleanup
		backend = svc

		server = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(svc, logging.New(), api.RouterOptions{AllowedOrigins: cfg.AllowedOrigins}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logrus.WithField("addr", cfg.HTTPAddr).Info("API server started")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.WithError(err).Fatal("API server failed")
			}
		}()
	}

	var botHandler *handler.Handler
	if cfg.TelegramToken != "" {
		tg, err := telegram.NewClient(cfg.TelegramToken, cfg.BotDebug)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create Telegram client")
		}
		logrus.Infof("Authorized on account %s", tg.Bot.Self.UserName)

		botHandler = handler.NewHandler(tg.Bot, backend, cfg.ExportDir)
		go botHandler.HandleUpdates(ctx, tg.Updates())
		defer tg.Stop()
		logrus.Info("Bot started. Press Ctrl+C to stop.")
	} else {
		logrus.Warn("TELEGRAM_BOT_TOKEN is empty: running the API only")
	}

	<-ctx.Done()
	logrus.Info("Shutting down...")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("API server shutdown")
		}
		cancel()
	}
	if botHandler != nil {
		botHandler.Wait()
	}
	if closeDB != nil {
		closeDB()
	}

	logrus.Info("Stopped gracefully")
}

func setupService(cfg *config.AppConfig) (*service.PayrollService, func()) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	workplaceRepo, err := repository.NewGormWorkplaceRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create workplace repository")
	}
	workerRepo, err := repository.NewGormWorkerRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create worker repository")
	}
	weekRepo, err := repository.NewGormWeekRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create week repository")
	}
	recordRepo, err := repository.NewGormWeekRecordRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create week record repository")
	}

	svc := service.NewPayrollService(
		workplaceRepo,
		workerRepo,
		weekRepo,
		recordRepo,
		service.WithSchedule(cfg.Schedule),
	)

	return svc, func() {
		if err := database.Close(db); err != nil {
			logrus.WithError(err).Warn("Error closing database")
		}
	}
}
