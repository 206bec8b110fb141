package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/crewdesk/internal/api"
	"github.com/terraincognita07/crewdesk/internal/config"
	"github.com/terraincognita07/crewdesk/internal/db"
	"github.com/terraincognita07/crewdesk/internal/metrics"
	"github.com/terraincognita07/crewdesk/internal/notify"
	"github.com/terraincognita07/crewdesk/internal/ratelimit"
	"github.com/terraincognita07/crewdesk/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	authFailureLimit  = 8
	authFailureWindow = 15 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

type server struct {
	app        *fiber.App
	dispatcher *notify.Dispatcher
	closers    []func() error
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	srv, err := newServer(cfg, log)
	if err != nil {
		return err
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("crewdesk listening",
		zap.String("addr", ":"+cfg.Port),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("mail_transport", cfg.Mail.Transport),
		zap.String("tz", cfg.Location.String()),
	)
	if err := srv.app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newServer(cfg config.Config, log *zap.Logger) (*server, error) {
	srv := &server{}

	database, err := db.Open(databaseOptions(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	srv.closers = append(srv.closers, sqlCloser(database))

	intake, err := newIntakeStore(cfg, database, log)
	if err != nil {
		srv.close()
		return nil, err
	}
	if intake.closer != nil {
		srv.closers = append(srv.closers, intake.closer)
	}

	sender, err := notify.NewSender(cfg.Mail, log)
	if err != nil {
		srv.close()
		return nil, fmt.Errorf("mail transport init failed: %w", err)
	}

	collectors := metrics.New()
	srv.dispatcher = notify.NewDispatcher(sender, notify.DispatcherOptions{
		From:     cfg.Mail.From,
		To:       cfg.Mail.NotifyTo,
		Retries:  cfg.Mail.RetryAttempts,
		Recorder: collectors,
	}, log)

	store := newRateLimitStore(cfg, log)
	if closer, ok := store.(interface{ Close() error }); ok {
		srv.closers = append(srv.closers, closer.Close)
	}

	handler, err := api.NewHandler(api.Options{
		Database:     database,
		Intake:       intake.store,
		SecretKey:    cfg.SecretKey,
		Location:     cfg.Location,
		CookieSecure: cfg.CookieSecure,
		StoreTimeout: cfg.StoreTimeout,
		Logger:       log,
		Metrics:      collectors,
		Notifier:     srv.dispatcher,
		LeadLimiter:  ratelimit.New(store, "leads", cfg.LeadRateLimit, cfg.LeadRateWindow, log),
		AuthLimiter:  ratelimit.New(store, "auth", authFailureLimit, authFailureWindow, log),
	})
	if err != nil {
		_ = sender.Close()
		srv.close()
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	srv.app = newApp(handler, cfg.CookieSecure)
	return srv, nil
}

func newApp(handler *api.Handler, cookieSecure bool) *fiber.App {
	app := fiber.New(api.AppConfig())

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(csrf.New(csrfMiddlewareConfig(cookieSecure)))

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "crewdesk_csrf",
		CookieSameSite: "Lax",
		// The browser client echoes the cookie value in the header.
		CookieHTTPOnly: false,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
		Expiration:     2 * time.Hour,
	}
}

func (srv *server) shutdown(ctx context.Context) error {
	var errs []error
	if err := srv.app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	if err := srv.dispatcher.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := srv.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (srv *server) close() error {
	var errs []error
	for index := len(srv.closers) - 1; index >= 0; index-- {
		if err := srv.closers[index](); err != nil {
			errs = append(errs, err)
		}
	}
	srv.closers = nil
	return errors.Join(errs...)
}

type intakeStore struct {
	store  services.LeadIntakeStore
	closer func() error
}

// newIntakeStore opens the restricted intake credential when one is
// configured for Postgres; otherwise public leads use the main connection.
func newIntakeStore(cfg config.Config, database *gorm.DB, log *zap.Logger) (intakeStore, error) {
	if cfg.DBDriver != config.DriverPostgres || cfg.IntakeDSN() == cfg.DatabaseDSN {
		return intakeStore{store: db.NewLeadIntakeRepository(database)}, nil
	}

	intakeDB, err := db.OpenPostgresIntake(cfg.IntakeDSN(), log)
	if err != nil {
		return intakeStore{}, fmt.Errorf("intake database init failed: %w", err)
	}
	return intakeStore{store: db.NewLeadIntakeRepository(intakeDB), closer: sqlCloser(intakeDB)}, nil
}

func newRateLimitStore(cfg config.Config, log *zap.Logger) ratelimit.Store {
	if cfg.Redis.Addr == "" {
		return ratelimit.NewMemoryStore()
	}
	log.Info("rate limits shared through redis", zap.String("addr", cfg.Redis.Addr))
	return ratelimit.NewRedisStore(ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password))
}

func sqlCloser(database *gorm.DB) func() error {
	return func() error {
		sqlDB, err := database.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}
