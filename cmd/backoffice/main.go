package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Anedula/NioiAccess/internal/attendance"
	"github.com/Anedula/NioiAccess/internal/audit"
	"github.com/Anedula/NioiAccess/internal/backup"
	"github.com/Anedula/NioiAccess/internal/booking"
	"github.com/Anedula/NioiAccess/internal/config"
	"github.com/Anedula/NioiAccess/internal/events"
	"github.com/Anedula/NioiAccess/internal/metrics"
	"github.com/Anedula/NioiAccess/internal/notify"
	"github.com/Anedula/NioiAccess/internal/personnel"
	"github.com/Anedula/NioiAccess/internal/pettycash"
	"github.com/Anedula/NioiAccess/internal/pricing"
	"github.com/Anedula/NioiAccess/internal/remind"
	"github.com/Anedula/NioiAccess/internal/server"
	"github.com/Anedula/NioiAccess/internal/store"
	"github.com/Anedula/NioiAccess/internal/works"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("NIOI_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, pinger, backupSource, err := openStore(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open storage error")
	}
	defer st.Close()

	bus := events.NewEventBus()

	hours := booking.WorkingHours{
		StartHour:   cfg.WorkingHours.StartHour,
		EndHour:     cfg.WorkingHours.EndHour,
		SlotMinutes: cfg.WorkingHours.SlotMinutes,
	}
	bookingSvc, err := booking.NewService(ctx, st, bus, hours, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load reservations error")
	}
	worksSvc, err := works.NewService(ctx, st, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load obras error")
	}
	personnelSvc, err := personnel.NewService(ctx, st, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load nómina error")
	}
	attendanceSvc, err := attendance.NewService(ctx, st, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load asistencias error")
	}
	pricingSvc, err := pricing.NewService(ctx, st, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load pedidos de precios error")
	}
	pettycashSvc, err := pettycash.NewService(ctx, st, bus, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load caja chica error")
	}

	auditSvc, err := audit.NewService(ctx, st, audit.DefaultConfig(), &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load activity log error")
	}
	auditSvc.SubscribeTo(bus)
	go auditSvc.Start(ctx)

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("telegram notifier disabled")
		} else {
			notifier.SubscribeTo(bus)
			reminder := remind.NewService(bookingSvc, notifier, remind.DefaultConfig(), &logger)
			go reminder.Start(ctx)
			logger.Info().Int64("chat_id", cfg.Telegram.ChatID).Msg("telegram notifications enabled")
		}
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, pinger, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled && backupSource != "" {
		backupSvc := backup.NewService(backupSource, backup.Config{
			Enabled:       true,
			IntervalHours: cfg.Backup.IntervalHours,
			StoragePath:   cfg.Backup.Path,
			RetentionDays: cfg.Backup.RetentionDays,
		}, &logger)
		go backupSvc.Start(ctx)
	}

	srv := server.New(
		bookingSvc, worksSvc, personnelSvc, attendanceSvc, pricingSvc, pettycashSvc, auditSvc,
		pinger,
		server.Config{
			LoginRatePerMinute: cfg.Login.RatePerMinute,
			LoginBurst:         cfg.Login.Burst,
		},
		&logger,
	)

	logger.Info().Str("backend", cfg.Storage.Backend).Msg("back office started")
	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("API server error")
	}
}

// openStore builds the configured backend and also reports the health
// pinger (nil for the file store) and the path the backup loop snapshots.
func openStore(cfg *config.Config, logger *zerolog.Logger) (store.Store, server.Pinger, string, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		st, err := store.NewSQLiteStore(cfg.Storage.Path, logger)
		if err != nil {
			return nil, nil, "", err
		}
		return st, st, cfg.Storage.Path, nil
	case config.BackendRedis:
		st, err := store.NewRedisStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			return nil, nil, "", err
		}
		// Redis handles its own durability; backups snapshot nothing here.
		return st, st, "", nil
	default:
		st, err := store.NewFileStore(cfg.Storage.DataDir, logger)
		if err != nil {
			return nil, nil, "", err
		}
		return st, nil, cfg.Storage.DataDir, nil
	}
}

func startHealthServer(ctx context.Context, port int, pinger server.Pinger, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if pinger != nil {
			ctxPing, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			if err := pinger.PingContext(ctxPing); err != nil {
				http.Error(w, "storage not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
