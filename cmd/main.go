package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	bookingActionHandler "github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers/booking_action"
	getActionHistoryHandler "github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers/get_action_history"
	getBookingsHandler "github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers/get_bookings"
	getNotificationsHandler "github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers/get_notifications"
	refreshBookingsHandler "github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers/refresh_bookings"
	"github.com/m04kA/SMC-DriverBookingSync/internal/api/middleware"
	"github.com/m04kA/SMC-DriverBookingSync/internal/config"
	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
	journalRepo "github.com/m04kA/SMC-DriverBookingSync/internal/infra/storage/journal"
	backendClient "github.com/m04kA/SMC-DriverBookingSync/internal/integrations/backend"
	"github.com/m04kA/SMC-DriverBookingSync/internal/service/executor"
	"github.com/m04kA/SMC-DriverBookingSync/internal/service/notifications"
	"github.com/m04kA/SMC-DriverBookingSync/internal/service/poller"
	"github.com/m04kA/SMC-DriverBookingSync/internal/service/store"
	"github.com/m04kA/SMC-DriverBookingSync/internal/session"
	"github.com/m04kA/SMC-DriverBookingSync/pkg/logger"
	"github.com/m04kA/SMC-DriverBookingSync/pkg/metrics"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-DriverBookingSync...")
	log.Info("Configuration loaded from %s", configPath)

	// Идентичность водителя из сессии
	identity, err := session.Resolve(cfg.Session.DriverID, cfg.Session.Token, cfg.Session.DriverIDClaim)
	if err != nil {
		log.Fatal("Failed to resolve driver session: %v", err)
	}
	if identity.ExpiresAt != nil {
		log.Info("Session token expires at %s", identity.ExpiresAt.Format(time.RFC3339))
	}
	log.Info("Driver session resolved: driver_id=%s", identity.DriverID)

	// Метрики (если включены)
	var (
		metricsCollector *metrics.Metrics
		pollMetrics      poller.Metrics
		actionMetrics    executor.Metrics
	)
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		pollMetrics = metricsCollector
		actionMetrics = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Журнал действий (если включен)
	var (
		journal       *journalRepo.Repository
		actionJournal executor.Journal
	)
	if cfg.Journal.Enabled {
		db, err := sql.Open("postgres", cfg.Journal.DSN())
		if err != nil {
			log.Fatal("Failed to connect to journal database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Journal.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Journal.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Journal.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping journal database: %v", err)
		}
		log.Info("Successfully connected to journal database (host=%s, port=%d, db=%s)",
			cfg.Journal.Host, cfg.Journal.Port, cfg.Journal.DBName)

		journal = journalRepo.NewRepository(db)
		actionJournal = journal
	}

	// Клиент backend маркетплейса
	client := backendClient.NewClient(
		cfg.Backend.URL,
		backendClient.Paths{
			Bookings: cfg.Backend.BookingsPath,
			Approve:  cfg.Backend.ApprovePath,
			Reject:   cfg.Backend.RejectPath,
		},
		identity.Token,
		time.Duration(cfg.Backend.Timeout)*time.Second,
		log,
	)
	log.Info("Backend client initialized (url=%s, timeout=%ds)", cfg.Backend.URL, cfg.Backend.Timeout)

	// Ядро синхронизации
	bookingStore := store.New(log)
	if metricsCollector != nil {
		bookingStore.WithSnapshotMetrics(metricsCollector.SnapshotSize)
	}
	feed := notifications.NewFeed(domain.DefaultNotificationsLimit)

	bookingPoller := poller.New(client, bookingStore, feed, pollMetrics, log, poller.Options{
		DriverID:     identity.DriverID,
		Interval:     cfg.Polling.Interval(),
		FetchTimeout: cfg.Polling.FetchTimeout(),
	})

	actionExecutor := executor.NewExecutor(
		client,
		bookingStore,
		bookingPoller,
		feed,
		actionJournal,
		actionMetrics,
		log,
		executor.Options{
			DriverID:            identity.DriverID,
			Timeout:             cfg.Actions.Timeout(),
			AssumeDefaultStatus: cfg.Actions.AssumeDefaultStatus,
		},
	)

	// Ограничение ручного обновления
	refreshLimiter, err := middleware.NewRateLimiter(
		cfg.RateLimit.Refresh,
		cfg.RateLimit.RedisURL,
		cfg.Metrics.ServiceName+"_refresh",
		identity.DriverID,
	)
	if err != nil {
		log.Fatal("Failed to initialize refresh rate limiter: %v", err)
	}
	defer refreshLimiter.Close()

	// Инициализируем handlers
	getBookings := getBookingsHandler.NewHandler(bookingStore, bookingPoller, actionExecutor, log)
	bookingAction := bookingActionHandler.NewHandler(actionExecutor, log)
	refreshBookings := refreshBookingsHandler.NewHandler(bookingPoller, log)
	getNotifications := getNotificationsHandler.NewHandler(feed, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Бронирования ---
	api.HandleFunc("/bookings", getBookings.Handle).Methods(http.MethodGet)
	api.Handle("/bookings/refresh",
		refreshLimiter.Handler(http.HandlerFunc(refreshBookings.Handle))).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/approve", bookingAction.Approve).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/reject", bookingAction.Reject).Methods(http.MethodPost)

	// --- Уведомления и журнал ---
	api.HandleFunc("/notifications", getNotifications.Handle).Methods(http.MethodGet)
	if journal != nil {
		getActionHistory := getActionHistoryHandler.NewHandler(journal, identity.DriverID, log)
		api.HandleFunc("/actions", getActionHistory.Handle).Methods(http.MethodGet)
	}

	// Запускаем опрос
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	bookingPoller.Start(ctx)
	log.Info("Booking poller started (interval=%s, fetch_timeout=%s)",
		cfg.Polling.Interval(), cfg.Polling.FetchTimeout())

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	// Останавливаем опрос: результаты запросов после остановки отбрасываются
	bookingPoller.Stop()
	log.Info("Booking poller stopped")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
