package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/hrms_backend/internal/bus"
	"github.com/Skotchmaster/hrms_backend/internal/config"
	"github.com/Skotchmaster/hrms_backend/internal/es"
	"github.com/Skotchmaster/hrms_backend/internal/fanout"
	"github.com/Skotchmaster/hrms_backend/internal/handlers"
	"github.com/Skotchmaster/hrms_backend/internal/logging"
	mwauth "github.com/Skotchmaster/hrms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/hrms_backend/internal/mykafka"
	"github.com/Skotchmaster/hrms_backend/internal/push"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
	"github.com/Skotchmaster/hrms_backend/internal/search"
	httpserver "github.com/Skotchmaster/hrms_backend/internal/transport/http"
	"github.com/Skotchmaster/hrms_backend/internal/worker"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	users := &repo.UserRepo{DB: db}
	notifications := &repo.NotificationRepo{DB: db}
	subscriptions := &repo.SubscriptionRepo{DB: db}

	eventBus := bus.New()
	pushSvc := push.New(subscriptions, configuration.VAPID_PUBLIC_KEY, configuration.VAPID_PRIVATE_KEY, configuration.VAPID_SUBJECT)

	var producer *mykafka.Producer
	if brokers := configuration.KafkaBrokers(); len(brokers) > 0 {
		producer = mykafka.NewProducer(brokers, configuration.KAFKA_TOPIC)
	}

	var indexer *search.Indexer
	var searchHandler handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		indexer = &search.Indexer{ES: esClient, Index: search.DefaultIndex}
		searchHandler = handlers.SearchHandler{ES: esClient, Index: search.DefaultIndex}
	}

	fanoutSvc := &fanout.Service{
		Users:         users,
		Notifications: notifications,
		Bus:           eventBus,
		Push:          pushSvc,
		Producer:      producer,
		Indexer:       indexer,
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)
	gate := &mwauth.Gate{Users: users, JWTSecret: jwtSecret}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		Gate:                gate,
		AuthHandler:         &handlers.AuthHandler{DB: db, Users: users, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
		UserHandler:         &handlers.UserHandler{Users: users},
		NotificationHandler: &handlers.NotificationHandler{Notifications: notifications},
		PushHandler:         &handlers.PushHandler{Subs: subscriptions, VAPIDPublic: configuration.VAPID_PUBLIC_KEY},
		StreamHandler:       &handlers.StreamHandler{Bus: eventBus},
		HolidayHandler:      &handlers.HolidayHandler{DB: db, Fanout: fanoutSvc},
		LeaveHandler:        &handlers.LeaveHandler{DB: db, Fanout: fanoutSvc},
		SearchHandler:       &searchHandler,
	}
	httpserver.Register(e, &deps)

	workerCtx, stopWorker := context.WithCancel(logging.IntoContext(context.Background(), logger))
	cleanup := &worker.Cleanup{Notifications: notifications, Interval: 24 * time.Hour, RetentionDays: 30}
	go cleanup.Run(workerCtx)

	// No WriteTimeout: the notification stream endpoint holds its response
	// open for the life of the connection.
	srv := &http.Server{
		Addr:        ":8080",
		Handler:     e,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
