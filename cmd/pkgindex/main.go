package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pkgindex/pkgindex/pkg/api"
	"github.com/pkgindex/pkgindex/pkg/auth"
	"github.com/pkgindex/pkgindex/pkg/catalog"
	"github.com/pkgindex/pkgindex/pkg/config"
	"github.com/pkgindex/pkgindex/pkg/metering"
	"github.com/pkgindex/pkgindex/pkg/middleware"
	"github.com/pkgindex/pkgindex/pkg/observability"
	"github.com/pkgindex/pkgindex/pkg/search"
	"github.com/pkgindex/pkgindex/pkg/webhooks"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.LogLevel), os.Stdout)

	db, err := openPostgres(cfg.PostgresURL)
	if err != nil {
		logger.WithError(err).Error("failed to connect to postgres")
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := openRedis(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Error("failed to connect to redis")
		os.Exit(1)
	}
	defer redisClient.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	health := observability.NewHealthChecker(db, redisClient)

	keyStore := auth.NewPostgresKeyStore(db)
	meter := metering.NewMeter(redisClient, logger)
	gate := middleware.NewAPIKeyGate(keyStore, meter, metrics, logger)

	gateway := search.NewGateway(search.NewPostgresService(db))

	endpointStore := webhooks.NewPostgresEndpointStore(db)
	catalogStore := catalog.NewPostgresCatalog(db)
	dispatcher := webhooks.NewDispatcher(endpointStore, logger, metrics,
		webhooks.WithTimeout(cfg.WebhookTimeout))
	builder := webhooks.NewPayloadBuilder(catalogStore)
	hookHandlers := webhooks.NewHandlers(endpointStore, builder, dispatcher, catalogStore)

	server := api.NewServer(api.ServerDeps{
		Gate:     gate,
		State:    cfg.State,
		Gateway:  gateway,
		Meter:    meter,
		Webhooks: hookHandlers,
		Keys:     keyStore,
		Logger:   logger,
		Metrics:  metrics,
		Health:   health,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("starting pkgindex server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Infof("received signal %s, starting graceful shutdown", sig)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func openPostgres(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func openRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
