package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/campushub/api/internal/config"
	"github.com/campushub/api/internal/db"
	httpx "github.com/campushub/api/internal/http"
	"github.com/campushub/api/internal/http/middlewares"
	"github.com/campushub/api/internal/observability"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// tracing is optional; without an endpoint the otel middleware no-ops
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(rootCtx, "campushub-api", cfg.OTELEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	// document store
	client, database, err := db.Connect(cfg.MongoURI, cfg.MongoDB)

	if err != nil {
		log.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}

	defer func() {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	setupCtx, setupCancel := config.WithTimeout(10 * time.Second)

	err = db.EnsureIndexes(setupCtx, database)

	if err != nil {
		setupCancel()
		log.Error("index setup failed", "err", err)
		os.Exit(1)
	}

	err = db.EnsureAdminUser(setupCtx, database, cfg)
	setupCancel()

	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// rate-limit counters: shared via redis when configured, otherwise
	// process-local
	var counterStore middlewares.CounterStore

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})

		defer rdb.Close()

		pingCtx, pingCancel := config.WithTimeout(2 * time.Second)
		err = rdb.Ping(pingCtx).Err()
		pingCancel()

		if err != nil {
			log.Error("redis connect failed", "err", err)
			os.Exit(1)
		}

		counterStore = middlewares.NewRedisCounterStore(rdb)
		log.Info("rate limiter using redis counters", "addr", cfg.RedisAddr)
	} else {
		memStore := middlewares.NewMemoryCounterStore()
		memStore.StartJanitor(rootCtx, 2*time.Minute)
		counterStore = memStore
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	// set up routers
	router := httpx.NewRouter(log, database, cfg, counterStore, prom)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
