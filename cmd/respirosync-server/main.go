// Command respirosync-server runs the reproducibility HTTP surface: a
// bare net/http listener wired to a session manager, a Redis snapshot
// cache, and an MQTT ingestion subscriber, standing in for
// original_source/server/app.py and mirroring the teacher's
// config-load → logger-init → service → signal.Notify shutdown shape.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/dfeen87/respirosync/internal/cache"
	"github.com/dfeen87/respirosync/internal/config"
	"github.com/dfeen87/respirosync/internal/httpapi"
	"github.com/dfeen87/respirosync/internal/ingest"
	"github.com/dfeen87/respirosync/internal/logging"
	"github.com/dfeen87/respirosync/internal/session"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting respirosync-server")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := cache.NewRedisSnapshotStore(redisClient)
	snapshots := cache.NewSnapshotCache(store, cfg.Redis.TTL, log)

	manager := session.NewManager(log)

	subscriber, err := ingest.NewSubscriber(cfg.MQTT, manager, log)
	if err != nil {
		log.Warn("mqtt ingestion disabled: could not connect to broker", zap.Error(err))
	} else if err := subscriber.Start(cfg.MQTT.Topic, cfg.MQTT.QoS); err != nil {
		log.Warn("mqtt ingestion disabled: could not subscribe", zap.Error(err))
	} else {
		defer subscriber.Stop()
	}

	handler := httpapi.New(manager, snapshots, cfg.HTTP.APIToken, log)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}

	log.Info("respirosync-server stopped")
}
