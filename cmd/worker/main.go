// Command worker archives detection events from NATS into Postgres so the
// API process never blocks a camera stream on event persistence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/facepay/internal/config"
	"github.com/your-org/facepay/internal/models"
	"github.com/your-org/facepay/internal/observability"
	"github.com/your-org/facepay/internal/queue"
	"github.com/your-org/facepay/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging)

	if cfg.NATS.URL == "" {
		slog.Error("worker requires nats.url")
		os.Exit(1)
	}

	slog.Info("starting facepay event worker", "workers", cfg.Worker.Concurrency)

	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeEvents(ctx, "facepay-archive", func(ctx context.Context, evt *models.DetectionEvent) error {
		if err := db.CreateEvent(ctx, evt); err != nil {
			return fmt.Errorf("archive event %s: %w", evt.ID, err)
		}
		observability.EventsArchived.WithLabelValues(evt.Type).Inc()
		slog.Debug("event archived", "id", evt.ID, "type", evt.Type, "label", evt.Label)
		return nil
	}, cfg.Worker.Concurrency)
	if err != nil {
		slog.Error("start event consumer", "error", err)
		os.Exit(1)
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		addr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
		slog.Info("worker metrics listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	cancel()
	time.Sleep(2 * time.Second)
	slog.Info("worker stopped")
}
