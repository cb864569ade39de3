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

	"github.com/gin-gonic/gin"

	"github.com/your-org/facepay/internal/api"
	"github.com/your-org/facepay/internal/api/handlers"
	"github.com/your-org/facepay/internal/api/ws"
	"github.com/your-org/facepay/internal/config"
	"github.com/your-org/facepay/internal/models"
	"github.com/your-org/facepay/internal/observability"
	"github.com/your-org/facepay/internal/queue"
	"github.com/your-org/facepay/internal/session"
	"github.com/your-org/facepay/internal/storage"
	"github.com/your-org/facepay/internal/vision"
	"github.com/your-org/facepay/internal/wallet"
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

	slog.Info("starting facepay API", "port", cfg.Server.Port, "detector", cfg.Vision.Detector, "camera", cfg.Camera.Source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(ctx); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	slot, redisClient, err := newResultSlot(ctx, *cfg)
	if err != nil {
		slog.Error("create detection slot", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	detector, closeDetector, err := newDetector(cfg.Vision)
	if err != nil {
		slog.Error("create face detector", "error", err)
		os.Exit(1)
	}
	defer closeDetector()

	hub := ws.NewHub()
	go hub.Run(ctx)

	checks := map[string]handlers.Check{
		"postgres": db.Ping,
		"minio":    minioStore.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	// Events go through NATS when configured so other processes can follow
	// them; otherwise they are archived and broadcast in-process.
	var events session.EventPublisher = localEvents{archive: db, hub: hub}
	if cfg.NATS.URL != "" {
		producer, err := queue.NewProducer(cfg.NATS.URL)
		if err != nil {
			slog.Error("connect to nats", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		if err := producer.EnsureStreams(ctx); err != nil {
			slog.Warn("ensure nats streams", "error", err)
		}
		checks["nats"] = func(context.Context) error { return producer.Ping() }
		events = producer

		consumer, err := queue.NewConsumer(cfg.NATS.URL)
		if err != nil {
			slog.Error("create event consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		err = consumer.ConsumeEvents(ctx, "facepay-api-ws", func(_ context.Context, evt *models.DetectionEvent) error {
			hub.BroadcastEvent(evt)
			return nil
		}, 1)
		if err != nil {
			slog.Warn("start event consumer", "error", err)
		}
	}

	trainer := vision.NewTrainer(vision.TrainerConfig{
		Width:      cfg.Classifier.Width,
		Height:     cfg.Classifier.Height,
		Accumulate: cfg.Classifier.AccumulateSamples,
	}, db, minioStore)

	registry := session.NewRegistry(cameraOpener(cfg.Camera), trainer, session.Deps{
		Detector: detector,
		Accounts: db,
		Images:   minioStore,
		Trainer:  trainer,
		Slot:     slot,
		Events:   events,
	}, session.Options{
		MaxImages:   cfg.Classifier.MaxImages,
		Width:       cfg.Classifier.Width,
		Height:      cfg.Classifier.Height,
		JPEGQuality: cfg.Vision.JPEGQuality,
	}, cfg.Session.IdleTimeout)
	defer registry.Close()
	go registry.RunJanitor(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.RouterConfig{
		APIKey:    cfg.Server.APIKey,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Registry:  registry,
		Slot:      slot,
		Wallet:    wallet.NewService(db),
		Hub:       hub,
		Checks:    checks,
	})

	// No write timeout: /video_feed streams for as long as the client stays.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	// Release the camera first so open streams end and Shutdown can drain.
	registry.Close()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
