package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/redis/go-redis/v9"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/facepay/internal/camera"
	"github.com/your-org/facepay/internal/camera/device"
	"github.com/your-org/facepay/internal/config"
	"github.com/your-org/facepay/internal/models"
	"github.com/your-org/facepay/internal/session"
	"github.com/your-org/facepay/internal/vision"
	"github.com/your-org/facepay/internal/vision/cascade"
)

// newDetector builds the configured face detector. The returned cleanup
// releases native resources.
func newDetector(cfg config.VisionConfig) (vision.Detector, func(), error) {
	switch cfg.Detector {
	case "cascade":
		d, err := cascade.New(cfg.CascadePath, cfg.ScaleFactor, cfg.MinNeighbor)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { _ = d.Close() }, nil

	case "retinaface":
		ort.SetSharedLibraryPath(onnxLibPath())
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, nil, fmt.Errorf("init onnx runtime: %w", err)
		}
		d, err := vision.NewRetinaFace(filepath.Join(cfg.ModelsDir, "det_10g.onnx"), float32(cfg.Threshold), nil)
		if err != nil {
			_ = ort.DestroyEnvironment()
			return nil, nil, err
		}
		return d, func() {
			d.Close()
			_ = ort.DestroyEnvironment()
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown detector %q", cfg.Detector)
	}
}

// onnxLibPath returns the ONNX Runtime shared library name for this OS.
func onnxLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "libonnxruntime.so"
	}
}

// cameraOpener opens a local capture device when the source is an index
// and an ffmpeg-decoded stream otherwise.
func cameraOpener(cfg config.CameraConfig) camera.Opener {
	if idx, ok := camera.DeviceIndex(cfg.Source); ok {
		return func(context.Context) (camera.Camera, error) {
			return device.Open(idx)
		}
	}
	return func(ctx context.Context) (camera.Camera, error) {
		return camera.OpenFFmpeg(ctx, cfg.Source, cfg.FPS, cfg.Width)
	}
}

// newResultSlot builds the detection slot. The redis client, when one is
// created, is returned so it can be closed and health checked.
func newResultSlot(ctx context.Context, cfg config.Config) (session.ResultSlot, *redis.Client, error) {
	switch cfg.Slot.Backend {
	case "memory", "":
		return session.NewMemorySlot(cfg.Slot.TTL), nil, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return session.NewRedisSlot(client, cfg.Slot.TTL), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown slot backend %q", cfg.Slot.Backend)
	}
}

// EventArchive persists detection events.
type EventArchive interface {
	CreateEvent(ctx context.Context, e *models.DetectionEvent) error
}

// Broadcaster delivers detection events to websocket clients.
type Broadcaster interface {
	BroadcastEvent(evt *models.DetectionEvent)
}

// localEvents delivers events in-process when no broker is configured.
type localEvents struct {
	archive EventArchive
	hub     Broadcaster
}

func (l localEvents) PublishDetection(ctx context.Context, evt *models.DetectionEvent) error {
	if err := l.archive.CreateEvent(ctx, evt); err != nil {
		slog.Warn("store detection event", "type", evt.Type, "error", err)
	}
	l.hub.BroadcastEvent(evt)
	return nil
}
