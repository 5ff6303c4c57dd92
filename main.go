package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gin-gonic/gin"
	"github.com/miru/classet/classifier"
	"github.com/miru/classet/config"
	"github.com/miru/classet/onnx"
	"github.com/miru/classet/server"
	ort "github.com/yalue/onnxruntime_go"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	slog.Info("Starting classet", slog.String("version", server.Version))

	cfg := config.C()

	ort.SetSharedLibraryPath(onnx.LibPath())
	if err := ort.InitializeEnvironment(); err != nil {
		slog.Error("Failed to initialize ONNX Runtime environment", slog.String("error", err.Error()))
		return
	}
	defer ort.DestroyEnvironment()

	svc := classifier.New(classifier.Config{
		Model:      cfg.Model,
		Device:     cfg.Device,
		ModelDir:   cfg.ModelDir,
		LabelsFile: cfg.LabelsFileName,
		LabelsURL:  cfg.LabelsUrl,
		PoolSize:   cfg.PoolSize,
	})
	defer svc.Close()

	if cfg.Preload {
		if err := svc.Load(); err != nil {
			slog.Error("Failed to preload model", slog.String("error", err.Error()))
			return
		}
	}

	h := server.NewHandler(svc)
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.POST("/predict", h.Predict)

	addr := cfg.Host + ":" + cfg.Port
	slog.Info("Listening on", slog.String("address", addr))
	go func() {
		if err := r.Run(addr); err != nil {
			slog.Error("Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}
