// cmd/askai-server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"askai-service/internal/common/config"
	"askai-service/internal/common/logger"
	"askai-service/internal/common/observability"
	"askai-service/internal/server"
)

func main() {
	zapLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild at the configured level once config is known.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting askai service...",
		zap.String("environment", cfg.App.Environment),
		zap.String("addr", cfg.Server.Addr()),
	)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	defer obs.Shutdown()

	srv := server.NewServer(cfg, obs, log)

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-sigCh
		zapLog.Info("Shutdown signal received, stopping server...")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		zapLog.Fatal("http server failed", zap.Error(err))
	}

	zapLog.Info("Askai service stopped gracefully")
}
