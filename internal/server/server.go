// internal/server/server.go
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"askai-service/internal/chat"
	"askai-service/internal/chat/reconciler"
	"askai-service/internal/common/azureai"
	"askai-service/internal/common/config"
	"askai-service/internal/common/logger"
	"askai-service/internal/common/observability"
	"askai-service/internal/common/prompt"
)

type Server struct {
	cfg    *config.Config
	logger logger.Logger
	chat   *chat.Service
	engine *gin.Engine
}

// NewServer wires the ask pipeline behind the HTTP surface.
func NewServer(cfg *config.Config, obs *observability.Observability, log logger.Logger) *Server {
	client := azureai.NewClient(cfg.Completion, cfg.Search, log)
	prompts := prompt.NewLoader(cfg.Prompt.Path, cfg.Prompt.CacheTTL, log)
	rec := reconciler.New(cfg.Document.BaseURL, cfg.Document.Title, log)

	s := &Server{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "server"}),
		chat:   chat.NewService(cfg, client, prompts, rec, obs, log),
	}

	if !cfg.Server.AuthEnabled() {
		s.logger.Warn("FUNCTION_KEYS is empty, function key auth is disabled", nil)
	}

	s.engine = s.SetupRouter()
	return s
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()

	r.Use(s.requestID(), s.requestLogger(), s.recovery())

	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", FunctionKeyAuth(s.cfg.Server.FunctionKeys))
	api.POST("/ask-ai", s.askAI)

	return r
}

// Engine exposes the configured router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the context is canceled, then drains in-flight requests
// within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{
			"addr": httpServer.Addr,
		})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
