package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/market-news-desk/internal/api"
	"github.com/samvad-hq/market-news-desk/internal/config"
	"github.com/samvad-hq/market-news-desk/internal/logger"
	"github.com/samvad-hq/market-news-desk/pkg/analysis"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP runtime serving feeds and the analysis proxy.
type Server struct {
	cfg  *config.Config
	http *http.Server
	log  logger.Logger
}

// NewServer builds the HTTP runtime from config files.
func NewServer(cfg *config.Config, log logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	pipeline, err := buildFeedPipeline(cfg, log)
	if err != nil {
		return nil, err
	}

	var analyzer api.Analyzer
	if cfg.AnalysisURL != "" {
		analyzer = analysis.NewClient(cfg.AnalysisURL, cfg.AnalysisTimeout)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(pipeline.service, analyzer, log)

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server listening", "server_state", map[string]any{
			"addr":         s.cfg.HTTPAddr,
			"sort_mode":    s.cfg.SortMode,
			"analysis_url": s.cfg.AnalysisURL,
		})
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.InfoObj("http server shutting down", "reason", ctx.Err().Error())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
