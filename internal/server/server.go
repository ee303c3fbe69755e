// Package server serves the chart dashboard and its JSON API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/render"
)

// TableSource returns the augmented table for a data file.
type TableSource interface {
	Load(path string) (*analysis.Table, error)
}

// Config configures a Server.
type Config struct {
	Logger   *slog.Logger
	Tables   TableSource
	DataPath string
	// Defaults seed every request before views and query parameters apply.
	Defaults Params
	ViewsDir string
	Chart    render.Options
	Debug    bool
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Tables == nil {
		return errors.New("table source is required")
	}
	if c.DataPath == "" {
		return errors.New("data path is required")
	}
	if err := c.Defaults.Range.Validate(); err != nil {
		return fmt.Errorf("default range: %w", err)
	}
	return nil
}

type Server struct {
	log    *slog.Logger
	cfg    *Config
	router *gin.Engine
}

func New(cfg *Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Debug && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		log:    cfg.Logger,
		cfg:    cfg,
		router: gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupMiddleware() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}

	s.router.Use(gin.Recovery(), s.requestLogger(), instrument(), cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	s.router.SetHTMLTemplate(template.Must(template.New("index").Parse(indexHTML)))

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "chartlens"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/", s.Index)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/summary", s.GetSummary)
		v1.GET("/rows", s.GetRows)
		v1.GET("/artists/top", s.GetTopArtists)
		v1.GET("/songs", s.GetSongs)
		v1.GET("/trends", s.GetTrends)
		v1.GET("/heatmap", s.GetHeatmap)
		v1.GET("/views", s.GetViews)
	}

	charts := s.router.Group("/charts")
	for _, k := range render.Kinds {
		charts.GET("/"+string(k)+".png", s.chartHandler(k))
	}
}

// requestLogger logs each request at debug level, errors at warn.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.log.Warn("request failed", append(attrs, "error", c.Errors.String())...)
			return
		}
		s.log.Debug("request", attrs...)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", "addr", addr, "data", s.cfg.DataPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down dashboard")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
