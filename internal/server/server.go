// Package server serves the facility map and its data over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"resourcefinda/internal/render"
	"resourcefinda/internal/state"
)

const shutdownGrace = 10 * time.Second

// Refresher runs a load and applies it to the store. *service.Refresher satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, searchTerm string) error
	Store() *state.Store
}

type Config struct {
	Addr                string
	Render              render.Options
	ReloadRatePerMinute int
	Version             string
}

type Server struct {
	cfg       Config
	refresher Refresher
	engine    *gin.Engine
}

func New(cfg Config, refresher Refresher) *Server {
	s := &Server{cfg: cfg, refresher: refresher}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodHead},
		AllowHeaders:    []string{"Origin", "Accept", requestIDHeader},
		ExposeHeaders:   []string{requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	perMinute := s.cfg.ReloadRatePerMinute
	if perMinute <= 0 {
		perMinute = 6
	}
	limiter := NewIPRateLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.GET("/view", s.handleView)
	api.GET("/facilities.geojson", s.handleGeoJSON)
	api.POST("/reload", limiter.RateLimit(), s.handleReload)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
