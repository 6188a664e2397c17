// Package transport exposes the check-in core over HTTP.
package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/domain/schedule"
	"github.com/jmorrell/narthex/internal/domain/supervisor"
)

// PersonDirectory searches people by name for kiosk lookup.
type PersonDirectory interface {
	Search(ctx context.Context, campusID, query string, limit int) ([]checkin.Person, error)
}

// Server wires HTTP handlers over the domain services.
type Server struct {
	engine      *checkin.Engine
	batch       *checkin.Batch
	ledger      *location.Ledger
	schedules   *schedule.Service
	supervisors *supervisor.Service
	people      PersonDirectory
	campusID    string
	logger      *slog.Logger
	now         func() time.Time
}

// Config carries the server's collaborators.
type Config struct {
	Engine      *checkin.Engine
	Batch       *checkin.Batch
	Ledger      *location.Ledger
	Schedules   *schedule.Service
	Supervisors *supervisor.Service
	People      PersonDirectory
	CampusID    string
	RatePerMin  int
	Logger      *slog.Logger
}

// NewRouter builds the gin router with middleware and all routes.
func NewRouter(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		engine:      cfg.Engine,
		batch:       cfg.Batch,
		ledger:      cfg.Ledger,
		schedules:   cfg.Schedules,
		supervisors: cfg.Supervisors,
		people:      cfg.People,
		campusID:    cfg.CampusID,
		logger:      logger,
		now:         time.Now,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	if cfg.RatePerMin > 0 {
		r.Use(NewTokenBucket(cfg.RatePerMin, cfg.RatePerMin).Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/checkins", srv.handleCheckIn)
	r.POST("/checkins/:attendanceID/checkout", srv.handleCheckout)
	r.GET("/checkin-configuration", srv.handleConfiguration)
	r.GET("/people", srv.handlePersonSearch)

	r.POST("/supervisor/login", srv.handleSupervisorLogin)
	r.POST("/supervisor/logout", srv.handleSupervisorLogout)

	protected := r.Group("/supervisor", SupervisorAuth(cfg.Supervisors))
	protected.POST("/force-admit", srv.handleForceAdmit)
	protected.POST("/checkout", srv.handleSupervisorCheckout)
	protected.POST("/reprint", srv.handleReprint)

	return r
}
