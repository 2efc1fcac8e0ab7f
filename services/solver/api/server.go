// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api serves the solver over HTTP.
//
// Routes:
//
//	GET  /v1/health  liveness and the cascade stage order
//	POST /v1/solve   solve one task document
//	GET  /metrics    Prometheus exposition
package api

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianARC/pkg/validation"
	"github.com/AleutianAI/AleutianARC/services/solver/cascade"
	"github.com/AleutianAI/AleutianARC/services/solver/storage"
	"github.com/AleutianAI/AleutianARC/services/solver/task"
	"github.com/AleutianAI/AleutianARC/services/solver/telemetry"
)

// ServiceName names the otelgin spans.
const ServiceName = "arcsynth-api"

// Config configures the HTTP server.
type Config struct {
	Addr string

	// RateLimit is the sustained requests per second on /v1/solve. Zero
	// disables limiting.
	RateLimit float64
	Burst     int

	MaxBodyBytes int64

	// MaxSize is used when a request leaves max_size unset.
	MaxSize int
}

// DefaultConfig returns the built-in server settings.
func DefaultConfig() *Config {
	return &Config{
		Addr:         ":8080",
		RateLimit:    5,
		Burst:        10,
		MaxBodyBytes: 1 << 20,
		MaxSize:      3,
	}
}

// Solver is the part of the cascade the server needs.
type Solver interface {
	SolveTask(ctx context.Context, t *task.Task, maxSize int) cascade.Result
	Stages() []string
}

// SolveRequest is the body of POST /v1/solve.
type SolveRequest struct {
	// ID labels the task in logs and the store. Defaults to "request".
	// See validation.ValidateTaskID for the allowed form.
	ID string `json:"id"`

	Task task.Document `json:"task"`

	// MaxSize overrides the server default when positive.
	MaxSize int `json:"max_size" binding:"gte=0,lte=16"`
}

// SolveResponse is the body returned by POST /v1/solve.
type SolveResponse struct {
	TaskID      string    `json:"task_id"`
	Solved      bool      `json:"solved"`
	Method      string    `json:"method"`
	Program     string    `json:"program,omitempty"`
	ProgramSize int       `json:"program_size"`
	Checked     int       `json:"checked"`
	MDL         *float64  `json:"mdl,omitempty"`
	Predictions [][][]int `json:"predictions,omitempty"`
	ElapsedMS   int64     `json:"elapsed_ms"`

	Stages []cascade.StageReport `json:"stages"`
}

// Server wires the solver into a gin engine.
//
// Thread Safety: Safe for concurrent use.
type Server struct {
	config  *Config
	solver  Solver
	store   *storage.ResultStore
	limiter *rate.Limiter
	logger  *slog.Logger
	engine  *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithStore records every solve in store.
func WithStore(store *storage.ResultStore) Option {
	return func(s *Server) { s.store = store }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer builds the engine and registers the routes.
//
// Inputs:
//   - config: If nil, uses DefaultConfig().
//   - solver: Must not be nil.
func NewServer(config *Config, solver Solver, opts ...Option) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	s := &Server{config: config, solver: solver, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "api"))
	if config.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), max(1, config.Burst))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(ServiceName))
	s.setupRoutes(router)
	s.engine = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) setupRoutes(router *gin.Engine) {
	metrics := telemetry.MetricsHandler()
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	router.GET("/metrics", gin.WrapH(metrics))

	v1 := router.Group("/v1")
	{
		v1.GET("/health", s.handleHealth)
		v1.POST("/solve", s.rateLimit(), s.handleSolve)
	}
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// rateLimit rejects requests beyond the token bucket with 429.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"stages": s.solver.Stages(),
	})
}

func (s *Server) handleSolve(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxBodyBytes)

	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	id := "request"
	if req.ID != "" {
		var err error
		if id, err = validation.SanitizeTaskID(req.ID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	t, err := req.Task.Build(id)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	maxSize := req.MaxSize
	if maxSize == 0 {
		maxSize = s.config.MaxSize
	}

	res := s.solver.SolveTask(c.Request.Context(), t, maxSize)
	s.logger.Info("solve",
		slog.String("task_id", t.ID),
		slog.Bool("solved", res.Solved),
		slog.String("method", res.Method),
		slog.Int("checked", res.Checked),
		slog.Duration("elapsed", res.Elapsed),
	)

	if s.store != nil {
		rec := storage.RecordOf("api", res)
		if err := s.store.Put(c.Request.Context(), rec, res.Predictions...); err != nil {
			s.logger.Warn("persist result", slog.String("task_id", t.ID), slog.String("error", err.Error()))
		}
	}
	c.JSON(http.StatusOK, responseOf(res))
}

func responseOf(res cascade.Result) SolveResponse {
	resp := SolveResponse{
		TaskID:      res.TaskID,
		Solved:      res.Solved,
		Method:      res.Method,
		ProgramSize: res.ProgramSize,
		Checked:     res.Checked,
		ElapsedMS:   res.Elapsed.Milliseconds(),
		Stages:      res.Stages,
	}
	if res.Program != nil {
		resp.Program = res.Program.String()
	}
	if !math.IsInf(res.MDL, 0) && !math.IsNaN(res.MDL) {
		mdl := res.MDL
		resp.MDL = &mdl
	}
	for _, g := range res.Predictions {
		resp.Predictions = append(resp.Predictions, g.ToRows())
	}
	return resp
}
