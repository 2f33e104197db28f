// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// Package server exposes the webring over HTTP: public navigation redirects
// and the submission endpoint, plus an authenticated admin surface for
// moderation, membership management and analytics.
package server

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toeirei/ringmaster/internal/analytics"
	"github.com/toeirei/ringmaster/internal/config"
	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/logging"
	"github.com/toeirei/ringmaster/internal/moderation"
	"github.com/toeirei/ringmaster/internal/ring"
)

// Server wires the domain services into a gin engine.
type Server struct {
	engine     *gin.Engine
	cfg        config.ServerConfig
	registry   *ring.Registry
	recorder   *analytics.Recorder
	moderation *moderation.Service
	intn       func(int) int
}

// New builds a Server over the given store. Admin routes are only mounted
// when credentials are configured.
func New(cfg config.ServerConfig, store db.Store) *Server {
	s := &Server{
		engine:     gin.New(),
		cfg:        cfg,
		registry:   ring.NewRegistry(store),
		recorder:   analytics.NewRecorder(store),
		moderation: moderation.NewService(store),
		intn:       rand.New(rand.NewSource(time.Now().UnixNano())).Intn,
	}
	s.engine.Use(gin.Recovery())
	s.engine.Use(corsMiddleware())
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/sites.json", s.handleSitesJSON)
	s.engine.GET("/next/:id", s.handleHop(ring.DirectionNext))
	s.engine.GET("/prev/:id", s.handleHop(ring.DirectionPrev))
	s.engine.GET("/random", s.handleRandom)
	s.engine.GET("/webring", s.handleWebring)
	s.engine.POST("/submit-site", s.handleSubmit)

	if s.cfg.AdminUser != "" && s.cfg.AdminPassword != "" {
		admin := s.engine.Group("/admin", gin.BasicAuth(gin.Accounts{
			s.cfg.AdminUser: s.cfg.AdminPassword,
		}))
		admin.GET("/submissions", s.handleAdminSubmissions)
		admin.GET("/sites", s.handleAdminSites)
		admin.GET("/analytics/:id", s.handleAdminAnalytics)
		admin.POST("/approve/:id", s.handleAdminApprove)
		admin.POST("/deny/:id", s.handleAdminDeny)
		admin.POST("/remove/:id", s.handleAdminRemove)
		admin.POST("/reorder", s.handleAdminReorder)
	} else {
		logging.Warnf("admin credentials not configured; admin routes disabled")
	}
}

// corsMiddleware allows ring members to call the navigation and submission
// endpoints from their own origins.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
