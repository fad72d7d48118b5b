package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "github.com/gx-tools/task-tracker/internal/auth/handler"
	"github.com/gx-tools/task-tracker/internal/config"
	"github.com/gx-tools/task-tracker/internal/logger"
	"github.com/gx-tools/task-tracker/internal/middleware"
	"github.com/gx-tools/task-tracker/internal/projects"
	"github.com/gx-tools/task-tracker/internal/provider"
	"github.com/gx-tools/task-tracker/internal/ratelimit"
	"github.com/gx-tools/task-tracker/internal/tasks"
	"github.com/gx-tools/task-tracker/internal/users"
)

func setupHTTP(cfg config.Config) (*gin.Engine, func() error, error) {

	// ----------------------------
	// Dependencies
	// ----------------------------

	// One long-lived provider handle, injected everywhere. Misconfiguration
	// is fatal here rather than a per-request surprise.
	prov, err := provider.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.ProviderTimeout)
	if err != nil {
		return nil, nil, err
	}

	authHandler := authhandler.NewHandler(prov, cfg.AppEnv)
	gate := middleware.NewAuthMiddleware(prov)

	var throttle []gin.HandlerFunc
	cleanup := func() error {
		logger.Sync()
		return nil
	}

	if cfg.RedisAddr != "" {
		limiter, err := ratelimit.New(cfg.RedisAddr, cfg.RedisPassword, 10, time.Minute)
		if err != nil {
			return nil, nil, err
		}
		throttle = append(throttle, limiter.Middleware())
		cleanup = func() error {
			logger.Sync()
			return limiter.Close()
		}
		logger.Info("login throttle enabled", map[string]any{
			"redis": cfg.RedisAddr,
		})
	}

	// ----------------------------
	// Router
	// ----------------------------

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------
	// Public auth routes
	// ----------------------------

	apiGroup := router.Group("/api")
	authHandler.RegisterRoutes(apiGroup.Group("/auth"), throttle...)

	// ----------------------------
	// Gated resource routes
	// ----------------------------

	protected := apiGroup.Group("")
	protected.Use(gate.RequireAuth())

	tasks.NewHandler(prov).RegisterRoutes(protected)
	projects.NewHandler(prov).RegisterRoutes(protected)
	users.NewHandler(prov).RegisterRoutes(protected)

	return router, cleanup, nil
}
