package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/football-site/internal/api"
	"github.com/stitts-dev/football-site/internal/cache"
	"github.com/stitts-dev/football-site/internal/favorites"
	"github.com/stitts-dev/football-site/internal/providers"
	"github.com/stitts-dev/football-site/internal/services"
	"github.com/stitts-dev/football-site/pkg/config"
	"github.com/stitts-dev/football-site/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log.WithFields(logrus.Fields{
		"env":             cfg.Env,
		"football_api":    cfg.FootballAPIURL,
		"favorites_store": cfg.FavoritesStore,
		"cache_ttl":       cfg.CacheTTL.String(),
	}).Info("Starting football site")

	// Favorites storage
	store, err := favorites.NewStoreFromConfig(cfg, log)
	if err != nil {
		log.Fatalf("Failed to open favorites store: %v", err)
	}
	defer store.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.WithError(err).Warn("Favorites store is not reachable yet")
	}
	cancelPing()

	// Football backend client
	respCache := cache.NewResponseCache(cfg.CacheTTL, nil)
	breakers := services.NewCircuitBreakerService(cfg.CircuitBreakerThreshold, 30*time.Second, log)
	client := providers.NewFootballAPIClient(providers.ClientConfig{
		BaseURL:   cfg.FootballAPIURL,
		Timeout:   cfg.ExternalAPITimeout,
		RateLimit: cfg.FootballAPIRateLimit,
	}, respCache, breakers, log)

	deps := api.Dependencies{
		Config:    cfg,
		Logger:    log,
		Football:  client,
		Cache:     respCache,
		Favorites: favorites.NewService(store, log),
		Breakers:  breakers.Report,
	}

	if cfg.EnableCacheWarmer {
		warmer := services.NewCacheWarmerService(client, cfg.CacheWarmSchedule, log)
		if err := warmer.Start(); err != nil {
			log.Errorf("Failed to start cache warmer: %v", err)
		} else {
			defer warmer.Stop()
			deps.Warmer = warmer
		}
	}

	router := api.NewRouter(deps)

	for _, route := range router.Routes() {
		log.Debugf("%s %s", route.Method, route.Path)
	}

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
