package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	golog "log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acronis/go-cachekit/config"
	"github.com/acronis/go-cachekit/log"
	"github.com/acronis/go-cachekit/lrucache"
	"github.com/acronis/go-cachekit/shardedcache"
)

func main() {
	if err := runApp(); err != nil {
		golog.Fatal(err)
	}
}

func runApp() error {
	cfg, err := loadAppConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create logger from config
	logger, loggerClose := log.NewLogger(cfg.Log)
	defer loggerClose()

	// Create and register Prometheus metrics for the cache
	promMetrics := lrucache.NewPrometheusMetrics()
	promMetrics.MustRegister()
	defer promMetrics.Unregister()

	cache, err := shardedcache.NewWithOpts[string, string](cfg.Cache.MaxEntries, promMetrics,
		shardedcache.Options{ShardCount: cfg.Cache.ShardCount})
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if interval := time.Duration(cfg.Cache.StatsLoggingInterval); interval > 0 {
		go cache.RunPeriodicStatsLogging(ctx, interval, logger)
	}

	server := &http.Server{Addr: ":8080", Handler: makeRouter(cache)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down HTTP server...")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutting down error", log.Error(err))
		}
	}()

	logger.Info("starting HTTP server...", log.String("address", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}
	return nil
}

func makeRouter(cache *shardedcache.ShardedCache[string, string]) chi.Router {
	router := chi.NewRouter()

	router.Get("/cache/{key}", func(rw http.ResponseWriter, r *http.Request) {
		value, found := cache.Get(chi.URLParam(r, "key"))
		if !found {
			rw.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = rw.Write([]byte(value))
	})

	router.Put("/cache/{key}", func(rw http.ResponseWriter, r *http.Request) {
		value, err := io.ReadAll(r.Body)
		if err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			return
		}
		cache.Add(chi.URLParam(r, "key"), string(value))
		rw.WriteHeader(http.StatusNoContent)
	})

	router.Delete("/cache/{key}", func(rw http.ResponseWriter, r *http.Request) {
		if !cache.Remove(chi.URLParam(r, "key")) {
			rw.WriteHeader(http.StatusNotFound)
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	})

	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return router
}

func loadAppConfig() (*AppConfig, error) {
	cfgLoader := config.NewDefaultLoader("cache_service")
	cfg := NewAppConfig()
	err := cfgLoader.LoadFromFile("config.yml", config.DataTypeYAML, cfg)
	return cfg, err
}

type AppConfig struct {
	Cache *shardedcache.Config
	Log   *log.Config
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		Cache: shardedcache.NewConfig(),
		Log:   log.NewConfig(),
	}
}

func (c *AppConfig) SetProviderDefaults(dp config.DataProvider) {
	config.CallSetProviderDefaultsForFields(c, dp)
}

func (c *AppConfig) Set(dp config.DataProvider) error {
	return config.CallSetForFields(c, dp)
}
