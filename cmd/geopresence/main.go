package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aevon-lab/geopresence/internal/core/config"
	"github.com/aevon-lab/geopresence/internal/core/logging"
	"github.com/aevon-lab/geopresence/internal/core/retry"
	"github.com/aevon-lab/geopresence/internal/core/storage/redisstore"
	"github.com/aevon-lab/geopresence/internal/ingestion"
	"github.com/aevon-lab/geopresence/internal/server"
	"github.com/aevon-lab/geopresence/internal/sweep"
	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	// 0. Bootstrap logger until config is known
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		slog.Error("Failed to configure logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	slog.Info("Loaded config",
		"redis_prefix", cfg.Redis.KeyPrefix,
		"ping_ttl", cfg.Telemetry.PingTTL,
		"rate_limit", cfg.RateLimit.MaxRequests,
		"rate_window", cfg.RateLimit.Window,
		"sweep_enabled", cfg.Sweep.Enabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Connect to Redis
	connectPolicy := retry.DefaultPolicy()
	connectPolicy.MaxAttempts = cfg.Redis.ConnectRetries + 1
	client, err := redisstore.NewClient(ctx, redisstore.ClientOptions{
		URL:          cfg.Redis.URL,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeoutDuration(),
		OpTimeout:    cfg.Redis.OpTimeoutDuration(),
		ConnectRetry: connectPolicy,
	})
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// 3. Presence store and rate limiter share the pool
	presence := redisstore.NewPresenceAdapter(client, cfg.Redis.KeyPrefix, cfg.Redis.OpTimeoutDuration())
	limiter := redisstore.NewSlidingWindowLimiter(client,
		redisstore.WithMaxRequests(cfg.RateLimit.MaxRequests),
		redisstore.WithWindow(cfg.RateLimit.WindowDuration()),
		redisstore.WithKeyPrefix(cfg.RateLimit.KeyPrefix),
		redisstore.WithTimeout(cfg.Redis.OpTimeoutDuration()),
	)

	// 4. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := ingestion.NewMetrics(reg)
	ingestion.RegisterIndexGauge(reg, presence)

	// 5. Ingestion service
	clock := quartz.NewReal()
	ingestionSvc := ingestion.NewService(presence, limiter, ingestion.Options{
		PingTTL:         cfg.Telemetry.PingTTLDuration(),
		IntervalMin:     cfg.Telemetry.PingIntervalMin,
		IntervalMax:     cfg.Telemetry.PingIntervalMax,
		MaxQueryRadius:  cfg.Telemetry.MaxQueryRadiusMeter,
		MaxBodySizeByte: cfg.Server.MaxBodySizeKB * 1024,
	}, clock, metrics)

	// 6. HTTP server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), presence, reg, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)

	// 7. Sweeper
	var wg sync.WaitGroup
	if cfg.Sweep.Enabled {
		sweeper := sweep.NewScheduler(cfg.Sweep.IntervalDuration(), ingestionSvc, clock)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sweeper.Start(ctx); err != nil {
				slog.Error("Sweeper stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Presence sweeper disabled by config")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		cancel()
	}

	// final sweep needs the client, which closes on return
	wg.Wait()
	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
