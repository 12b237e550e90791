package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/config"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/logging"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/metrics"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/api"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/collector"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/version"

	// Import providers to register them
	_ "github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers/evm"
	_ "github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers/rest"
)

var (
	configFile = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
	once       = flag.Bool("once", false, "Perform a single aggregation run, print the report to stdout and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("gas-fee-oracle-go version %s\n", version.Version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Starting gas-fee-oracle-go", "version", version.Version)
	logger.Debug("Registered provider factories", "factories", providers.List())

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize providers
	provs := initProviders(ctx, cfg, logger)
	if len(provs) == 0 {
		logger.Error("No providers available")
		os.Exit(1)
	}

	coll := collector.New(provs, cfg.Server.CollectTimeout.ToDuration(), logger)
	agg := aggregator.New(logger)

	if *once {
		runOnce(ctx, coll, agg, logger)
		return
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- runServer(ctx, cfg, coll, agg, logger)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error("Server failed", "error", err)
			cancel()
		}
	}

	logger.Info("Shutting down gracefully...")
	for _, p := range provs {
		if err := p.Stop(); err != nil {
			logger.Warn("Failed to stop provider", "provider", p.Name(), "error", err)
		}
	}
	logger.Info("Shutdown complete")
}

// initProviders creates and initializes all enabled providers. A provider
// with no endpoint configured is skipped; one that fails to initialize is
// logged and skipped as well.
func initProviders(ctx context.Context, cfg *config.Config, logger *logging.Logger) []providers.Provider {
	var provs []providers.Provider

	for _, providerCfg := range cfg.Providers {
		if !providerCfg.Enabled {
			continue
		}
		if !providerCfg.HasEndpoint() {
			logger.Info("Skipping provider without endpoint", "type", providerCfg.Type, "name", providerCfg.Name)
			continue
		}

		logger.Info("Initializing provider", "type", providerCfg.Type, "name", providerCfg.Name)

		// Add logger to config so providers don't create their own
		if providerCfg.Config == nil {
			providerCfg.Config = make(map[string]interface{})
		}
		providerCfg.Config["logger"] = logger

		provider, err := providers.Create(providerCfg.Type, providerCfg.Name, providerCfg.Config)
		if err != nil {
			logger.Warn("Failed to create provider", "type", providerCfg.Type, "name", providerCfg.Name, "error", err)
			continue
		}

		if err := provider.Initialize(ctx); err != nil {
			logger.Warn("Failed to initialize provider", "provider", provider.Name(), "error", err)
			continue
		}

		provs = append(provs, provider)
		logger.Info("Provider started", "provider", provider.Name(), "type", provider.Type())
	}

	return provs
}

// runOnce performs a single collection and aggregation run and writes the
// JSON report to stdout. Zero collected samples is a hard failure.
func runOnce(ctx context.Context, coll *collector.Collector, agg *aggregator.Aggregator, logger *logging.Logger) {
	samples := coll.Collect(ctx)

	rec, err := agg.Aggregate(samples)
	if err != nil {
		logger.Error("Aggregation failed", "error", err.Error())
		os.Exit(1)
	}

	report := api.BuildReport(rec)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("Failed to encode report", "error", err.Error())
		os.Exit(1)
	}
}

// runServer runs the HTTP/WebSocket fee server until the context is canceled.
func runServer(ctx context.Context, cfg *config.Config, coll *collector.Collector, agg *aggregator.Aggregator, logger *logging.Logger) error {
	server := api.NewServer(cfg.Server.HTTP.Addr, coll, agg, cfg.Server.CacheTTL.ToDuration(), logger)

	// Start WebSocket server if enabled
	var wsServer *api.WebSocketServer
	if cfg.Server.WebSocket.Enabled {
		wsServer = api.NewWebSocketServer(cfg.Server.WebSocket.Addr, logger)
		server.SetWebSocketServer(wsServer)

		go func() {
			if err := wsServer.Start(ctx); err != nil {
				logger.Error("WebSocket server error", "error", err)
			}
		}()
	}

	// Background refresh keeps the cache warm and feeds WebSocket clients.
	if interval := cfg.Server.RefreshInterval.ToDuration(); interval > 0 {
		go refreshLoop(ctx, server, interval, logger)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Stop(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown error", "error", err)
		}
		if wsServer != nil {
			wsServer.Stop()
		}
	}()

	return server.Start()
}

// refreshLoop refreshes the recommendation at a fixed interval.
func refreshLoop(ctx context.Context, server *api.Server, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := server.Refresh(ctx); err != nil {
				logger.Warn("Scheduled refresh failed", "error", err.Error())
			}
		}
	}
}
