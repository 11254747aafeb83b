// Package main provides the entry point for docmesh-server.
//
// docmesh-server is one instance of the DocMesh realtime document
// synchronization engine. Instances coordinate through a Redis
// replication bus so clients connected to different instances
// converge on the same per-room documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/docmesh-go/internal/core/crdt"
	"github.com/yndnr/docmesh-go/internal/docstore"
	"github.com/yndnr/docmesh-go/internal/gateway"
	"github.com/yndnr/docmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/docmesh-go/internal/infra/confloader"
	"github.com/yndnr/docmesh-go/internal/infra/shutdown"
	"github.com/yndnr/docmesh-go/internal/registry"
	"github.com/yndnr/docmesh-go/internal/replication"
	"github.com/yndnr/docmesh-go/internal/server/config"
	"github.com/yndnr/docmesh-go/internal/server/httpserver"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("docmesh-server %s\n", buildinfo.String())
		return nil
	}

	// Load configuration
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	instanceID := cfg.Server.InstanceID
	if instanceID == "" {
		instanceID = ulid.Make().String()
	}

	log.Info("starting docmesh-server",
		"version", buildinfo.Version,
		"instance", instanceID,
		"config", *configFile)

	// Hot-reload the log level when the config file changes.
	if *configFile != "" {
		watcher, err := startConfigWatcher(*configFile, log)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	metrics := metric.NewRegistry()

	// Connect the replication bus. Exhausting the connect attempts is
	// fatal: an instance that cannot replicate must not serve clients.
	bus := initBus(cfg, log)
	ctx := context.Background()
	if err := bus.Connect(ctx); err != nil {
		return fmt.Errorf("connect replication bus: %w", err)
	}

	docs := docstore.New(crdt.NewFactory(), instanceID, docstore.WithLogger(log))
	reg := registry.New(docs, registry.WithLogger(log))

	gw := gateway.New(gateway.Config{
		InstanceID:   instanceID,
		MessageRate:  cfg.Limits.MessageRate,
		MessageBurst: cfg.Limits.MessageBurst,
		Logger:       log,
		Metrics:      metrics,
	}, reg, docs, bus)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		InstanceID: instanceID,
		Registry:   reg,
		Bus:        bus,
		WebSocket:  gw.HandleWS,
		Logger:     log,
	})
	httpServer := httpserver.New(cfg.Server.Addr, router)

	var metricsServer *httpserver.Server
	if cfg.Server.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metrics.Handler())
		metricsServer = httpserver.New(cfg.Server.MetricsAddr, metricsMux)
	}

	// Setup graceful shutdown. Hooks run in reverse registration
	// order: servers stop accepting first, then the gateway drains
	// connections, and the bus closes last so in-flight updates can
	// still replicate.
	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("disconnecting replication bus")
		return bus.Disconnect()
	})

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("draining client connections")
		return gw.Shutdown(ctx)
	})

	if metricsServer != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsServer.Shutdown(ctx)
		})
	}

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	// Start HTTP servers
	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			log.Info("metrics server listening", "addr", cfg.Server.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	// Wait for shutdown signal
	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	// Start with defaults
	cfg := config.Default()

	// Create loader with optional config file
	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)

	// Load and unmarshal
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// startConfigWatcher re-reads the config file on change and applies
// the log level. Only the level is applied live; everything else needs
// a restart.
func startConfigWatcher(configFile string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(configFile)
		if err != nil {
			log.Warn("config reload failed, keeping current settings", "file", path, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level applied from config change", "level", cfg.Log.Level)
	})
	watcher.StartAsync()
	return watcher, nil
}

// initBus builds the replication bus selected by configuration.
func initBus(cfg *config.ServerConfig, log logger.Logger) replication.Bus {
	if cfg.Replication.Mode == "memory" {
		log.Warn("replication in memory mode, instance will not replicate")
		return replication.NewMemoryExchange().Bus()
	}

	return replication.NewRedisBus(replication.RedisConfig{
		Addr:            cfg.Replication.Addr,
		Password:        cfg.Replication.Password,
		ConnectAttempts: cfg.Replication.ConnectAttempts,
		BackoffBase:     cfg.Replication.BackoffBase,
		Logger:          log,
	})
}
