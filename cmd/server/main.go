package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"sentinel/internal/config"
	"sentinel/internal/events"
	"sentinel/internal/frameworks"
	"sentinel/internal/handler"
	"sentinel/internal/hub"
	"sentinel/internal/importer"
	"sentinel/internal/logging"
	"sentinel/internal/metrics"
	"sentinel/internal/policy"
	"sentinel/internal/repository/sqlite"
	"sentinel/internal/scanner"
	"sentinel/internal/schedule"
	"sentinel/internal/store"
	"sentinel/internal/topology"
	"sentinel/internal/tracing"
)

func main() {
	// Command line flags
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	configPath := flag.String("config", "", "Config file path (overrides discovery)")
	seed := flag.Int64("seed", 0, "Random seed for reproducible scans (overrides scan.seed)")
	flag.Parse()

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *seed != 0 {
		cfg.Scan.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := logging.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	if path != "" {
		log.WithField("path", path).Info("Config loaded")
	} else {
		log.Info("No config file found, using defaults")
	}
	log.Info("Starting sentinel server...")

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	shutdownTracing, err := tracing.Setup(rootCtx, cfg.Tracing)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	gateway, err := topology.SelectorByName(cfg.Topology.Gateway)
	if err != nil {
		log.Fatalf("Invalid gateway strategy: %v", err)
	}
	topo := topology.Options{
		Gateway:         gateway,
		MeshCandidates:  cfg.Topology.MeshCandidates,
		MeshProbability: cfg.Topology.MeshProbability,
	}

	// Event bus fans store events out to live clients and Prometheus
	bus := events.NewBus()

	st := store.New(store.Options{
		Seed:            cfg.Scan.Seed,
		LogCapacity:     cfg.Logs.Capacity,
		LogReplay:       cfg.Logs.Replay,
		Gateway:         topo.Gateway,
		MeshCandidates:  topo.MeshCandidates,
		MeshProbability: topo.MeshProbability,
		Publisher:       bus,
	})
	storeCtx, storeCancel := context.WithCancel(context.Background())
	go st.Run(storeCtx)

	liveHub := hub.New(hub.Config{
		ClientBuffer:  cfg.Live.ClientBuffer,
		KeepAlive:     cfg.Live.KeepAlive.Duration(),
		ReconnectHint: cfg.Live.ReconnectHint.Duration(),
		WriteTimeout:  hub.DefaultConfig().WriteTimeout,
	}, st)
	bus.Subscribe(liveHub.Broadcast)

	exporter := metrics.New(liveHub.ClientCount)
	bus.Subscribe(exporter.Observe)

	// Policy table
	repo, err := sqlite.New(cfg.Policies.DSN)
	if err != nil {
		log.Fatalf("Failed to open policy database: %v", err)
	}
	defer repo.Close()
	policySvc := policy.NewService(repo, st)

	// Compliance catalog
	catalog := frameworks.NewLoader(cfg.Frameworks.Path)
	if cfg.Frameworks.Watch && cfg.Frameworks.Path != "" {
		go func() {
			if err := catalog.Watch(rootCtx); err != nil {
				log.WithError(err).Warn("Frameworks watcher stopped")
			}
		}()
	}

	orchestrator := scanner.New(scanner.Config{
		MaxCandidates:       cfg.Scan.MaxCandidates,
		ProbeLimit:          cfg.Scan.ProbeLimit,
		PresenceProbability: cfg.Scan.PresenceProbability,
		HostDelay:           cfg.Scan.HostDelay.Duration(),
		Seed:                cfg.Scan.Seed,
		Topology:            topo,
	}, st)

	scheduler := schedule.New(orchestrator)
	for _, s := range cfg.Schedules {
		if err := scheduler.Add(schedule.Entry{Subnet: s.Subnet, Cron: s.Cron}); err != nil {
			log.Fatalf("Failed to add schedule: %v", err)
		}
	}
	scheduler.Start()

	// HTTP routes
	mux := http.NewServeMux()
	handler.New(st, orchestrator, policySvc, catalog, importer.New(st)).Register(mux)
	mux.HandleFunc("GET /ws", liveHub.ServeWS)
	mux.HandleFunc("GET /events", liveHub.ServeSSE)
	mux.Handle("GET /metrics", exporter.Handler())

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS(cfg.Server.CORSOrigin),
		handler.Logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	// Start server in goroutine
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("Server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := scheduler.Stop(ctx); err != nil {
		log.WithError(err).Warn("Scheduler shutdown error")
	}
	if err := orchestrator.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("Scan shutdown error")
	}
	rootCancel()

	// Live streams never finish on their own, close them before draining HTTP
	liveHub.Close()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("Server shutdown error")
	}

	storeCancel()
	<-st.Done()

	if err := shutdownTracing(ctx); err != nil {
		log.WithError(err).Warn("Tracing shutdown error")
	}

	log.Info("Server stopped")
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}
