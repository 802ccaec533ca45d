package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniInventory/internal/config"
	"MiniInventory/internal/inventory"
	"MiniInventory/pkg/kit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := kit.NewLogger(config.ServiceName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	doc, err := inventory.LoadAPIDoc(ctx)
	if err != nil {
		log.Fatal("load api doc failed", zap.Error(err))
	}

	store := inventory.NewStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &inventory.Server{
		Store:   store,
		Log:     log,
		Metrics: inventory.NewMetrics(reg, store.Len),
	}
	if cfg.WriteRateLimitPerMin > 0 {
		s.WriteLimiter = kit.NewIPRateLimiter(cfg.WriteRateLimitPerMin, time.Minute)
		s.WriteLimiter.TrustForwardedFor = cfg.TrustProxy
	}

	h := inventory.NewHandler(s, inventory.HTTPDeps{
		Log:            log,
		Service:        config.ServiceName,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		APIDoc:         doc,
	})

	if err := kit.RunHTTPServer(ctx, cfg.Addr(), h, log, cfg.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
