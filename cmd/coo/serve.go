package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hazyhaar/coo-registry/pkg/api"
	"github.com/hazyhaar/coo-registry/pkg/chassis"
	"github.com/hazyhaar/coo-registry/pkg/metrics"
	"github.com/hazyhaar/coo-registry/pkg/resolve"
)

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	bundleDir := fs.String("bundle", "", "vocabulary bundle directory (overrides config)")
	fs.Parse(args)

	cfg, logger, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *bundleDir != "" {
		cfg.BundleDir = *bundleDir
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine := resolve.NewEngine(cfg.BundleDir,
		resolve.WithWorkers(cfg.Workers),
		resolve.WithMetrics(metrics.New(reg)),
		resolve.WithLogger(logger),
	)
	if err := engine.Load(); err != nil {
		return err
	}
	info := engine.Info()
	logger.Info("bundle loaded", "id", info.ID, "version", info.Version, "identifiers", info.Identifiers, "aliases", info.Aliases)

	srv, err := chassis.New(chassis.Config{
		Addr:     cfg.Addr,
		Handler:  api.NewRouter(engine, api.Options{Logger: logger, Gatherer: reg}),
		TLSMode:  cfg.TLS.Mode,
		CertFile: cfg.TLS.CertFile,
		KeyFile:  cfg.TLS.KeyFile,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	// SIGHUP: hot reload the bundle.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sighup:
			}
			logger.Info("SIGHUP received, reloading bundle")
			if err := engine.Reload(); err != nil {
				logger.Error("reload failed, keeping previous bundle", "error", err)
				continue
			}
			info := engine.Info()
			logger.Info("bundle reloaded", "id", info.ID, "version", info.Version, "identifiers", info.Identifiers)
		}
	}()

	return srv.Run(ctx)
}
