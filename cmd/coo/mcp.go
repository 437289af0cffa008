package main

import (
	"flag"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/coo-registry/pkg/api"
	"github.com/hazyhaar/coo-registry/pkg/resolve"
)

// cmdMCP serves over stdin/stdout; logs go to stderr only.
func cmdMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	bundleDir := fs.String("bundle", "", "vocabulary bundle directory (overrides config)")
	fs.Parse(args)

	cfg, logger, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *bundleDir != "" {
		cfg.BundleDir = *bundleDir
	}

	engine := resolve.NewEngine(cfg.BundleDir, resolve.WithWorkers(cfg.Workers), resolve.WithLogger(logger))
	if err := engine.Load(); err != nil {
		return err
	}

	srv := server.NewMCPServer("coo-registry", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, engine, logger)

	logger.Info("mcp server on stdio", "bundle", engine.Info().ID)
	return server.ServeStdio(srv)
}
