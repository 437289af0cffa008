package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/hazyhaar/coo-registry/pkg/vocab"
)

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	bundleDir := fs.String("bundle", "", "vocabulary bundle directory (overrides config)")
	fs.Parse(args)

	cfg, _, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *bundleDir != "" {
		cfg.BundleDir = *bundleDir
	}

	b, err := vocab.LoadBundle(cfg.BundleDir)
	if err != nil {
		return err
	}
	m := b.Manifest
	fmt.Printf("Bundle %s (version %s)\n", m.ID, m.Version)
	if m.Source != "" {
		fmt.Printf("  source         : %s\n", m.Source)
	}
	fmt.Printf("  identifiers    : %d\n", b.Vocabulary.Len())
	fmt.Printf("  aliases        : %d\n", b.Aliases.Len())
	fmt.Printf("  regional terms : %d\n", b.Regional.Len())
	fmt.Printf("  unknown        : %s\n", b.Vocabulary.Unknown())
	return nil
}

func cmdCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
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

	b, err := vocab.LoadBundleSources(cfg.BundleDir)
	if err != nil {
		return err
	}
	path := filepath.Join(cfg.BundleDir, vocab.SnapshotFile)
	if err := vocab.SaveSnapshot(b, path); err != nil {
		return err
	}
	logger.Info("snapshot written", "path", path, "identifiers", b.Vocabulary.Len(), "aliases", b.Aliases.Len())
	return nil
}
