package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hazyhaar/coo-registry/pkg/history"
	"github.com/hazyhaar/coo-registry/pkg/resolve"
	"github.com/hazyhaar/coo-registry/pkg/tabular"
	"github.com/hazyhaar/coo-registry/pkg/vocab"
)

func cmdValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	column := fs.String("col", "", "country-of-origin column (default: auto-detect)")
	sheet := fs.String("sheet", "", "XLSX sheet name (default: first sheet)")
	output := fs.String("output", "", "output path, .xlsx/.csv/.tsv/.json (default: <input>_validated.xlsx)")
	bundleDir := fs.String("bundle", "", "vocabulary bundle directory (overrides config)")
	modeFlag := fs.String("mode", "mapping", "output mode: mapping or full")
	workers := fs.Int("workers", -1, "resolution workers (default: config, 0 = GOMAXPROCS)")
	encoding := fs.String("encoding", "", "CSV/TSV source encoding, e.g. windows-1252")
	noHistory := fs.Bool("no-history", false, "do not record this run")
	fs.Parse(splitPositional(args))

	if fs.NArg() != 1 {
		return fmt.Errorf("validate needs exactly one input file")
	}
	input := fs.Arg(0)

	cfg, logger, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *bundleDir != "" {
		cfg.BundleDir = *bundleDir
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	mode, err := tabular.ParseMode(*modeFlag)
	if err != nil {
		return err
	}

	bundle, err := vocab.LoadBundle(cfg.BundleDir)
	if err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}
	resolver, err := resolve.FromBundle(bundle)
	if err != nil {
		return err
	}
	logger.Info("bundle loaded", "id", bundle.Manifest.ID, "version", bundle.Manifest.Version,
		"identifiers", bundle.Vocabulary.Len(), "aliases", bundle.Aliases.Len())

	table, err := tabular.Read(input, tabular.ReadOptions{Sheet: *sheet, Encoding: *encoding})
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	col := *column
	if col == "" {
		if col, err = tabular.DetectColumn(table.Header); err != nil {
			return err
		}
		logger.Info("auto-detected column", "column", col)
	}
	values, err := table.Values(col)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d rows from %s\n", len(table.Rows), input)

	start := time.Now()
	res := resolve.NewRunner(resolver,
		resolve.WithWorkers(cfg.Workers),
		resolve.WithLogger(logger),
	).Run(values)
	logger.Debug("batch resolved", "distinct", len(res.Records), "duration", time.Since(start))

	out, err := tabular.Assemble(mode, table, col, res)
	if err != nil {
		return err
	}
	outPath := *output
	if outPath == "" {
		outPath = tabular.DefaultOutputPath(input, mode)
	}
	if err := tabular.Write(outPath, out); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	rows := 0
	if mode == tabular.ModeFull {
		rows = len(out.Rows)
	}
	if err := res.WriteReport(os.Stdout, string(mode), rows); err != nil {
		return err
	}
	fmt.Printf("Output written to: %s\n", outPath)

	if !*noHistory && cfg.HistoryDB != "" {
		recordHistory(cfg.HistoryDB, history.RunInfo{
			Input:         input,
			Column:        col,
			Mode:          string(mode),
			BundleID:      bundle.Manifest.ID,
			BundleVersion: bundle.Manifest.Version,
		}, res, logger)
	}
	return nil
}

// recordHistory never fails the run: the output is already written.
func recordHistory(path string, info history.RunInfo, res *resolve.BatchResult, logger *slog.Logger) {
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("history unavailable", "path", path, "error", err)
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	runID, err := store.RecordRun(ctx, info, res)
	if err != nil {
		logger.Warn("record run failed", "error", err)
		return
	}
	logger.Info("run recorded", "run_id", runID, "unknown", res.Summary.Unknown)
}
