package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hazyhaar/coo-registry/pkg/history"
)

func cmdHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	limit := fs.Int("limit", 20, "number of runs to list (0 = all)")
	runID := fs.String("run", "", "show the unmatched values of this run")
	fs.Parse(args)

	cfg, _, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("history is disabled (history_db is empty)")
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()

	if *runID != "" {
		values, err := store.Unmatched(ctx, *runID)
		if err != nil {
			return err
		}
		fmt.Printf("Run %s: %d values mapped to 'Unknown'\n", *runID, len(values))
		for _, v := range values {
			raw := "<null>"
			if v.RawValue != nil {
				raw = *v.RawValue
			}
			fmt.Printf("  %-10s %s\n", v.Method, raw)
		}
		return nil
	}

	runs, err := store.ListRuns(ctx, *limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tDATE\tINPUT\tMODE\tBUNDLE\tTOTAL\tMATCHED\tUNKNOWN")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s@%s\t%d\t%d\t%d\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04"), r.Input, r.Mode,
			r.BundleID, r.BundleVersion, r.Total, r.Matched, r.Unknown)
	}
	return tw.Flush()
}
