package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/staylens/internal/analytics"
	"horse.fit/staylens/internal/cli"
	"horse.fit/staylens/internal/dataset"
)

func runOverview(args []string) int {
	fs := flag.NewFlagSet("overview", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")
	dataDir := fs.String("data-dir", "", "Inside Airbnb data directory (default: DATA_DIR or a known location)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	dir, err := resolveDataDir(*dataDir, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve data directory: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	data, err := dataset.LoadAll(ctx, dir, dataset.LoadOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load datasets: %v\n", err)
		return 1
	}
	for _, warning := range data.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	counts := analytics.Overview(data)
	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"data_dir": dir, "counts": counts, "warnings": data.Warnings}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeTable([]string{"metric", "value"}, overviewRows(counts)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}

func overviewRows(counts analytics.Counts) [][]string {
	p := numberPrinter()
	rows := [][]string{
		{"listings", p.Sprintf("%d", counts.Listings)},
		{"detailed_listings", p.Sprintf("%d", counts.DetailedListings)},
		{"reviews", p.Sprintf("%d", counts.Reviews)},
		{"calendar_days", p.Sprintf("%d", counts.CalendarDays)},
		{"hosts", p.Sprintf("%d", counts.Hosts)},
		{"neighbourhoods", p.Sprintf("%d", counts.Neighbourhoods)},
	}
	if counts.MeanPrice != nil {
		rows = append(rows, []string{"mean_price", p.Sprintf("%.2f", *counts.MeanPrice)})
	}
	return rows
}
