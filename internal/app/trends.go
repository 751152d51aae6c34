package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"horse.fit/staylens/internal/analytics"
	"horse.fit/staylens/internal/cli"
	"horse.fit/staylens/internal/dataset"
)

func runTrends(args []string) int {
	fs := flag.NewFlagSet("trends", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	dataDir := fs.String("data-dir", "", "Inside Airbnb data directory (default: DATA_DIR or a known location)")
	top := fs.Int("top", dataset.DefaultTopHosts, "Number of top hosts whose extracts are read")
	host := fs.String("host", "", "Only show this host")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *top < 1 {
		fmt.Fprintln(os.Stderr, "--top must be >= 1")
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

	prices, err := loadHostPrices(dir, *top)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	weekly := filterWeekly(analytics.WeeklyHostPrices(prices), *host)

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"items": weekly}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(weekly))
	for _, item := range weekly {
		rows = append(rows, []string{
			truncateForTable(item.HostName, 32),
			formatUTCDate(item.WeekStart),
			fmt.Sprintf("%.2f", item.MeanPrice),
			fmt.Sprintf("%d", item.Samples),
		})
	}
	if err := writeTable([]string{"host", "week", "mean_price", "days"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}

// loadHostPrices reads the extracts of the top hosts found in listings.csv.
func loadHostPrices(dir string, top int) ([]dataset.HostPrice, error) {
	listings, err := dataset.LoadListings(filepath.Join(dir, dataset.FileListings))
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	files := dataset.DiscoverHostFiles(dir, dataset.TopHosts(listings, top))
	prices, err := dataset.LoadHostPrices(files)
	if err != nil {
		return nil, fmt.Errorf("failed to load host extracts: %w", err)
	}
	return prices, nil
}

func filterWeekly(items []analytics.WeeklyPrice, host string) []analytics.WeeklyPrice {
	host = strings.TrimSpace(host)
	if host == "" {
		return items
	}
	out := make([]analytics.WeeklyPrice, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(item.HostName, host) {
			out = append(out, item)
		}
	}
	return out
}
