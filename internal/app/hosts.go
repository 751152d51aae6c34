package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"horse.fit/staylens/internal/cli"
	"horse.fit/staylens/internal/dataset"
)

type hostRow struct {
	HostName string `json:"host_name"`
	Listings int    `json:"listings"`
	Extract  string `json:"extract,omitempty"`
}

func runHosts(args []string) int {
	fs := flag.NewFlagSet("hosts", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	dataDir := fs.String("data-dir", "", "Inside Airbnb data directory (default: DATA_DIR or a known location)")
	top := fs.Int("top", dataset.DefaultTopHosts, "Number of hosts to list")
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

	rows, err := listHosts(dir, *top)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"items": rows}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		extract := row.Extract
		if extract == "" {
			extract = "-"
		}
		tableRows = append(tableRows, []string{
			truncateForTable(row.HostName, 40),
			fmt.Sprintf("%d", row.Listings),
			extract,
		})
	}
	if err := writeTable([]string{"host", "listings", "extract"}, tableRows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}

func listHosts(dir string, top int) ([]hostRow, error) {
	listings, err := dataset.LoadListings(filepath.Join(dir, dataset.FileListings))
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	hosts := dataset.TopHosts(listings, top)
	extracts := make(map[string]string)
	for _, file := range dataset.DiscoverHostFiles(dir, hosts) {
		extracts[file.HostName] = filepath.Base(file.Path)
	}

	rows := make([]hostRow, 0, len(hosts))
	for _, host := range hosts {
		rows = append(rows, hostRow{
			HostName: host.HostName,
			Listings: host.Listings,
			Extract:  extracts[host.HostName],
		})
	}
	return rows, nil
}
