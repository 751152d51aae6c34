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
	"horse.fit/staylens/internal/geo"
)

const (
	metricPrice = "price"
	metricScore = "score"
)

func runGeo(args []string) int {
	fs := flag.NewFlagSet("geo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	dataDir := fs.String("data-dir", "", "Inside Airbnb data directory (default: DATA_DIR or a known location)")
	file := fs.String("file", "", "Neighbourhood GeoJSON (default: <data-dir>/"+dataset.FileNeighbourhoods+")")
	metric := fs.String("metric", metricPrice, "Ranking metric: price or score")
	top := fs.Int("top", 10, "Number of neighbourhoods to rank")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	selected := strings.ToLower(strings.TrimSpace(*metric))
	if selected != metricPrice && selected != metricScore {
		fmt.Fprintln(os.Stderr, "--metric must be price or score")
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

	path := strings.TrimSpace(*file)
	if path == "" {
		path = filepath.Join(dir, dataset.FileNeighbourhoods)
	}
	fc, err := geo.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid neighbourhood boundaries: %v\n", err)
		return 1
	}

	values, err := neighbourhoodValues(dir, selected)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ranking := analytics.TopN(values, *top)
	unmatched := geo.Unmatched(fc, analytics.ValueMap(values))

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{
			"file":           path,
			"features":       len(fc.Features),
			"metric":         selected,
			"ranking":        ranking,
			"unmatched":      unmatched,
			"neighbourhoods": fc.Names(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf("%s: %d features valid\n", path, len(fc.Features))
	for _, name := range unmatched {
		fmt.Fprintf(os.Stderr, "Warning: no boundary for neighbourhood %q\n", name)
	}
	rows := make([][]string, 0, len(ranking))
	for i, item := range ranking {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			item.Neighbourhood,
			fmt.Sprintf("%.2f", item.Value),
			fmt.Sprintf("%d", item.Count),
		})
	}
	if err := writeTable([]string{"rank", "neighbourhood", selected, "listings"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}

func neighbourhoodValues(dir, metric string) ([]analytics.NeighbourhoodValue, error) {
	listings, err := dataset.LoadListings(filepath.Join(dir, dataset.FileListings))
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	if metric == metricPrice {
		return analytics.MeanPriceByNeighbourhood(listings), nil
	}
	detailed, err := dataset.LoadDetailedListings(filepath.Join(dir, dataset.FileDetailedListings))
	if err != nil {
		return nil, fmt.Errorf("failed to load detailed listings: %w", err)
	}
	return analytics.ReviewScoresByNeighbourhood(listings, detailed), nil
}
