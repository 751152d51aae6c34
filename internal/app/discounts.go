package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"horse.fit/staylens/internal/analytics"
	"horse.fit/staylens/internal/cli"
	"horse.fit/staylens/internal/dataset"
)

const defaultDiscountRows = 20

func runDiscounts(args []string) int {
	fs := flag.NewFlagSet("discounts", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	dataDir := fs.String("data-dir", "", "Inside Airbnb data directory (default: DATA_DIR or a known location)")
	listingID := fs.Int64("listing", 0, "Only show this listing id")
	limit := fs.Int("limit", defaultDiscountRows, "Number of largest discounts to print")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *limit < 1 {
		fmt.Fprintln(os.Stderr, "--limit must be >= 1")
		return 2
	}
	if *listingID < 0 {
		fmt.Fprintln(os.Stderr, "--listing must be a positive id")
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

	days, err := dataset.LoadCalendar(filepath.Join(dir, dataset.FileCalendar))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load calendar: %v\n", err)
		return 1
	}
	discounts := analytics.FilterDiscounts(analytics.CalendarDiscounts(days), *listingID)
	summary := analytics.SummarizeDiscounts(discounts)
	largest := analytics.LargestDiscounts(discounts, *limit)

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"items": largest, "summary": summary}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(largest))
	for _, item := range largest {
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ListingID),
			formatUTCDate(item.Date),
			fmt.Sprintf("%.2f", item.Price),
			fmt.Sprintf("%.2f", item.AdjustedPrice),
			fmt.Sprintf("%.2f", item.Discount),
		})
	}
	if err := writeTable([]string{"listing_id", "date", "price", "adjusted_price", "discount"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	mean := 0.0
	if summary.MeanDiscount != nil {
		mean = *summary.MeanDiscount
	}
	fmt.Printf("Days priced: %d  discounted: %d  mean discount: %.2f\n", summary.Days, summary.Discounted, mean)
	return 0
}
