package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/staylens/internal/cli"
	"horse.fit/staylens/internal/db"
)

func runRuns(args []string) int {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	limit := fs.Int("limit", db.DefaultRunListLimit, "Number of runs to list")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "runs does not accept positional arguments")
		return 2
	}
	if *limit < 1 {
		fmt.Fprintln(os.Stderr, "--limit must be >= 1")
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, pool, err := connectReadPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	runs, err := pool.ListTranslationRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list translation runs: %v\n", err)
		return 1
	}
	stats, err := pool.TranslationStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query translation stats: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"items": runs, "stats": stats}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.RunID,
			formatUTCTimestamp(run.StartedAt),
			formatUTCTimestampPtr(run.FinishedAt),
			run.Status,
			run.ProviderName,
			run.TargetLang,
			fmt.Sprintf("%d/%d", run.Translated+run.Cached, run.Total),
			fmt.Sprintf("%d", run.Batches),
			pointerIntOrEmpty(run.FailedBatchIndex),
			truncateForTable(pointerStringOrEmpty(run.ErrorMessage), 48),
		})
	}
	if err := writeTable(
		[]string{"run_id", "started_at", "finished_at", "status", "provider", "lang", "done", "batches", "failed_batch", "error"},
		rows,
	); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render runs table: %v\n", err)
		return 1
	}

	fmt.Println()
	p := numberPrinter()
	statRows := [][]string{
		{"translations", p.Sprintf("%d", stats.Translations)},
		{"runs", p.Sprintf("%d", stats.Runs)},
		{"failed_runs", p.Sprintf("%d", stats.FailedRuns)},
	}
	for _, target := range stats.Targets {
		statRows = append(statRows, []string{
			"translations_" + target.TargetLang,
			p.Sprintf("%d (%d reviews)", target.Translations, target.Reviews),
		})
	}
	if err := writeTable([]string{"metric", "value"}, statRows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render stats table: %v\n", err)
		return 1
	}
	return 0
}
