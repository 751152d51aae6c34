package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"horse.fit/staylens/internal/batch"
	"horse.fit/staylens/internal/cli"
	"horse.fit/staylens/internal/dataset"
	"horse.fit/staylens/internal/language"
	"horse.fit/staylens/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Minute, "Command timeout")
	dataDir := fs.String("data-dir", "", "Inside Airbnb data directory (default: DATA_DIR or a known location)")
	input := fs.String("input", "", "Reviews CSV (default: <data-dir>/"+dataset.FileReviews+")")
	out := fs.String("out", "", "Output CSV (default: <data-dir>/"+dataset.FileTranslatedReviews+")")
	lang := fs.String("lang", "", "Target language (default: TRANSLATION_TARGET_LANG)")
	provider := fs.String("provider", "", "Translation provider name (for example: local, google)")
	maxChars := fs.Int("max-chars", 0, "Max characters per provider call (default: provider and TRANSLATION_MAX_CHARS)")
	batchSize := fs.Int("batch-size", 0, "Max texts per provider call (default: provider and TRANSLATION_BATCH_SIZE)")
	sample := fs.Int("sample", -1, "Reviews to sample; 0 translates all (default: REVIEW_SAMPLE)")
	dryRun := fs.Bool("dry-run", false, "Plan batches without calling the translation provider")
	force := fs.Bool("force", false, "Retranslate even when a cached translation exists")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "translate does not accept positional arguments")
		return 2
	}
	if *maxChars < 0 || *batchSize < 0 {
		fmt.Fprintln(os.Stderr, "--max-chars and --batch-size must be >= 1 when set")
		return 2
	}

	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	targetLang := language.NormalizeCode(firstNonEmpty(*lang, cfg.TranslationTargetLang))
	if targetLang == "" {
		fmt.Fprintln(os.Stderr, "--lang must be a valid language code")
		return 2
	}

	inputPath := strings.TrimSpace(*input)
	outPath := strings.TrimSpace(*out)
	if inputPath == "" || outPath == "" {
		dir, err := resolveDataDir(*dataDir, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve data directory: %v\n", err)
			return 1
		}
		if inputPath == "" {
			inputPath = filepath.Join(dir, dataset.FileReviews)
		}
		if outPath == "" {
			outPath = filepath.Join(dir, dataset.FileTranslatedReviews)
		}
	}

	reviews, err := dataset.LoadReviews(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load reviews: %v\n", err)
		return 1
	}
	sampleSize := cfg.ReviewSample
	if *sample >= 0 {
		sampleSize = *sample
	}
	reviews = dataset.SampleReviews(reviews, sampleSize, dataset.DefaultSampleSeed)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("translate failed to connect to database")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if pool != nil {
		defer pool.Close()
	}

	manager, registry := newManager(cfg, pool, logger)
	resolved, err := registry.Provider(*provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid provider: %v\n", err)
		return 2
	}
	providerLimits := translation.LimitsFor(resolved)

	result, err := manager.TranslateReviews(ctx, reviews, translation.RunOptions{
		TargetLang:   targetLang,
		Provider:     resolved.Name(),
		MaxChars:     clampLimit(*maxChars, cfg.TranslationMaxChars, providerLimits.MaxChars),
		MaxBatchSize: clampLimit(*batchSize, cfg.TranslationBatchSize, providerLimits.MaxBatchSize),
		Force:        *force,
		DryRun:       *dryRun,
	})
	if err != nil {
		return reportTranslateError(err, pool != nil)
	}

	if *dryRun {
		rows := make([][]string, 0, len(result.Plan))
		for _, planned := range result.Plan {
			rows = append(rows, []string{
				fmt.Sprintf("%d", planned.Index),
				fmt.Sprintf("%d", planned.Offset),
				fmt.Sprintf("%d", len(planned.Items)),
				fmt.Sprintf("%d", planned.Chars),
			})
		}
		if err := writeTable([]string{"batch", "offset", "items", "chars"}, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render plan: %v\n", err)
			return 1
		}
	} else {
		if err := dataset.WriteTranslatedReviewsFile(outPath, translatedRows(reviews, result)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write translated reviews: %v\n", err)
			return 1
		}
	}

	fmt.Printf(
		"translate run=%s lang=%s provider=%s max_chars=%d batch_size=%d total=%d translated=%d cached=%d skipped=%d batches=%d dry_run=%t force=%t out=%s\n",
		result.RunID,
		result.TargetLang,
		result.ProviderName,
		result.Limits.MaxChars,
		result.Limits.MaxBatchSize,
		result.Stats.Total,
		result.Stats.Translated,
		result.Stats.Cached,
		result.Stats.Skipped,
		result.Stats.Batches,
		*dryRun,
		*force,
		outPath,
	)
	return 0
}

func reportTranslateError(err error, cached bool) int {
	var configErr *batch.ConfigurationError
	if errors.As(err, &configErr) {
		fmt.Fprintf(os.Stderr, "Invalid batch limits: %v\n", configErr)
		return 2
	}
	var storeErr *translation.StoreError
	if errors.As(err, &storeErr) {
		fmt.Fprintf(
			os.Stderr,
			"Batch %d was translated but could not be cached: %v\n",
			storeErr.BatchIndex,
			storeErr.Err,
		)
		fmt.Fprintln(os.Stderr, "Check the database connection; earlier batches are cached.")
		return 1
	}
	var remoteErr *batch.RemoteCallError
	if errors.As(err, &remoteErr) {
		fmt.Fprintf(
			os.Stderr,
			"Translation failed at batch %d after %d reviews: %v\n",
			remoteErr.BatchIndex,
			remoteErr.Translated,
			remoteErr.Err,
		)
		var statusErr *translation.StatusError
		if errors.As(err, &statusErr) && statusErr.Retryable() {
			fmt.Fprintln(os.Stderr, "The provider is overloaded or rate limiting; retry later or lower --batch-size.")
		}
		if cached {
			fmt.Fprintln(os.Stderr, "Batches before the failure are cached; rerun to resume.")
		}
		return 1
	}
	fmt.Fprintf(os.Stderr, "Translate reviews failed: %v\n", err)
	return 1
}

// translatedRows pairs every input review with its outcome. Reviews that were not
// translated keep their cleaned original text.
func translatedRows(reviews []dataset.Review, result *translation.RunResult) []dataset.TranslatedReview {
	rows := make([]dataset.TranslatedReview, 0, len(reviews))
	for i, review := range reviews {
		outcome := result.Translations[i]
		text := outcome.TranslatedText
		if text == "" {
			text = outcome.OriginalText
		}
		rows = append(rows, dataset.TranslatedReview{
			Review:         review,
			TranslatedText: text,
			SourceLang:     outcome.SourceLang,
		})
	}
	return rows
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
