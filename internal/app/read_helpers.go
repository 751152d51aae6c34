package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/message"

	"horse.fit/staylens/internal/cli"
	"horse.fit/staylens/internal/config"
	"horse.fit/staylens/internal/dataset"
	"horse.fit/staylens/internal/db"
	"horse.fit/staylens/internal/logging"
	"horse.fit/staylens/internal/translation"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func truncateForTable(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if maxLen <= 0 {
		return trimmed
	}
	if utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}

	runes := []rune(trimmed)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func pointerStringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func pointerIntOrEmpty(value *int) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%d", *value)
}

func formatUTCDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format("2006-01-02")
}

func formatUTCTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func formatUTCTimestampPtr(value *time.Time) string {
	if value == nil || value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

// numberPrinter formats counts with English thousands separators.
func numberPrinter() *message.Printer {
	return message.NewPrinter(xlanguage.English)
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// loadConfig applies the --env file, then reads and validates the environment.
func loadConfig(envLoader *cli.EnvLoader) (*config.Config, error) {
	if envLoader != nil {
		_, err := envLoader.Load()
		if err != nil && !errors.Is(err, cli.ErrEnvFileNotFound) {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func loadConfigAndLogger(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(envLoader)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// resolveDataDir prefers the --data-dir flag, then DATA_DIR, then the default candidates.
func resolveDataDir(flagValue string, cfg *config.Config) (string, error) {
	configured := strings.TrimSpace(flagValue)
	if configured == "" && cfg != nil {
		configured = cfg.DataDir
	}
	return dataset.ResolveDataDir(configured, dataset.DefaultDataDirs)
}

// openStore connects the translation cache. It returns a nil pool without error when
// DATABASE_URL is not set.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*db.Pool, error) {
	pool, err := db.NewPool(ctx, cfg, db.WithLogger(logger))
	if errors.Is(err, db.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func connectReadPool(timeout time.Duration, envLoader *cli.EnvLoader) (context.Context, context.CancelFunc, *db.Pool, error) {
	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		return nil, nil, nil, err
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	pool, err := db.NewPool(ctx, cfg, db.WithLogger(logger))
	if err != nil {
		cancel()
		if errors.Is(err, db.ErrNotConfigured) {
			return nil, nil, nil, fmt.Errorf("DATABASE_URL is required for this command")
		}
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return ctx, cancel, pool, nil
}

func providerSettings(cfg *config.Config) translation.ProviderSettings {
	return translation.ProviderSettings{
		DefaultProvider: cfg.TranslationProvider,
		LocalEndpoint:   cfg.TranslationEndpoint,
		LocalModel:      cfg.TranslationModel,
		GoogleAPIKey:    cfg.GoogleTranslateAPIKey,
		GoogleEndpoint:  cfg.GoogleTranslateEndpoint,
	}
}

// newManager wires the registry and, when pool is non-nil, the persistent cache.
func newManager(cfg *config.Config, pool *db.Pool, logger zerolog.Logger) (*translation.Manager, *translation.Registry) {
	registry := translation.NewRegistryFromSettings(providerSettings(cfg))
	opts := []translation.ManagerOption{translation.WithLogger(logger)}
	if pool == nil {
		return translation.NewManager(nil, registry, opts...), registry
	}
	return translation.NewManager(pool, registry, opts...), registry
}

// clampLimit picks the flag value when set, otherwise the smaller of the configured
// and the provider's limit.
func clampLimit(flagValue, configured, provider int) int {
	if flagValue != 0 {
		return flagValue
	}
	if configured > 0 && configured < provider {
		return configured
	}
	return provider
}
