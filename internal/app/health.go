package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/staylens/internal/cli"
	"horse.fit/staylens/internal/translation"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Database ping timeout")
	dataDir := fs.String("data-dir", "", "Inside Airbnb data directory (default: DATA_DIR or a known location)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	healthy := true
	dir, err := resolveDataDir(*dataDir, cfg)
	if err != nil {
		healthy = false
		fmt.Printf("data_dir: %v\n", err)
	} else {
		fmt.Printf("data_dir: %s\n", dir)
	}

	registry := translation.NewRegistryFromSettings(providerSettings(cfg))
	fmt.Printf("providers: %s (default %s)\n", strings.Join(registry.ProviderNames(), ", "), registry.DefaultProvider())
	if _, err := registry.Provider(""); err != nil {
		healthy = false
		fmt.Printf("default provider: %v\n", err)
	}

	if !cfg.HasDatabase() {
		fmt.Println("database: not configured (translation cache disabled)")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		pool, err := openStore(ctx, cfg, logger)
		if err == nil {
			err = pool.Ping(ctx)
			_ = pool.Close()
		}
		if err != nil {
			healthy = false
			fmt.Printf("database: %v\n", err)
		} else {
			fmt.Println("database: ok")
		}
	}

	if !healthy {
		return 1
	}
	fmt.Println("ok")
	return 0
}
