package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"horse.fit/staylens/internal/cli"
	"horse.fit/staylens/internal/dataset"
	"horse.fit/staylens/internal/httpapi"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8090, "HTTP port")
	dataDir := fs.String("data-dir", "", "Inside Airbnb data directory (default: DATA_DIR or a known location)")
	topHosts := fs.Int("top-hosts", dataset.DefaultTopHosts, "Number of top hosts whose price extracts are loaded")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 2*time.Minute, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	loadTimeout := fs.Duration("load-timeout", 5*time.Minute, "Dataset load timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}
	if *topHosts < 1 {
		fmt.Fprintln(os.Stderr, "--top-hosts must be >= 1")
		return 2
	}

	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	dir, err := resolveDataDir(*dataDir, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve data directory: %v\n", err)
		return 1
	}

	loadCtx, loadCancel := context.WithTimeout(context.Background(), *loadTimeout)
	defer loadCancel()

	snapshot, err := loadSnapshot(loadCtx, dir, *topHosts, cfg.ReviewSample)
	if err != nil {
		logger.Error().Err(err).Str("data_dir", dir).Msg("serve failed to load datasets")
		fmt.Fprintf(os.Stderr, "Failed to load datasets: %v\n", err)
		return 1
	}
	for _, warning := range snapshot.Warnings {
		logger.Warn().Str("data_dir", dir).Msg(warning)
	}

	pool, err := openStore(loadCtx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to connect to database")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	deps := httpapi.Deps{Snapshot: snapshot}
	if pool != nil {
		defer pool.Close()
		deps.Runs = pool
	}
	deps.Manager, deps.Registry = newManager(cfg, pool, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	srv := httpapi.NewServer(deps, logger, httpapi.Options{
		Host:            *host,
		Port:            *port,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
		APITokenHash:    cfg.APITokenHash,
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}

// loadSnapshot reads every dataset of dir once and aggregates it for the API.
func loadSnapshot(ctx context.Context, dir string, topHosts, reviewSample int) (*httpapi.Snapshot, error) {
	data, err := dataset.LoadAll(ctx, dir, dataset.LoadOptions{ReviewSample: reviewSample})
	if err != nil {
		return nil, err
	}

	files := dataset.DiscoverHostFiles(dir, dataset.TopHosts(data.Listings, topHosts))
	prices, err := dataset.LoadHostPrices(files)
	if err != nil {
		return nil, fmt.Errorf("load host extracts: %w", err)
	}

	texts, source, err := dataset.LoadReviewTexts(dir)
	if err != nil {
		data.Warnings = append(data.Warnings, err.Error())
	}
	return httpapi.NewSnapshot(data, prices, texts, source), nil
}
