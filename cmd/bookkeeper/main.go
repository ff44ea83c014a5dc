package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/paylens/bookkeeper/internal/config"
	"github.com/paylens/bookkeeper/internal/csvio"
	"github.com/paylens/bookkeeper/internal/router"
	"github.com/paylens/bookkeeper/internal/stream"
	"github.com/paylens/bookkeeper/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	// Load configuration
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadAndValidate(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Set up structured logging. The report goes to stdout, so logs go to
	// stderr.
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting bookkeeper",
		"version", version.Version,
		"commit", version.Commit,
		"input", inputPath,
	)

	// Handle shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(inputPath)
	if err != nil {
		logger.Error("failed to open input", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	dec, err := csvio.NewDecoder(f)
	if err != nil {
		logger.Error("failed to read input header", "error", err)
		os.Exit(1)
	}

	proc := stream.NewProcessor(stream.Config{
		Shards:     cfg.Stream.Shards,
		BufferSize: cfg.Stream.BufferSize,
		Router: router.Config{
			CreateOnAnyKind:       cfg.Accounts.CreateOnAnyKind,
			AllowWithdrawalReplay: cfg.Accounts.AllowWithdrawalReplay,
		},
	}, logger)

	if err := proc.Run(ctx, dec); err != nil {
		logger.Error("failed to process input", "error", err)
		os.Exit(1)
	}

	if err := csvio.NewEncoder(os.Stdout).WriteReport(proc.Snapshots()); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	stats := proc.Stats()
	logger.Info("bookkeeper finished",
		"received", stats.Received,
		"skipped", stats.Skipped,
		"failed", stats.Routing.Failed,
		"accounts", stats.Routing.AccountsCreated,
	)
}

// newLogger builds the slog handler described by the logging config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bookkeeper [-config file] input.csv")
	flag.PrintDefaults()
}
