// Package main is the entry point for the pesantren site server. The
// serve command loads configuration, connects to services, sets up
// routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pesantren/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "pesantren",
	Short:         "Pondok pesantren website API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// SIGINT or SIGTERM cancels the command context; serve drains on it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setup installs the logger and loads configuration. Output is JSON in
// production and text in development.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"section_source", cfg.SectionSource,
	)
	return cfg, nil
}
