package main

import (
	"fmt"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Dosada05/event-brackets/config"
)

var rootCmd = &cobra.Command{
	Use:   "bracketd",
	Short: "Single elimination brackets for tournament events",
	Long: `bracketd generates single elimination brackets for registered participants,
records match winners and serves the live bracket to the public display page.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(bracketCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

// newLogger uses charmbracelet/log for console output and slog's JSON handler otherwise.
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           charmlog.Level(cfg.LogLevel),
		Prefix:          "bracketd",
	})
	return slog.New(handler)
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bracketd: %v\n", err)
		os.Exit(1)
	}
}
