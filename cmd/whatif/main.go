package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/whatif/internal/api"
	"github.com/csheth/whatif/internal/config"
	"github.com/csheth/whatif/internal/logging"
	"github.com/csheth/whatif/internal/response"
	"github.com/csheth/whatif/internal/tui"
)

var (
	// Global flags
	envFile    string
	endpoint   string
	minLoading time.Duration
	layoutName string
	logFile    string
	logLevel   string

	noAltScreen bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Ask what-if questions and explore the consequences",
	Long: `whatif sends a hypothetical to the WhatIf service and shows the answer as a
scenario, its consequences and a short analysis.

Run without arguments to start the interactive terminal client, or use
"whatif serve" to run the service itself.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd)

		logCfg := cfg.Logging()
		// The interactive client owns the terminal, so it only logs to a file.
		logCfg.Console = cmd.HasParent()
		logger, err = logging.New(logCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.StringVar(&endpoint, "endpoint", "", "WhatIf service URL (default $WHATIF_ENDPOINT or "+api.DefaultEndpoint+")")
	pf.StringVar(&logFile, "log-file", "", "write JSON logs to this file (default $WHATIF_LOG_FILE)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default $WHATIF_LOG_LEVEL)")

	f := rootCmd.Flags()
	f.DurationVar(&minLoading, "min-loading", 0, "keep the loading state visible at least this long (default $WHATIF_MIN_LOADING)")
	f.StringVar(&layoutName, "layout", "", "empty section handling: omit-empty, all or raw (default $WHATIF_LAYOUT)")
	f.BoolVar(&noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	rootCmd.AddCommand(serveCmd, askCmd)
}

func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = endpoint
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("min-loading") {
		cfg.MinLoading = minLoading
	}
	if flags.Changed("layout") {
		cfg.Layout = layoutName
	}
}

func runInteractive() error {
	if _, ok := response.ParsePolicy(cfg.Layout); !ok {
		return fmt.Errorf("unknown layout %q (want omit-empty, all or raw)", cfg.Layout)
	}
	client := api.NewClient(cfg.Endpoint, &http.Client{Timeout: 2 * time.Minute})
	logger.Info("starting terminal client",
		zap.String("endpoint", client.Endpoint()),
		zap.Duration("min_loading", cfg.MinLoading),
		zap.String("layout", cfg.Layout))

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Transport:  client,
			MinLoading: cfg.MinLoading,
			Policy:     cfg.LayoutPolicy(),
			Logger:     logger.Named("tui"),
		}),
		opts...,
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
