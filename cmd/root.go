package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dataloom-cli/internal/config"
	"github.com/KaramelBytes/dataloom-cli/internal/logging"
)

var (
	// Global flags (wired to config)
	cfgFile      string
	flagLogFile  string
	flagLogLevel string
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMinDelayMs  int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global

	logCleanup func() error
)

var rootCmd = &cobra.Command{
	Use:   "dataloom",
	Short: "DataLoom CLI: automated CSV analysis with clustering and AI narratives",
	Long: `DataLoom loads a CSV dataset, cleans it, summarizes its structure,
clusters the numeric features with K-Means, asks an OpenAI-compatible
proxy for a narrative, and writes a Markdown report.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	err := rootCmd.Execute()
	if logCleanup != nil {
		_ = logCleanup()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataloom/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "log file path, rotated when it grows (default stderr)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max attempts per proxy request (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMinDelayMs, "retry-min-ms", 0, "min retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal here: analyze reloads and surfaces the real error
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	applyPersistentOverrides()

	lc := logging.DefaultConfig()
	lc.Level = cfg.LogLevel
	lc.FilePath = cfg.LogFile
	cleanup, err := logging.Setup(lc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to set up logging: %v\n", err)
		return
	}
	logCleanup = cleanup
}

// applyPersistentOverrides folds changed persistent flags into cfg.
func applyPersistentOverrides() {
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-min-ms") && flagRetryMinDelayMs > 0 {
		cfg.RetryMinDelayMs = flagRetryMinDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	if f.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
}
