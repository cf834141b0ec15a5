package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/dataloom-cli/internal/config"
	"github.com/KaramelBytes/dataloom-cli/internal/pipeline"
	"github.com/KaramelBytes/dataloom-cli/internal/report"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

var (
	anaClusters    int
	anaSeed        int64
	anaMaxIter     int
	anaOutputDir   string
	anaDelimiter   string
	anaModel       string
	anaMaxTokens   int
	anaPromptLimit int
	anaBaseURL     string
	anaDryRun      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Analyze a CSV dataset and write a Markdown report",
	Example: `  dataloom analyze sales.csv
  dataloom analyze sales.csv --clusters 4 --seed 7 --output-dir reports
  dataloom analyze sales.csv --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
			applyPersistentOverrides()
		}

		// The token gate runs before any analysis work.
		token, err := cfgpkg.Token()
		if err != nil {
			return err
		}

		f := cmd.Flags()
		if f.Changed("clusters") && anaClusters > 0 {
			cfg.Clusters = anaClusters
		}
		if f.Changed("seed") {
			cfg.Seed = anaSeed
		}
		if f.Changed("max-iter") && anaMaxIter > 0 {
			cfg.MaxIter = anaMaxIter
		}
		if f.Changed("output-dir") && anaOutputDir != "" {
			cfg.OutputDir = anaOutputDir
		}
		if f.Changed("model") && anaModel != "" {
			cfg.Model = anaModel
		}
		if f.Changed("max-tokens") && anaMaxTokens > 0 {
			cfg.MaxTokens = anaMaxTokens
		}
		if f.Changed("prompt-limit") && anaPromptLimit > 0 {
			cfg.PromptLimit = anaPromptLimit
		}
		if f.Changed("base-url") && anaBaseURL != "" {
			cfg.BaseURL = anaBaseURL
		}

		delim, err := parseDelimiter(anaDelimiter)
		if err != nil {
			return err
		}

		client := ai.NewClientWithBaseURL(token,
			time.Duration(cfg.HTTPTimeoutSec)*time.Second,
			cfg.RetryMaxAttempts,
			time.Duration(cfg.RetryBaseDelayMs)*time.Millisecond,
			time.Duration(cfg.RetryMinDelayMs)*time.Millisecond,
			time.Duration(cfg.RetryMaxDelayMs)*time.Millisecond,
			cfg.BaseURL)

		// Reachability probe; informational only.
		if !anaDryRun {
			if status, perr := client.Ping(cmd.Context()); perr != nil {
				fmt.Printf("Error reaching proxy: %v\n", perr)
			} else {
				fmt.Printf("Proxy is reachable: %d\n", status)
			}
		}

		narrator := &ai.Narrator{
			Client:      client,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			PromptLimit: cfg.PromptLimit,
			DryRun:      anaDryRun,
		}
		runner := &pipeline.Runner{
			Narrator: narrator,
			Reporter: &report.Writer{OutDir: cfg.OutputDir},
			Opts: pipeline.Options{
				Clusters:  cfg.Clusters,
				Seed:      cfg.Seed,
				MaxIter:   cfg.MaxIter,
				Delimiter: delim,
			},
		}
		out, err := runner.Run(cmd.Context(), path)
		if err != nil {
			return err
		}

		if anaDryRun {
			if prompt, perr := narrator.BuildPrompt(&out.Summary, out.Clusters); perr == nil {
				fmt.Println("\n--dry-run: no API call was made. Prompt preview below --")
				fmt.Printf("Prompt tokens: ≈%d\n", utils.CountTokens(prompt))
				fmt.Println(prompt)
			}
		}
		if out.ReportDir != "" {
			fmt.Printf("✓ Report written to %s\n", filepath.Join(out.ReportDir, "README.md"))
		}
		return nil
	},
}

// parseDelimiter maps the flag spelling to a rune; empty means sniff
// from the file extension.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntVarP(&anaClusters, "clusters", "k", 0, "number of K-Means clusters (overrides config)")
	analyzeCmd.Flags().Int64Var(&anaSeed, "seed", 0, "random seed for K-Means initialization (overrides config)")
	analyzeCmd.Flags().IntVar(&anaMaxIter, "max-iter", 0, "max K-Means iterations (overrides config)")
	analyzeCmd.Flags().StringVarP(&anaOutputDir, "output-dir", "o", "", "directory to create the report folder in (overrides config)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed from extension if omitted)")
	analyzeCmd.Flags().StringVar(&anaModel, "model", "", "model for narrative generation (overrides config)")
	analyzeCmd.Flags().IntVar(&anaMaxTokens, "max-tokens", 0, "max completion tokens (overrides config)")
	analyzeCmd.Flags().IntVar(&anaPromptLimit, "prompt-limit", 0, "truncate the prompt to ~N tokens (0 = no limit)")
	analyzeCmd.Flags().StringVar(&anaBaseURL, "base-url", "", "proxy base URL (overrides config)")
	analyzeCmd.Flags().BoolVar(&anaDryRun, "dry-run", false, "skip the proxy call, print the prompt, report uses the fallback narrative")
}
