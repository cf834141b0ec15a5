package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dataloom-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DataLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		fmt.Printf("aiproxy_token: %s (from environment)\n", mask(os.Getenv("AIPROXY_TOKEN")))
		fmt.Printf("base_url: %s\n", cfg.BaseURL)
		fmt.Printf("model: %s\n", cfg.Model)
		fmt.Printf("max_tokens: %d\n", cfg.MaxTokens)
		fmt.Printf("prompt_limit: %d\n", cfg.PromptLimit)
		fmt.Printf("clusters: %d\n", cfg.Clusters)
		fmt.Printf("seed: %d\n", cfg.Seed)
		fmt.Printf("max_iter: %d\n", cfg.MaxIter)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Printf("retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Printf("retry_min_delay_ms: %d\n", cfg.RetryMinDelayMs)
		fmt.Printf("retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		if cfg.LogFile != "" {
			fmt.Printf("log_file: %s\n", cfg.LogFile)
		}
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "aiproxy_token":
			return fmt.Errorf("the token is read from the AIPROXY_TOKEN environment variable and is never written to disk")
		case "base_url":
			cfg.BaseURL = val
		case "model":
			cfg.Model = val
		case "max_tokens":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_tokens: %w", err)
			}
			cfg.MaxTokens = i
		case "prompt_limit":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for prompt_limit: %v", val)
			}
			cfg.PromptLimit = i
		case "clusters":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid cluster count: %v", val)
			}
			cfg.Clusters = i
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			cfg.Seed = i
		case "max_iter":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for max_iter: %v", val)
			}
			cfg.MaxIter = i
		case "output_dir":
			cfg.OutputDir = val
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			cfg.HTTPTimeoutSec = i
		case "retry_max_attempts":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for retry_max_attempts: %v", val)
			}
			cfg.RetryMaxAttempts = i
		case "retry_base_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for retry_base_delay_ms: %v", val)
			}
			cfg.RetryBaseDelayMs = i
		case "retry_min_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for retry_min_delay_ms: %v", val)
			}
			cfg.RetryMinDelayMs = i
		case "retry_max_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for retry_max_delay_ms: %v", val)
			}
			cfg.RetryMaxDelayMs = i
		case "log_file":
			cfg.LogFile = val
		case "log_level":
			switch val {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = val
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
