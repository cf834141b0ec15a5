package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataloom-cli/internal/ai"
)

// Error indicates missing or invalid configuration the run cannot
// proceed without.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}

// Global configuration structure.
type Global struct {
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`
	Model       string `mapstructure:"model" yaml:"model"`
	MaxTokens   int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	PromptLimit int    `mapstructure:"prompt_limit" yaml:"prompt_limit"`

	// Clustering configuration
	Clusters int   `mapstructure:"clusters" yaml:"clusters"`
	Seed     int64 `mapstructure:"seed" yaml:"seed"`
	MaxIter  int   `mapstructure:"max_iter" yaml:"max_iter"`

	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMinDelayMs  int `mapstructure:"retry_min_delay_ms" yaml:"retry_min_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Logging
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Token returns the proxy API token. The token is read from the
// environment only and never lives in the config file.
func Token() (string, error) {
	token := os.Getenv("AIPROXY_TOKEN")
	if token == "" {
		return "", &Error{Key: "AIPROXY_TOKEN", Reason: "environment variable is not set"}
	}
	return token, nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.dataloom/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".dataloom")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATALOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("base_url", ai.DefaultBaseURL)
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("max_tokens", 500)
	v.SetDefault("prompt_limit", 0)
	v.SetDefault("clusters", 3)
	v.SetDefault("seed", 42)
	v.SetDefault("max_iter", 300)
	v.SetDefault("output_dir", ".")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 1000)
	v.SetDefault("retry_min_delay_ms", 4000)
	v.SetDefault("retry_max_delay_ms", 10000)
	// Logging defaults
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".dataloom")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Clusters <= 0 {
		return nil, &Error{Key: "clusters", Reason: fmt.Sprintf("must be positive, got %d", c.Clusters)}
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return &c, nil
}
