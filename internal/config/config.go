// Package config loads focus-agent settings from defaults, a YAML file, and
// FOCUS_AGENT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// ErrInvalid marks a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full application configuration.
type Config struct {
	DBPath      string `mapstructure:"db_path"`
	ExportDir   string `mapstructure:"export_dir"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	PromptsFile string `mapstructure:"prompts_file"`
	// Metrics logs model call totals at info level when a command finishes.
	Metrics bool `mapstructure:"metrics"`

	LLM      LLMConfig      `mapstructure:"llm"`
	Embed    EmbedConfig    `mapstructure:"embed"`
	History  HistoryConfig  `mapstructure:"history"`
	Review   ReviewConfig   `mapstructure:"review"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Temperature float32       `mapstructure:"temperature"`
}

type EmbedConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Dims     int    `mapstructure:"dims"`
}

type HistoryConfig struct {
	K      int `mapstructure:"k"`
	Budget int `mapstructure:"budget"`
}

type ReviewConfig struct {
	Candidates int  `mapstructure:"candidates"`
	WindowDays int  `mapstructure:"window_days"`
	Exact      bool `mapstructure:"exact"`
}

type FeedbackConfig struct {
	RecentDays int  `mapstructure:"recent_days"`
	Parallel   bool `mapstructure:"parallel"`
}

// Dir returns the default data directory, ~/.focus-agent.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focus-agent"
	}
	return filepath.Join(home, ".focus-agent")
}

func setDefaults(v *viper.Viper) {
	dir := Dir()
	v.SetDefault("db_path", filepath.Join(dir, "focus.db"))
	v.SetDefault("export_dir", filepath.Join(dir, "exports"))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("prompts_file", "")
	v.SetDefault("metrics", false)

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.model", "") // provider default
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("llm.max_retries", 0)
	v.SetDefault("llm.temperature", 0)

	v.SetDefault("embed.provider", "ollama")
	v.SetDefault("embed.model", "")
	v.SetDefault("embed.base_url", "")
	v.SetDefault("embed.api_key", "")
	v.SetDefault("embed.dims", 0)

	v.SetDefault("history.k", 5)
	v.SetDefault("history.budget", 2000)
	v.SetDefault("review.candidates", 50)
	v.SetDefault("review.window_days", 7)
	v.SetDefault("review.exact", false)
	v.SetDefault("feedback.recent_days", 3)
	v.SetDefault("feedback.parallel", true)
}

// Load reads configuration. path names a YAML file that must exist; when
// empty, $FOCUS_AGENT_CONFIG and then ~/.focus-agent/config.yaml are tried.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FOCUS_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// OPENAI_API_KEY is honored when the prefixed keys are unset. OLLAMA_HOST
	// is read by the Ollama providers only, so it never redirects OpenAI.
	v.BindEnv("llm.api_key", "FOCUS_AGENT_LLM_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("embed.api_key", "FOCUS_AGENT_EMBED_API_KEY", "OPENAI_API_KEY")

	if path == "" {
		path = os.Getenv("FOCUS_AGENT_CONFIG")
	}
	if path == "" {
		if p := filepath.Join(Dir(), "config.yaml"); fileExists(p) {
			path = p
		}
	}
	if path != "" {
		v.SetConfigFile(expandHome(path))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.ExportDir = expandHome(cfg.ExportDir)
	cfg.PromptsFile = expandHome(cfg.PromptsFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every unusable value, each wrapping ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.DBPath == "" {
		bad("db_path is empty")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		bad("log_level %q", c.LogLevel)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		bad("log_format %q (want console or json)", c.LogFormat)
	}
	if c.LLM.Provider != "ollama" && c.LLM.Provider != "openai" {
		bad("llm.provider %q (want ollama or openai)", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		bad("llm.timeout must be positive")
	}
	if c.LLM.MaxRetries < 0 {
		bad("llm.max_retries must not be negative")
	}
	switch c.Embed.Provider {
	case "ollama", "openai", "hash":
	default:
		bad("embed.provider %q (want ollama, openai or hash)", c.Embed.Provider)
	}
	if c.History.K <= 0 {
		bad("history.k must be positive")
	}
	if c.History.Budget <= 0 {
		bad("history.budget must be positive")
	}
	if c.Review.Candidates <= 0 {
		bad("review.candidates must be positive")
	}
	if c.Review.WindowDays <= 0 {
		bad("review.window_days must be positive")
	}
	if c.Feedback.RecentDays <= 0 {
		bad("feedback.recent_days must be positive")
	}
	return errors.Join(errs...)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
