package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingCredential is returned when no model API key can be resolved.
var ErrMissingCredential = errors.New("missing OPENAI_API_KEY: set it in the environment, a .env file or config.yaml")

// Config holds the application configuration
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Document DocumentConfig `mapstructure:"document"`
	Export   ExportConfig   `mapstructure:"export"`
	History  HistoryConfig  `mapstructure:"history"`
	LogLevel string         `mapstructure:"log_level"`
}

// LLMConfig holds the LLM configuration
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// DocumentConfig selects which decoders the extractor uses.
type DocumentConfig struct {
	PPTXMode      string `mapstructure:"pptx_mode"`
	LegacyFormats bool   `mapstructure:"legacy_formats"`
}

// ExportConfig lists the transcript formats offered to the user.
type ExportConfig struct {
	Formats []string `mapstructure:"formats"`
}

// HistoryConfig selects the conversation store backend.
type HistoryConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

const (
	PPTXLightweight = "lightweight"
	PPTXFull        = "full"

	HistoryMemory = "memory"
	HistorySQLite = "sqlite"
)

// Load reads config.yaml from CONFIG_PATH or the working directory, then
// applies environment overrides. The file is optional.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_PATH"))
}

// LoadFile is Load with an explicit config path. An empty path searches the
// working directory and tolerates a missing file; a non-empty one must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BECAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "OPENAI_API_KEY", "BECAS_LLM_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("document.pptx_mode", PPTXLightweight)
	v.SetDefault("document.legacy_formats", false)
	v.SetDefault("export.formats", []string{"txt", "pdf"})
	v.SetDefault("history.driver", HistoryMemory)
	v.SetDefault("history.dsn", "")
	v.SetDefault("log_level", "info")
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return ErrMissingCredential
	}
	switch c.Document.PPTXMode {
	case PPTXLightweight, PPTXFull:
	default:
		return fmt.Errorf("document.pptx_mode must be %q or %q, got %q", PPTXLightweight, PPTXFull, c.Document.PPTXMode)
	}
	switch c.History.Driver {
	case HistoryMemory, HistorySQLite:
	default:
		return fmt.Errorf("history.driver must be %q or %q, got %q", HistoryMemory, HistorySQLite, c.History.Driver)
	}
	for _, f := range c.Export.Formats {
		switch strings.ToLower(f) {
		case "txt", "pdf":
		default:
			return fmt.Errorf("export.formats: unknown format %q", f)
		}
	}
	return nil
}
