// Package config loads graphtran tool configuration from a YAML file with
// environment-variable overrides (GRAPHTRAN_ prefix). The API key is taken
// from GRAPHTRAN_API_KEY in preference to the file so secrets stay out of
// checked-in configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/graphtran/graphtran"
)

const (
	defaultConfigName = "graphtran"
	defaultConfigType = "yaml"
	envPrefix         = "GRAPHTRAN"

	// EnvAPIKey overrides the file-configured API key.
	EnvAPIKey = "GRAPHTRAN_API_KEY"
)

// ErrInvalid indicates the loaded configuration is unusable.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the tool configuration.
type Config struct {
	// Provider selects the adapter: "openai" (default) or "ollama".
	Provider string `mapstructure:"provider"`
	// Endpoint overrides the provider's default chat-completion URL.
	Endpoint string `mapstructure:"endpoint"`
	// APIKey authenticates against the provider. Prefer GRAPHTRAN_API_KEY.
	APIKey string `mapstructure:"api_key"`
	// Model is the provider-defined model identifier.
	Model string `mapstructure:"model"`
	// OrganizationID is sent as OpenAI-Organization when set.
	OrganizationID string `mapstructure:"organization_id"`
	// Target is the output language used to select and render system prompts.
	Target string `mapstructure:"target"`
	// PromptDir holds the system-prompt YAML manifests.
	PromptDir string `mapstructure:"prompt_dir"`
	// SourcePaths are files whose contents are prepended to requests as
	// reference material. Optional.
	SourcePaths []string `mapstructure:"source_paths"`
	// MaxConcurrent bounds parallel graph translations in batch mode.
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// Load reads configuration from path (or the default search locations when
// path is empty) and applies environment overrides. A missing config file is
// not an error; env vars and defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.graphtran")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv alone does not feed Unmarshal for keys absent from both
	// defaults and file; bind every key so GRAPHTRAN_* overrides always apply.
	for _, key := range []string{
		"provider", "endpoint", "api_key", "model", "organization_id",
		"target", "prompt_dir", "source_paths", "max_concurrent",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind env %q: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %q: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-4o")
	v.SetDefault("target", "cpp")
	v.SetDefault("prompt_dir", "prompts")
	v.SetDefault("max_concurrent", 4)
}

func (c *Config) validate() error {
	switch c.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalid, c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model must not be empty", ErrInvalid)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("%w: max_concurrent must be at least 1", ErrInvalid)
	}
	return nil
}

// ProviderConfig converts the tool configuration into the adapter
// configuration.
func (c *Config) ProviderConfig() graphtran.ProviderConfig {
	return graphtran.ProviderConfig{
		Endpoint:       c.Endpoint,
		APIKey:         c.APIKey,
		Model:          c.Model,
		OrganizationID: c.OrganizationID,
	}
}
