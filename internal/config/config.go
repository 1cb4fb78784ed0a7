// Package config provides Viper-based configuration loading for the Navigator client.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// APIConfig holds game server endpoint settings. BaseURL and WSBaseURL are
// optional overrides; when empty the resolver falls back to the development
// host and port (see ResolveEndpoints).
type APIConfig struct {
	// BaseURL is an optional HTTP base URL override (e.g. "https://play.example.com").
	BaseURL string `mapstructure:"base_url"`
	// WSBaseURL is an optional realtime socket base URL override (e.g. "wss://play.example.com/ws").
	WSBaseURL string `mapstructure:"ws_base_url"`
	// DevHost is the fallback host used when BaseURL is unset.
	DevHost string `mapstructure:"dev_host"`
	// DevPort is the fallback port used when BaseURL is unset.
	DevPort int `mapstructure:"dev_port"`
	// Locale selects the localized message catalog (BCP 47 tag).
	Locale string `mapstructure:"locale"`
	// AdminToken is the bearer token for the admin endpoints. Optional.
	AdminToken string `mapstructure:"admin_token"`
	// RequestTimeout bounds each HTTP request issued by the client.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// HUDConfig holds status sidebar refresh settings.
type HUDConfig struct {
	// AutoRefresh enables background polling of status cards.
	AutoRefresh bool `mapstructure:"auto_refresh"`
	// RefreshInterval is the polling period for each enabled status card.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// ClientConfig holds local client behaviour settings.
type ClientConfig struct {
	// AliasFile is a path to a YAML alias catalog. Optional.
	AliasFile string `mapstructure:"alias_file"`
	// TriggerFile is a path to a Lua trigger script. Optional.
	TriggerFile string `mapstructure:"trigger_file"`
	// Plain selects the line-console renderer instead of the full TUI.
	Plain bool `mapstructure:"plain"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	HUD     HUDConfig     `mapstructure:"hud"`
	Client  ClientConfig  `mapstructure:"client"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateAPI(c.API); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateHUD(c.HUD); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAPI(a APIConfig) error {
	var errs []string
	if a.BaseURL == "" {
		if a.DevHost == "" {
			errs = append(errs, "api.dev_host must not be empty when api.base_url is unset")
		}
		if a.DevPort < 1 || a.DevPort > 65535 {
			errs = append(errs, fmt.Sprintf("api.dev_port must be 1-65535, got %d", a.DevPort))
		}
	} else if !strings.HasPrefix(a.BaseURL, "http://") && !strings.HasPrefix(a.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("api.base_url must start with http:// or https://, got %q", a.BaseURL))
	}
	if a.WSBaseURL != "" && !strings.HasPrefix(a.WSBaseURL, "ws://") && !strings.HasPrefix(a.WSBaseURL, "wss://") {
		errs = append(errs, fmt.Sprintf("api.ws_base_url must start with ws:// or wss://, got %q", a.WSBaseURL))
	}
	if _, err := language.Parse(a.Locale); err != nil {
		errs = append(errs, fmt.Sprintf("api.locale must be a valid BCP 47 tag, got %q", a.Locale))
	}
	if a.RequestTimeout < 0 {
		errs = append(errs, "api.request_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHUD(h HUDConfig) error {
	if h.AutoRefresh && h.RefreshInterval < time.Second {
		return fmt.Errorf("hud.refresh_interval must be at least 1s when auto_refresh is enabled, got %s", h.RefreshInterval)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// CanonicalLocale returns the canonical form of the configured locale tag.
//
// Precondition: the configuration has been validated.
func (a APIConfig) CanonicalLocale() string {
	tag, err := language.Parse(a.Locale)
	if err != nil {
		return a.Locale
	}
	return tag.String()
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path skips the file and uses
// defaults plus environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with NAV_ prefix
	v.SetEnvPrefix("NAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.dev_host", "localhost")
	v.SetDefault("api.dev_port", 8080)
	v.SetDefault("api.locale", "en-US")
	v.SetDefault("api.request_timeout", "30s")

	v.SetDefault("hud.auto_refresh", true)
	v.SetDefault("hud.refresh_interval", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
