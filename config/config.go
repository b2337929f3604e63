// Package config loads service configuration from an optional YAML
// file overlaid with SHOP_-prefixed environment variables, so a bare
// environment-only deployment needs no file at all.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SHOP_"

// Config is the full service configuration.
type Config struct {
	HTTP struct {
		Port         int           `koanf:"port"`
		ReadTimeout  time.Duration `koanf:"readtimeout"`
		WriteTimeout time.Duration `koanf:"writetimeout"`
		IdleTimeout  time.Duration `koanf:"idletimeout"`
	} `koanf:"http"`

	Store struct {
		// Backend selects the tabular store: memory, sheets, postgres.
		Backend         string        `koanf:"backend"`
		SpreadsheetID   string        `koanf:"spreadsheetid"`
		CredentialsFile string        `koanf:"credentialsfile"`
		DatabaseURL     string        `koanf:"databaseurl"`
		Timeout         time.Duration `koanf:"timeout"`
		RetryAttempts   int           `koanf:"retryattempts"`
		RetryBackoff    time.Duration `koanf:"retrybackoff"`
	} `koanf:"store"`

	OpenAI struct {
		APIKey          string        `koanf:"apikey"`
		Model           string        `koanf:"model"`
		ClassifyTimeout time.Duration `koanf:"classifytimeout"`
	} `koanf:"openai"`

	Speech struct {
		Enabled bool `koanf:"enabled"`
	} `koanf:"speech"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

// Load reads config.yaml when path names an existing file, then
// overlays environment variables (SHOP_STORE_BACKEND, SHOP_HTTP_PORT,
// ...). Missing values fall back to usable defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// SHOP_STORE_BACKEND -> store.backend
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return strings.ReplaceAll(key, "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load env variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		// Voice turns transcode and classify before replying.
		c.HTTP.WriteTimeout = 120 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Store.Timeout == 0 {
		c.Store.Timeout = 30 * time.Second
	}
	if c.Store.RetryAttempts == 0 {
		c.Store.RetryAttempts = 3
	}
	if c.Store.RetryBackoff == 0 {
		c.Store.RetryBackoff = 500 * time.Millisecond
	}
	if c.OpenAI.ClassifyTimeout == 0 {
		c.OpenAI.ClassifyTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
