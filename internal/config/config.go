// Package config loads the cartera configuration from a YAML file and
// applies environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Storage backend identifiers.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

// Market data provider identifiers.
const (
	ProviderYahoo  = "yahoo"
	ProviderAlpaca = "alpaca"
	ProviderStatic = "static"
)

// Config is the top-level configuration for the cartera service.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Supabase Supabase `yaml:"supabase"`
	Server   Server   `yaml:"server"`
	Market   Market   `yaml:"market"`
	Logging  Logging  `yaml:"logging"`
}

// Storage selects the persistence backend and its file paths.
type Storage struct {
	Backend    string `yaml:"backend"`
	JSONPath   string `yaml:"json_path"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Supabase holds the endpoint and credential for the hosted-table backend.
type Supabase struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Market configures the market data gateway.
type Market struct {
	Provider        string `yaml:"provider"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	Alpaca          Alpaca `yaml:"alpaca"`
}

// Alpaca holds credentials and endpoint for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Backend:    BackendJSON,
			JSONPath:   "data/cartera.json",
			SQLitePath: "data/cartera.db",
		},
		Server: Server{Host: "0.0.0.0", Port: 8080},
		Market: Market{
			Provider:        ProviderYahoo,
			CacheTTLSeconds: 60,
			RateLimitPerMin: 60,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads the YAML configuration file at the given path, parses it into
// a Config, and applies environment variable overrides. A missing file is
// not an error: the defaults plus environment are used, which is how the
// service runs on hosted platforms where everything comes from the
// environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults + env only
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CARTERA_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("CARTERA_JSON_PATH"); v != "" {
		cfg.Storage.JSONPath = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		cfg.Supabase.Key = v
	}

	if v := os.Getenv("CARTERA_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}

	if v := os.Getenv("MARKET_PROVIDER"); v != "" {
		cfg.Market.Provider = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Market.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Market.Alpaca.APISecret = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Canonical Alpaca env vars recognised by the SDK (highest priority).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Market.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Market.Alpaca.APISecret = v
	}
}

// Validate checks the configuration at startup. Errors here are fatal:
// they mean the process cannot reach a working store or gateway at all.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON:
		if c.Storage.JSONPath == "" {
			return errors.New("storage.json_path is required for the json backend")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite backend")
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY must be configured for the supabase backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Market.Provider {
	case ProviderYahoo, ProviderStatic:
	case ProviderAlpaca:
		if c.Market.Alpaca.APIKey == "" || c.Market.Alpaca.APISecret == "" {
			return errors.New("alpaca api_key and api_secret must be configured for the alpaca provider")
		}
	default:
		return fmt.Errorf("unknown market provider %q", c.Market.Provider)
	}

	return nil
}
