// Package config assembles the server configuration: built-in defaults,
// optionally overlaid by an HCL file, then by environment variables.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the resolved server configuration.
type Config struct {
	Port        int
	DatabaseURL string
	// Locale is the label language used when a client sends none.
	Locale             string
	SessionIdleTimeout time.Duration
	SessionMaxAge      time.Duration
	CleanupInterval    time.Duration
	StaleOptionGuard   bool
	SeedResources      bool
	// AtlasBin enables declarative migration with the Atlas CLI. AtlasURL
	// must then point at the same database as DatabaseURL.
	AtlasBin    string
	AtlasURL    string
	AtlasDevURL string
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Port:               8080,
		DatabaseURL:        "file:taskform.db?_pragma=foreign_keys(1)",
		Locale:             "en",
		SessionIdleTimeout: 30 * time.Minute,
		SessionMaxAge:      24 * time.Hour,
		CleanupInterval:    time.Minute,
		SeedResources:      true,
		AtlasURL:           "sqlite://taskform.db",
		AtlasDevURL:        "sqlite://dev?mode=memory",
	}
}

// fileConfig mirrors the HCL file. Pointers tell absent attributes from
// zero values.
type fileConfig struct {
	Port               *int         `hcl:"port,optional"`
	DatabaseURL        *string      `hcl:"database_url,optional"`
	Locale             *string      `hcl:"locale,optional"`
	SessionIdleTimeout *string      `hcl:"session_idle_timeout,optional"`
	SessionMaxAge      *string      `hcl:"session_max_age,optional"`
	CleanupInterval    *string      `hcl:"cleanup_interval,optional"`
	StaleOptionGuard   *bool        `hcl:"stale_option_guard,optional"`
	SeedResources      *bool        `hcl:"seed_resources,optional"`
	Atlas              *atlasConfig `hcl:"atlas,block"`
}

type atlasConfig struct {
	Bin    string  `hcl:"bin"`
	URL    *string `hcl:"url,optional"`
	DevURL *string `hcl:"dev_url,optional"`
}

// Load resolves the configuration. getenv is usually os.Getenv; CONFIG_FILE
// names the optional HCL file.
func Load(getenv func(string) string) (Config, error) {
	cfg := Defaults()
	if path := getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if err := hclsimple.DecodeFile(path, nil, &fc); err != nil {
		return fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.DatabaseURL != nil {
		c.DatabaseURL = *fc.DatabaseURL
	}
	if fc.Locale != nil {
		c.Locale = *fc.Locale
	}
	for _, d := range []struct {
		raw *string
		dst *time.Duration
		key string
	}{
		{fc.SessionIdleTimeout, &c.SessionIdleTimeout, "session_idle_timeout"},
		{fc.SessionMaxAge, &c.SessionMaxAge, "session_max_age"},
		{fc.CleanupInterval, &c.CleanupInterval, "cleanup_interval"},
	} {
		if d.raw == nil {
			continue
		}
		v, err := time.ParseDuration(*d.raw)
		if err != nil {
			return fmt.Errorf("config: %s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}
	if fc.StaleOptionGuard != nil {
		c.StaleOptionGuard = *fc.StaleOptionGuard
	}
	if fc.SeedResources != nil {
		c.SeedResources = *fc.SeedResources
	}
	if fc.Atlas != nil {
		c.AtlasBin = fc.Atlas.Bin
		if fc.Atlas.URL != nil {
			c.AtlasURL = *fc.Atlas.URL
		}
		if fc.Atlas.DevURL != nil {
			c.AtlasDevURL = *fc.Atlas.DevURL
		}
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PORT: %w", err)
		}
		c.Port = p
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("LOCALE"); v != "" {
		c.Locale = v
	}
	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"SESSION_IDLE_TIMEOUT", &c.SessionIdleTimeout},
		{"SESSION_MAX_AGE", &c.SessionMaxAge},
	} {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	for _, b := range []struct {
		key string
		dst *bool
	}{
		{"STALE_OPTION_GUARD", &c.StaleOptionGuard},
		{"SEED_RESOURCES", &c.SeedResources},
	} {
		v := getenv(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", b.key, err)
		}
		*b.dst = parsed
	}
	if v := getenv("ATLAS_BIN"); v != "" {
		c.AtlasBin = v
	}
	if v := getenv("ATLAS_URL"); v != "" {
		c.AtlasURL = v
	}
	if v := getenv("ATLAS_DEV_URL"); v != "" {
		c.AtlasDevURL = v
	}
	return nil
}
