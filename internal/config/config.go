// Package config defines the top-level configuration for the trade-up
// optimizer and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by TRADEUP_* environment
// variables.
type Config struct {
	Catalog   CatalogConfig  `toml:"catalog"`
	Postgres  PostgresConfig `toml:"postgres"`
	Redis     RedisConfig    `toml:"redis"`
	GA        GAConfig       `toml:"ga"`
	Island    IslandConfig   `toml:"island"`
	Run       RunConfig      `toml:"run"`
	Notify    NotifyConfig   `toml:"notify"`
	Mode      string         `toml:"mode"`
	LogLevel  string         `toml:"log_level"`
	LogFormat string         `toml:"log_format"`
}

// CatalogConfig selects and tunes the catalog provider.
type CatalogConfig struct {
	// Provider selects where the catalog comes from: "api" (scanner REST)
	// or "postgres" (read-only mirror of the scanner's database).
	Provider        string   `toml:"provider"`
	APIURL          string   `toml:"api_url"`
	APIKey          string   `toml:"api_key"`
	MergeDuplicates bool     `toml:"merge_duplicates"`
	Timeout         duration `toml:"timeout"`
	MinOffers       int      `toml:"min_offers"`
	DedupeByName    bool     `toml:"dedupe_by_name"`
}

// PostgresConfig holds connection parameters for the scanner database
// mirror. Only consulted when catalog.provider is "postgres".
type PostgresConfig struct {
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// RedisConfig holds connection parameters for the optional snapshot cache.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	TLSEnabled bool     `toml:"tls_enabled"`
	CacheTTL   duration `toml:"cache_ttl"`
}

// GAConfig holds the generational search parameters shared by both engines.
type GAConfig struct {
	PopulationSize    int     `toml:"population_size"`
	Generations       int     `toml:"generations"`
	EliteSize         int     `toml:"elite_size"`
	KeepTopPercentage float64 `toml:"keep_top_percentage"`
	Workers           int     `toml:"workers"`
	Seed              int64   `toml:"seed"`
}

// IslandConfig holds the island-model topology. Only consulted when
// run.engine is "island".
type IslandConfig struct {
	// NumIslands is the number of isolated sub-populations. Zero means one
	// per CPU.
	NumIslands          int `toml:"num_islands"`
	PopulationPerIsland int `toml:"population_per_island"`
	MigrationInterval   int `toml:"migration_interval"`
	MigrationSize       int `toml:"migration_size"`
}

// RunConfig selects what a single run searches.
type RunConfig struct {
	// Rarity is the input tier display name, e.g. "Mil-Spec Grade".
	Rarity   string `toml:"rarity"`
	StatTrak bool   `toml:"stattrak"`
	// Engine selects the search engine: "standard" or "island".
	Engine string `toml:"engine"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration wraps time.Duration so the TOML decoder accepts strings like
// "5m" or "30s".
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the same defaults the reference
// deployment runs with.
func Defaults() Config {
	return Config{
		Catalog: CatalogConfig{
			Provider:        "api",
			APIURL:          "http://127.0.0.1:8000",
			MergeDuplicates: true,
			Timeout:         duration{30 * time.Second},
			MinOffers:       50,
			DedupeByName:    true,
		},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "scanner",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 20,
			CacheTTL: duration{15 * time.Minute},
		},
		GA: GAConfig{
			PopulationSize:    10_000,
			Generations:       100,
			EliteSize:         100,
			KeepTopPercentage: 0.5,
			Workers:           0,
			Seed:              0,
		},
		Island: IslandConfig{
			NumIslands:          0,
			PopulationPerIsland: 2_000,
			MigrationInterval:   10,
			MigrationSize:       3,
		},
		Run: RunConfig{
			Rarity:   "Classified",
			StatTrak: false,
			Engine:   "standard",
		},
		Notify: NotifyConfig{
			Events: []string{"run_completed", "run_failed", "sweep_completed"},
		},
		Mode:      "single",
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"single": true,
	"sweep":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats enumerates the accepted values for Config.LogFormat.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validEngines enumerates the accepted values for RunConfig.Engine.
var validEngines = map[string]bool{
	"standard": true,
	"island":   true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode / logging
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: single, sweep)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("unknown log_format %q (valid: json, console)", c.LogFormat))
	}

	// Catalog provider
	switch c.Catalog.Provider {
	case "api":
		if c.Catalog.APIURL == "" {
			errs = append(errs, "catalog: api_url must not be empty for provider \"api\"")
		}
	case "postgres":
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	default:
		errs = append(errs, fmt.Sprintf("catalog: unknown provider %q (valid: api, postgres)", c.Catalog.Provider))
	}
	if c.Catalog.MinOffers < 0 {
		errs = append(errs, "catalog: min_offers must be >= 0")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.CacheTTL.Duration < 0 {
			errs = append(errs, "redis: cache_ttl must not be negative")
		}
	}

	// Run target
	rarity, rarityErr := domain.ParseRarity(c.Run.Rarity)
	if rarityErr != nil {
		errs = append(errs, fmt.Sprintf("run: %v", rarityErr))
	} else if rarity == domain.RarityGold {
		errs = append(errs, "run: rarity Gold cannot be traded up")
	}
	if !validEngines[c.Run.Engine] {
		errs = append(errs, fmt.Sprintf("run: unknown engine %q (valid: standard, island)", c.Run.Engine))
	}

	// GA parameters
	if c.GA.PopulationSize < 2 {
		errs = append(errs, "ga: population_size must be >= 2")
	}
	if c.GA.Generations < 1 {
		errs = append(errs, "ga: generations must be >= 1")
	}
	if c.GA.EliteSize < 1 {
		errs = append(errs, "ga: elite_size must be >= 1")
	}
	if c.GA.EliteSize > c.GA.PopulationSize {
		errs = append(errs, "ga: elite_size must not exceed population_size")
	}
	if c.GA.KeepTopPercentage < 0 || c.GA.KeepTopPercentage > 1 {
		errs = append(errs, fmt.Sprintf("ga: keep_top_percentage must be in [0,1], got %g", c.GA.KeepTopPercentage))
	}
	if c.GA.Workers < 0 {
		errs = append(errs, "ga: workers must be >= 0")
	}

	// Island topology
	if c.Run.Engine == "island" {
		if c.Island.NumIslands < 0 {
			errs = append(errs, "island: num_islands must be >= 0")
		}
		if c.Island.PopulationPerIsland < 2 {
			errs = append(errs, "island: population_per_island must be >= 2")
		}
		if c.Island.MigrationInterval < 1 {
			errs = append(errs, "island: migration_interval must be >= 1")
		}
		if c.GA.Generations < c.Island.MigrationInterval {
			errs = append(errs, "island: generations must be >= migration_interval (at least one epoch)")
		}
		if c.Island.MigrationSize < 1 {
			errs = append(errs, "island: migration_size must be >= 1")
		}
		if limit := min(5, c.GA.EliteSize); c.Island.MigrationSize > limit {
			errs = append(errs, fmt.Sprintf("island: migration_size must not exceed %d (min of 5 and elite_size)", limit))
		}
		if c.Island.MigrationSize >= c.Island.PopulationPerIsland {
			errs = append(errs, "island: migration_size must be smaller than population_per_island")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
