package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the runtime configuration. Defaults are applied first, then
// the TOML file at path (skipped when path is empty), then TRADEUP_*
// environment variables. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Mode, "TRADEUP_MODE")
	setStr(&cfg.LogLevel, "TRADEUP_LOG_LEVEL")
	setStr(&cfg.LogFormat, "TRADEUP_LOG_FORMAT")

	setStr(&cfg.Catalog.Provider, "TRADEUP_CATALOG_PROVIDER")
	setStr(&cfg.Catalog.APIURL, "TRADEUP_CATALOG_API_URL")
	setStr(&cfg.Catalog.APIKey, "TRADEUP_CATALOG_API_KEY")
	setBool(&cfg.Catalog.MergeDuplicates, "TRADEUP_CATALOG_MERGE_DUPLICATES")
	setDuration(&cfg.Catalog.Timeout, "TRADEUP_CATALOG_TIMEOUT")
	setInt(&cfg.Catalog.MinOffers, "TRADEUP_CATALOG_MIN_OFFERS")
	setBool(&cfg.Catalog.DedupeByName, "TRADEUP_CATALOG_DEDUPE_BY_NAME")

	// Aliases the scanner deployment already exports.
	setStr(&cfg.Catalog.APIURL, "API_URL")
	setStr(&cfg.Catalog.APIKey, "SCANNER_API_KEY")

	setStr(&cfg.Postgres.DSN, "TRADEUP_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "TRADEUP_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "TRADEUP_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "TRADEUP_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "TRADEUP_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "TRADEUP_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "TRADEUP_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "TRADEUP_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "TRADEUP_POSTGRES_POOL_MIN_CONNS")

	setBool(&cfg.Redis.Enabled, "TRADEUP_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "TRADEUP_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TRADEUP_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRADEUP_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TRADEUP_REDIS_POOL_SIZE")
	setBool(&cfg.Redis.TLSEnabled, "TRADEUP_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.CacheTTL, "TRADEUP_REDIS_CACHE_TTL")

	setInt(&cfg.GA.PopulationSize, "TRADEUP_GA_POPULATION_SIZE")
	setInt(&cfg.GA.Generations, "TRADEUP_GA_GENERATIONS")
	setInt(&cfg.GA.EliteSize, "TRADEUP_GA_ELITE_SIZE")
	setFloat64(&cfg.GA.KeepTopPercentage, "TRADEUP_GA_KEEP_TOP_PERCENTAGE")
	setInt(&cfg.GA.Workers, "TRADEUP_GA_WORKERS")
	setInt64(&cfg.GA.Seed, "TRADEUP_GA_SEED")

	setInt(&cfg.Island.NumIslands, "TRADEUP_ISLAND_NUM_ISLANDS")
	setInt(&cfg.Island.PopulationPerIsland, "TRADEUP_ISLAND_POPULATION_PER_ISLAND")
	setInt(&cfg.Island.MigrationInterval, "TRADEUP_ISLAND_MIGRATION_INTERVAL")
	setInt(&cfg.Island.MigrationSize, "TRADEUP_ISLAND_MIGRATION_SIZE")

	setStr(&cfg.Run.Rarity, "TRADEUP_RUN_RARITY")
	setBool(&cfg.Run.StatTrak, "TRADEUP_RUN_STATTRAK")
	setStr(&cfg.Run.Engine, "TRADEUP_RUN_ENGINE")

	setStr(&cfg.Notify.TelegramToken, "TRADEUP_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "TRADEUP_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "TRADEUP_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "TRADEUP_NOTIFY_EVENTS")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}
