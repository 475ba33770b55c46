package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/cs2trade/tradeupbot/internal/cache/redis"
	"github.com/cs2trade/tradeupbot/internal/catalog"
	"github.com/cs2trade/tradeupbot/internal/config"
	"github.com/cs2trade/tradeupbot/internal/notify"
	"github.com/cs2trade/tradeupbot/internal/platform/scanner"
	"github.com/cs2trade/tradeupbot/internal/store/postgres"
)

// Dependencies bundles everything the run modes need to operate. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Provider serves catalog items and sources, optionally through the
	// Redis read-through cache.
	Provider catalog.Provider

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Catalog provider ---
	var provider catalog.Provider
	switch cfg.Catalog.Provider {
	case "api":
		provider = scanner.NewClient(scanner.Config{
			BaseURL:         cfg.Catalog.APIURL,
			APIKey:          cfg.Catalog.APIKey,
			MergeDuplicates: cfg.Catalog.MergeDuplicates,
			Timeout:         cfg.Catalog.Timeout.Duration,
		})
	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)
		provider = postgres.NewCatalogStore(pgClient.Pool())
	default:
		cleanup()
		return nil, nil, fmt.Errorf("wire: unknown catalog provider %q", cfg.Catalog.Provider)
	}

	// --- Redis snapshot cache (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		cache := redis.NewSnapshotCache(redisClient, cfg.Redis.CacheTTL.Duration)
		provider = redis.NewCachingProvider(provider, cache, cfg.Catalog.Provider, logger)
	}
	deps.Provider = provider

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	events := lo.Map(cfg.Notify.Events, func(s string, _ int) notify.Event { return notify.Event(s) })
	deps.Notifier = notify.NewNotifier(senders, events, logger)

	return deps, cleanup, nil
}
