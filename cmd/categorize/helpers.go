package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/api"
	"github.com/Veraticus/spice-categorizer/internal/config"
	"github.com/Veraticus/spice-categorizer/internal/engine"
	"github.com/Veraticus/spice-categorizer/internal/llm"
	"github.com/Veraticus/spice-categorizer/internal/merchant"
	"github.com/Veraticus/spice-categorizer/internal/storage"
	"github.com/spf13/viper"
)

const defaultDBPath = "$HOME/.local/share/categorize/categorize.db"

// apiKeyEnv names the conventional environment variable for each provider key.
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// oracleConfig reads the "oracle" section. An empty provider disables the oracle.
func oracleConfig(v *viper.Viper) (llm.Config, bool, error) {
	provider := strings.ToLower(v.GetString("oracle.provider"))
	if provider == "" || provider == "none" {
		return llm.Config{}, false, nil
	}

	cfg := llm.Config{
		Provider:    provider,
		APIKey:      v.GetString("oracle.api_key"),
		Model:       v.GetString("oracle.model"),
		BaseURL:     v.GetString("oracle.base_url"),
		MaxRetries:  v.GetInt("oracle.max_retries"),
		RetryDelay:  v.GetDuration("oracle.retry_delay"),
		CacheTTL:    v.GetDuration("oracle.cache_ttl"),
		Timeout:     v.GetDuration("oracle.timeout"),
		RateLimit:   v.GetInt("oracle.rate_limit"),
		Temperature: v.GetFloat64("oracle.temperature"),
		MaxTokens:   v.GetInt("oracle.max_tokens"),
	}

	if cfg.APIKey == "" {
		if env, ok := apiKeyEnv[provider]; ok {
			cfg.APIKey = os.Getenv(env)
			if cfg.APIKey == "" {
				return llm.Config{}, false, fmt.Errorf("%s API key not found in config or %s environment variable", provider, env)
			}
		}
	}

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1000 // requests per minute
	}

	return cfg, true, nil
}

// runtime bundles an engine with everything that must be closed after it.
type runtime struct {
	engine  *engine.Engine
	store   *storage.SQLiteStorage
	checks  []api.Pinger
	closers []func() error
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			slog.Warn("Failed to close resource", "error", err)
		}
	}
}

// buildRuntime wires storage, the merchant mapping backend, and the oracle into an engine.
func buildRuntime(ctx context.Context) (*runtime, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		store:   store,
		checks:  []api.Pinger{store},
		closers: []func() error{store.Close},
	}

	policy, err := config.LoadPolicy(viper.GetViper())
	if err != nil {
		rt.Close()
		return nil, err
	}

	deps := engine.Deps{
		Rules:       store,
		Mappings:    store,
		Corrections: store,
	}

	if addr := viper.GetString("merchants.redis_addr"); addr != "" {
		redisStore, redisErr := merchant.NewRedisStore(ctx, merchant.RedisOptions{
			Addr:     addr,
			Password: viper.GetString("merchants.redis_password"),
			DB:       viper.GetInt("merchants.redis_db"),
			Prefix:   viper.GetString("merchants.redis_prefix"),
		})
		if redisErr != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect to merchant store: %w", redisErr)
		}
		rt.checks = append(rt.checks, redisStore)
		rt.closers = append(rt.closers, redisStore.Close)
		deps.Mappings = redisStore
		slog.Debug("Using Redis merchant store", "addr", addr)
	}

	oracleCfg, enabled, err := oracleConfig(viper.GetViper())
	if err != nil {
		rt.Close()
		return nil, err
	}
	if enabled {
		oracle, oracleErr := llm.NewOracle(oracleCfg, slog.Default())
		if oracleErr != nil {
			rt.Close()
			return nil, oracleErr
		}
		categories, catErr := store.GetCategories(ctx)
		if catErr != nil {
			_ = oracle.Close()
			rt.Close()
			return nil, fmt.Errorf("failed to load categories: %w", catErr)
		}
		oracle.SetCategories(categories)
		rt.closers = append(rt.closers, oracle.Close)
		deps.Oracle = oracle
		slog.Debug("Suggestion oracle enabled", "provider", oracleCfg.Provider)
	}

	eng, err := engine.New(ctx, deps, policy)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	rt.engine = eng

	return rt, nil
}
