package merchant

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	Prefix   string
	DB       int
}

// RedisStore persists merchant mappings in Redis so several engines can share
// what they learn. Mappings live in the hash "<prefix>:merchants" as JSON and
// use counts in "<prefix>:merchant_uses".
type RedisStore struct {
	client   redis.UniversalClient
	mapKey   string
	usesKey  string
	ownsConn bool
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	store := NewRedisStoreFromClient(client, opts.Prefix)
	store.ownsConn = true
	return store, nil
}

// NewRedisStoreFromClient wraps an existing client. The caller keeps ownership
// of the connection.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "categorize"
	}
	return &RedisStore{
		client:  client,
		mapKey:  prefix + ":merchants",
		usesKey: prefix + ":merchant_uses",
	}
}

type redisMapping struct {
	LastUpdated time.Time           `json:"last_updated"`
	CategoryID  string              `json:"category_id"`
	Source      model.MappingSource `json:"source"`
}

// GetMerchantMappings returns every stored mapping.
func (s *RedisStore) GetMerchantMappings(ctx context.Context) ([]model.MerchantMapping, error) {
	raw, err := s.client.HGetAll(ctx, s.mapKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant mappings: %w", err)
	}
	uses, err := s.client.HGetAll(ctx, s.usesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant use counts: %w", err)
	}

	mappings := make([]model.MerchantMapping, 0, len(raw))
	for key, value := range raw {
		var rm redisMapping
		if err := json.Unmarshal([]byte(value), &rm); err != nil {
			return nil, fmt.Errorf("%w: merchant %q: %w", common.ErrDatabaseCorrupted, key, err)
		}
		count, _ := strconv.Atoi(uses[key])
		mappings = append(mappings, model.MerchantMapping{
			MerchantKey: key,
			CategoryID:  rm.CategoryID,
			Source:      rm.Source,
			UseCount:    count,
			LastUpdated: rm.LastUpdated,
		})
	}
	return mappings, nil
}

// SaveMerchantMapping upserts a mapping and bumps its use count.
func (s *RedisStore) SaveMerchantMapping(ctx context.Context, mapping *model.MerchantMapping) error {
	if mapping == nil {
		return fmt.Errorf("mapping must not be nil")
	}
	key := model.NormalizeMerchant(mapping.MerchantKey)
	if key == "" || mapping.CategoryID == "" {
		return fmt.Errorf("merchant key and category are required")
	}

	updated := mapping.LastUpdated
	if updated.IsZero() {
		updated = time.Now()
	}
	payload, err := json.Marshal(redisMapping{
		CategoryID:  mapping.CategoryID,
		Source:      mapping.Source,
		LastUpdated: updated,
	})
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.mapKey, key, payload)
		pipe.HIncrBy(ctx, s.usesKey, key, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save merchant mapping: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection if the store opened it.
func (s *RedisStore) Close() error {
	if !s.ownsConn {
		return nil
	}
	return s.client.Close()
}
