package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
)

const typeCachePrefix = "convenio_type:slug:"

// TypeCache keeps slug lookups in Redis. Types are reference data, so a
// long TTL is enough and nothing invalidates entries explicitly.
type TypeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTypeCache(client *redis.Client, ttl time.Duration) *TypeCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TypeCache{client: client, ttl: ttl}
}

// Get returns the cached ref. The bool is false on a miss.
func (c *TypeCache) Get(ctx context.Context, slug string) (domain.TypeRef, bool, error) {
	raw, err := c.client.Get(ctx, typeCachePrefix+slug).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.TypeRef{}, false, nil
		}
		return domain.TypeRef{}, false, err
	}

	var ref domain.TypeRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return domain.TypeRef{}, false, err
	}
	return ref, true, nil
}

func (c *TypeCache) Set(ctx context.Context, slug string, ref domain.TypeRef) error {
	raw, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, typeCachePrefix+slug, raw, c.ttl).Err()
}
