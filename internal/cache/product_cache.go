package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/product-service/internal/domain"
)

// DefaultProductTTL applies when no positive TTL is configured.
const DefaultProductTTL = 5 * time.Minute

const (
	productKeyPrefix    = "product:"
	generationKeyPrefix = "product-gen:"

	// generation keys must outlive any fill that read them
	generationTTL = time.Hour
)

var errStaleFill = errors.New("product changed since read")

// ProductCache is a read-through Redis cache of single products, keyed by id.
//
// Every invalidation bumps a per-product generation counter. Get reports the
// generation it saw and Fill only writes while that generation is unchanged,
// so a read that raced with an update or delete cannot repopulate the entry
// with the old row.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache wraps client. A non-positive ttl uses DefaultProductTTL.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultProductTTL
	}
	return &ProductCache{client: client, ttl: ttl}
}

// Get returns the cached product, or nil on a miss, together with the
// product's current generation.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, int64, error) {
	values, err := c.client.MGet(ctx, productKey(id), generationKey(id)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis mget: %w", err)
	}

	generation, err := parseGeneration(values[1])
	if err != nil {
		return nil, 0, err
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, generation, nil
	}
	var product domain.Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		// unreadable entries are dropped and treated as a miss
		_ = c.client.Del(ctx, productKey(id)).Err()
		return nil, generation, nil
	}
	return &product, generation, nil
}

// Fill stores product if its generation still equals generation. A lost race
// is not an error; the entry is simply left empty.
func (c *ProductCache) Fill(ctx context.Context, product *domain.Product, generation int64) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	genKey := generationKey(product.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		seen, err := parseGeneration(nilIfMissing(current, err))
		if err != nil {
			return err
		}
		if seen != generation {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, productKey(product.ID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil, errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("redis fill: %w", err)
	}
}

// Invalidate removes the entry for id and advances its generation.
func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Expire(ctx, generationKey(id), generationTTL)
		pipe.Del(ctx, productKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

func parseGeneration(value any) (int64, error) {
	if value == nil {
		return 0, nil
	}
	s, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected generation value %T", value)
	}
	generation, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse generation: %w", err)
	}
	return generation, nil
}

func nilIfMissing(value string, err error) any {
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return value
}

func productKey(id string) string {
	return productKeyPrefix + id
}

func generationKey(id string) string {
	return generationKeyPrefix + id
}
