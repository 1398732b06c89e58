package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

const priceCacheKeyPrefix = "price:"

// PriceCache is a Redis read-through cache in front of the prices table
type PriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPriceCache(client *redis.Client, ttl time.Duration) *PriceCache {
	return &PriceCache{client: client, ttl: ttl}
}

// Get returns the cached price or nil on a miss
func (c *PriceCache) Get(ctx context.Context, interviewType model.InterviewType) (*model.Price, error) {
	raw, err := c.client.Get(ctx, priceCacheKeyPrefix+string(interviewType)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached price: %w", err)
	}

	var p model.Price
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode cached price: %w", err)
	}

	return &p, nil
}

// Set stores the price for ttl
func (c *PriceCache) Set(ctx context.Context, p *model.Price) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode price: %w", err)
	}

	if err := c.client.Set(ctx, priceCacheKeyPrefix+string(p.InterviewType), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache price: %w", err)
	}

	return nil
}

// Invalidate drops the cached price of the type
func (c *PriceCache) Invalidate(ctx context.Context, interviewType model.InterviewType) error {
	if err := c.client.Del(ctx, priceCacheKeyPrefix+string(interviewType)).Err(); err != nil {
		return fmt.Errorf("invalidate cached price: %w", err)
	}
	return nil
}
