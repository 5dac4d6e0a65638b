package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
	"github.com/angelmondragon/tillbook-backend/pkg/metrics"
	"github.com/angelmondragon/tillbook-backend/pkg/redis"
)

// cacheClient is the subset of the redis client the snapshot cache needs.
type cacheClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	PricingRulesKey(priceBookID, productID int64) string
	PricingTiersKey(productID int64, categoryID *int64) string
}

const (
	cacheKindRules = "rules"
	cacheKindTiers = "tiers"
)

// CachedStore reads rule and tier rows through Redis. Products, existence
// checks and contracts always go to the underlying store. Cache failures are
// logged and fall through.
type CachedStore struct {
	Store
	cache   cacheClient
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.PricingMetrics
}

func NewCachedStore(store Store, cache cacheClient, ttl time.Duration, logg *logger.Logger, m *metrics.PricingMetrics) *CachedStore {
	return &CachedStore{Store: store, cache: cache, ttl: ttl, logg: logg, metrics: m}
}

func (c *CachedStore) LoadRules(ctx context.Context, priceBookID int64, product models.Product) ([]models.PriceRule, error) {
	key := c.cache.PricingRulesKey(priceBookID, product.ID)
	var rules []models.PriceRule
	if c.lookup(ctx, cacheKindRules, key, &rules) {
		return rules, nil
	}
	rules, err := c.Store.LoadRules(ctx, priceBookID, product)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, rules)
	return rules, nil
}

func (c *CachedStore) LoadTiers(ctx context.Context, productID int64, categoryID *int64) ([]models.VolumeTier, error) {
	key := c.cache.PricingTiersKey(productID, categoryID)
	var tiers []models.VolumeTier
	if c.lookup(ctx, cacheKindTiers, key, &tiers) {
		return tiers, nil
	}
	tiers, err := c.Store.LoadTiers(ctx, productID, categoryID)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, tiers)
	return tiers, nil
}

func (c *CachedStore) lookup(ctx context.Context, kind, key string, dest any) bool {
	raw, err := c.cache.Get(ctx, key)
	switch {
	case errors.Is(err, redis.ErrNil):
		c.metrics.IncCacheLookup(kind, metrics.CacheMiss)
		return false
	case err != nil:
		c.metrics.IncCacheLookup(kind, metrics.CacheError)
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "pricing cache read failed: "+err.Error())
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.metrics.IncCacheLookup(kind, metrics.CacheError)
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "pricing cache entry unreadable: "+err.Error())
		return false
	}
	c.metrics.IncCacheLookup(kind, metrics.CacheHit)
	return true
}

func (c *CachedStore) fill(ctx context.Context, key string, rows any) {
	payload, err := json.Marshal(rows)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "pricing cache encode failed: "+err.Error())
		return
	}
	if err := c.cache.Set(ctx, key, string(payload), c.ttl); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "pricing cache write failed: "+err.Error())
	}
}
