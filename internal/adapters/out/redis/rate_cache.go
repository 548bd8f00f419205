// Package redis keeps the active rate in Redis so that pricing a shipment
// does not hit the rates table on every request.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/model/rate"
	"sameday/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	defaultPrefix = "sameday"
	activeRateKey = "rate:active"
)

// setIfNotOlder writes ARGV[1] unless the cached entry carries a newer
// version, so a refill racing an activation on another node cannot bring a
// replaced rate back. Unreadable entries are overwritten.
var setIfNotOlder = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local ok, decoded = pcall(cjson.decode, current)
	if ok and type(decoded) == 'table' and tonumber(decoded.version) and tonumber(decoded.version) > tonumber(ARGV[2]) then
		return 0
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// RateCache implements ports.RateCache.
type RateCache struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRateCache stores the active rate under "<prefix>:rate:active". A ttl of
// zero keeps the entry until it is replaced or invalidated.
func NewRateCache(client redis.Cmdable, prefix string, ttl time.Duration) *RateCache {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RateCache{
		client: client,
		key:    fmt.Sprintf("%s:%s", prefix, activeRateKey),
		ttl:    ttl,
	}
}

type cachedRate struct {
	ID                 uuid.UUID       `json:"id"`
	BaseRate           decimal.Decimal `json:"baseRate"`
	CostPerKm          decimal.Decimal `json:"costPerKm"`
	CostPerKg          decimal.Decimal `json:"costPerKg"`
	CostPerM3          decimal.Decimal `json:"costPerM3"`
	InsuranceSurcharge decimal.Decimal `json:"insuranceSurcharge"`
	FragileSurcharge   decimal.Decimal `json:"fragileSurcharge"`
	EffectiveFrom      time.Time       `json:"effectiveFrom"`
	Version            int64           `json:"version"`
}

// GetActive returns errs.ErrObjectNotFound on a miss.
func (c *RateCache) GetActive(ctx context.Context) (*rate.Rate, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.NewObjectNotFoundError("rate", c.key)
	}
	if err != nil {
		return nil, err
	}

	var cached cachedRate
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("cached rate", err)
	}

	id, err := kernel.UUIDFromGoogle(cached.ID)
	if err != nil {
		return nil, err
	}
	return rate.RestoreRate(id, rate.Tariff{
		BaseRate:           cached.BaseRate,
		CostPerKm:          cached.CostPerKm,
		CostPerKg:          cached.CostPerKg,
		CostPerM3:          cached.CostPerM3,
		InsuranceSurcharge: cached.InsuranceSurcharge,
		FragileSurcharge:   cached.FragileSurcharge,
	}, cached.EffectiveFrom, nil)
}

// SetActive refuses retired rates; only the active one belongs in the cache.
// A rate that became effective before the cached one is silently dropped.
func (c *RateCache) SetActive(ctx context.Context, r *rate.Rate) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if !r.IsActive() {
		return rate.ErrRateAlreadyRetired
	}

	t := r.Tariff()
	payload, err := json.Marshal(cachedRate{
		ID:                 r.ID().Google(),
		BaseRate:           t.BaseRate,
		CostPerKm:          t.CostPerKm,
		CostPerKg:          t.CostPerKg,
		CostPerM3:          t.CostPerM3,
		InsuranceSurcharge: t.InsuranceSurcharge,
		FragileSurcharge:   t.FragileSurcharge,
		EffectiveFrom:      r.EffectiveFrom(),
		Version:            r.EffectiveFrom().UnixMilli(),
	})
	if err != nil {
		return err
	}
	return setIfNotOlder.Run(ctx, c.client, []string{c.key},
		payload, r.EffectiveFrom().UnixMilli(), c.ttl.Milliseconds()).Err()
}

func (c *RateCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
