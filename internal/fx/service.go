package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "fx:rate:"

// Service resolves exchange rates against the ZMW base. Lookups hit a Redis
// cache first and concurrent misses for the same currency are collapsed into
// a single storage read.
type Service struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	flight singleflight.Group
}

func NewService(repo Repository, cache *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// Lookup returns the rate for a currency. The base currency resolves to an
// implicit rate of 1 without touching cache or storage.
func (s *Service) Lookup(ctx context.Context, currency string) (Rate, error) {
	code := NormalizeCurrency(currency)
	if code == "" {
		return Rate{}, fmt.Errorf("%w: empty code", ErrUnknownCurrency)
	}
	if code == BaseCurrency {
		return Rate{Currency: BaseCurrency, Rate: 1, AsOf: time.Now()}, nil
	}

	if cached, ok := s.fromCache(ctx, code); ok {
		return cached, nil
	}

	value, err, _ := s.flight.Do(code, func() (any, error) {
		rate, err := s.repo.Get(ctx, code)
		if err != nil {
			return Rate{}, err
		}
		if err := ValidateRate(rate.Rate); err != nil {
			return Rate{}, fmt.Errorf("%w: stored rate for %s", err, code)
		}
		s.toCache(ctx, rate)
		return rate, nil
	})
	if err != nil {
		return Rate{}, err
	}
	return value.(Rate), nil
}

// List returns all stored rates.
func (s *Service) List(ctx context.Context) ([]Rate, error) {
	return s.repo.List(ctx)
}

// Upsert stores a rate and refreshes the cache entry.
func (s *Service) Upsert(ctx context.Context, rate Rate) (Rate, error) {
	if IsBase(rate.Currency) {
		return Rate{}, fmt.Errorf("%w: cannot set a rate for the base currency", ErrBadRate)
	}
	if err := ValidateRate(rate.Rate); err != nil {
		return Rate{}, err
	}
	saved, err := s.repo.Upsert(ctx, rate)
	if err != nil {
		return Rate{}, err
	}
	s.toCache(ctx, saved)
	return saved, nil
}

// WarmCache re-primes the cache for every stored rate. Used by the
// scheduled refresh job so first lookups after expiry stay off Postgres.
func (s *Service) WarmCache(ctx context.Context) (int, error) {
	rates, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	warmed := 0
	for _, rate := range rates {
		if ValidateRate(rate.Rate) != nil {
			continue
		}
		s.toCache(ctx, rate)
		warmed++
	}
	return warmed, nil
}

func (s *Service) fromCache(ctx context.Context, code string) (Rate, bool) {
	if s.cache == nil {
		return Rate{}, false
	}
	raw, err := s.cache.Get(ctx, cacheKeyPrefix+code).Bytes()
	if err != nil {
		return Rate{}, false
	}
	var rate Rate
	if err := json.Unmarshal(raw, &rate); err != nil {
		return Rate{}, false
	}
	if ValidateRate(rate.Rate) != nil {
		return Rate{}, false
	}
	return rate, true
}

func (s *Service) toCache(ctx context.Context, rate Rate) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(rate)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, cacheKeyPrefix+rate.Currency, raw, s.ttl).Err()
}
