package fx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	rates map[string]Rate
	gets  int
}

func (s *stubRepo) Get(ctx context.Context, currency string) (Rate, error) {
	s.gets++
	rate, ok := s.rates[NormalizeCurrency(currency)]
	if !ok {
		return Rate{}, ErrUnknownCurrency
	}
	return rate, nil
}

func (s *stubRepo) List(ctx context.Context) ([]Rate, error) {
	out := make([]Rate, 0, len(s.rates))
	for _, rate := range s.rates {
		out = append(out, rate)
	}
	return out, nil
}

func (s *stubRepo) Upsert(ctx context.Context, rate Rate) (Rate, error) {
	rate.Currency = NormalizeCurrency(rate.Currency)
	rate.UpdatedAt = time.Now()
	s.rates[rate.Currency] = rate
	return rate, nil
}

func newTestService(t *testing.T, repo *stubRepo) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, client, time.Minute)
}

func TestLookupBaseNeverHitsStorage(t *testing.T) {
	repo := &stubRepo{rates: map[string]Rate{}}
	svc := newTestService(t, repo)

	rate, err := svc.Lookup(context.Background(), "zmw")
	require.NoError(t, err)
	assert.Equal(t, BaseCurrency, rate.Currency)
	assert.Equal(t, 1.0, rate.Rate)
	assert.Zero(t, repo.gets)
}

func TestLookupCachesAfterFirstRead(t *testing.T) {
	repo := &stubRepo{rates: map[string]Rate{"USD": {Currency: "USD", Rate: 20, AsOf: time.Now()}}}
	svc := newTestService(t, repo)

	for i := 0; i < 3; i++ {
		rate, err := svc.Lookup(context.Background(), "usd")
		require.NoError(t, err)
		assert.Equal(t, 20.0, rate.Rate)
	}
	assert.Equal(t, 1, repo.gets)
}

func TestLookupUnknownCurrency(t *testing.T) {
	repo := &stubRepo{rates: map[string]Rate{}}
	svc := newTestService(t, repo)

	_, err := svc.Lookup(context.Background(), "XXX")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestLookupRejectsCorruptStoredRate(t *testing.T) {
	repo := &stubRepo{rates: map[string]Rate{"USD": {Currency: "USD", Rate: -3}}}
	svc := newTestService(t, repo)

	_, err := svc.Lookup(context.Background(), "USD")
	assert.ErrorIs(t, err, ErrBadRate)
}

func TestUpsertValidates(t *testing.T) {
	repo := &stubRepo{rates: map[string]Rate{}}
	svc := newTestService(t, repo)

	_, err := svc.Upsert(context.Background(), Rate{Currency: "USD", Rate: 0})
	assert.ErrorIs(t, err, ErrBadRate)

	_, err = svc.Upsert(context.Background(), Rate{Currency: "ZMW", Rate: 2})
	assert.ErrorIs(t, err, ErrBadRate)

	saved, err := svc.Upsert(context.Background(), Rate{Currency: "usd", Rate: 19.5})
	require.NoError(t, err)
	assert.Equal(t, "USD", saved.Currency)
}

func TestWarmCacheSkipsCorruptRates(t *testing.T) {
	repo := &stubRepo{rates: map[string]Rate{
		"USD": {Currency: "USD", Rate: 20},
		"EUR": {Currency: "EUR", Rate: 0},
	}}
	svc := newTestService(t, repo)

	warmed, err := svc.WarmCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, warmed)
}
