package application

import (
	"errors"
	"testing"
	"time"

	"github.com/minmo-hq/offrampd/pkg/minmo"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	rate  float64
	err   error
}

func (s *countingSource) GetFxRate(base, target minmo.Currency) (*minmo.FxRateResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &minmo.FxRateResponse{
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           s.rate,
	}, nil
}

func TestRateCacheServesFreshEntries(t *testing.T) {
	source := &countingSource{rate: 6250000}
	cache := NewRateCache(source, 30*time.Second)

	clock := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	rate, err := cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.NoError(t, err)
	require.Equal(t, float64(6250000), rate.Rate)
	require.Equal(t, 1, source.calls)

	// within the TTL the source is not hit again
	clock = clock.Add(29 * time.Second)
	rate, err = cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.NoError(t, err)
	require.Equal(t, float64(6250000), rate.Rate)
	require.Equal(t, 1, source.calls)

	// past the TTL the entry is refetched
	clock = clock.Add(2 * time.Second)
	source.rate = 6300000
	rate, err = cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.NoError(t, err)
	require.Equal(t, float64(6300000), rate.Rate)
	require.Equal(t, 2, source.calls)
}

func TestRateCacheKeysPerPair(t *testing.T) {
	source := &countingSource{rate: 1}
	cache := NewRateCache(source, time.Minute)

	_, err := cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.NoError(t, err)
	_, err = cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyUsd)
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)

	// same pair, different case, same entry
	_, err = cache.GetRate(minmo.Currency("btc"), minmo.Currency("kes"))
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)
}

func TestRateCacheRefreshBypassesTheTTL(t *testing.T) {
	source := &countingSource{rate: 100}
	cache := NewRateCache(source, time.Hour)

	_, err := cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.NoError(t, err)

	source.rate = 200
	rate, err := cache.Refresh(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.NoError(t, err)
	require.Equal(t, float64(200), rate.Rate)

	// the refreshed value replaced the cached one
	rate, err = cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.NoError(t, err)
	require.Equal(t, float64(200), rate.Rate)
	require.Equal(t, 2, source.calls)
}

func TestRateCacheErrorLeavesCacheUntouched(t *testing.T) {
	source := &countingSource{rate: 100}
	cache := NewRateCache(source, time.Nanosecond)

	rate, err := cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.NoError(t, err)
	require.Equal(t, float64(100), rate.Rate)

	source.err = errors.New("gateway timeout")
	_, err = cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.Error(t, err)

	cache.Clear()
	source.err = nil
	_, err = cache.GetRate(minmo.CurrencyBtc, minmo.CurrencyKes)
	require.NoError(t, err)
}
