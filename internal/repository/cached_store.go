package repository

import (
	"context"
	"fmt"
	"time"

	"CandleVault/internal/domain/models"
	drepo "CandleVault/internal/domain/repository"
	"CandleVault/pkg/cache"
	"CandleVault/pkg/util"
)

// CachedPartitionStore decorates a PartitionStore with a read-through
// cache. Partitions for past days are immutable between ingestion runs,
// so a short TTL keeps repeated queries off the object store without
// serving stale data for long.
type CachedPartitionStore struct {
	inner drepo.PartitionStore
	cache cache.Service
	ttl   time.Duration
}

// NewCachedPartitionStore wraps inner with a cache.
func NewCachedPartitionStore(inner drepo.PartitionStore, c cache.Service, ttl time.Duration) *CachedPartitionStore {
	return &CachedPartitionStore{inner: inner, cache: c, ttl: ttl}
}

// Write delegates and invalidates the cache.
func (s *CachedPartitionStore) Write(ctx context.Context, symbol string, date time.Time, candles []models.Candle) error {
	if err := s.inner.Write(ctx, symbol, date, candles); err != nil {
		return err
	}
	_ = s.cache.Flush(ctx)
	return nil
}

// Read serves from cache when possible.
func (s *CachedPartitionStore) Read(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	key := fmt.Sprintf("range:%s:%s:%s", symbol, util.FormatDate(from), util.FormatDate(to))
	if candles, ok := cache.GetTyped[[]models.Candle](ctx, s.cache, key); ok {
		return candles, nil
	}

	candles, err := s.inner.Read(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, candles, s.ttl)
	return candles, nil
}

// ListSymbols serves from cache when possible.
func (s *CachedPartitionStore) ListSymbols(ctx context.Context, date time.Time) ([]string, error) {
	key := "symbols:" + util.FormatDate(date)
	if symbols, ok := cache.GetTyped[[]string](ctx, s.cache, key); ok {
		return symbols, nil
	}

	symbols, err := s.inner.ListSymbols(ctx, date)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, symbols, s.ttl)
	return symbols, nil
}
