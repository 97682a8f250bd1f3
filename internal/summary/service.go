package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/redis"
)

const cacheName = "summary"

// Service serves the monthly stock movement summary.
type Service interface {
	Monthly(ctx context.Context, months int) ([]MonthSummary, error)
	Invalidate(ctx context.Context) error
}

type ledgerReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.InventoryLog, error)
}

type availabilityReader interface {
	TotalAvailable(ctx context.Context) (int, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	CacheKey(parts ...string) string
	VersionKey(name string) string
}

// ServiceParams wires the summary service. Cache is optional.
type ServiceParams struct {
	Logs     ledgerReader
	Stock    availabilityReader
	Cache    cacheStore
	CacheTTL time.Duration
	Metrics  *metrics.InventoryMetrics
	Logger   *logger.Logger
	Location *time.Location
	Now      func() time.Time
}

type service struct {
	logs    ledgerReader
	stock   availabilityReader
	cache   cacheStore
	ttl     time.Duration
	metrics *metrics.InventoryMetrics
	logg    *logger.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewService constructs a summary service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Logs == nil {
		return nil, fmt.Errorf("inventory log repository required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		logs:    params.Logs,
		stock:   params.Stock,
		cache:   params.Cache,
		ttl:     ttl,
		metrics: params.Metrics,
		logg:    params.Logger,
		loc:     loc,
		now:     now,
	}, nil
}

// Monthly returns the masked summary, served from cache when a fresh copy
// exists for the current ledger version.
func (s *service) Monthly(ctx context.Context, months int) ([]MonthSummary, error) {
	months = ClampMonths(months)
	now := s.now()
	key := s.cacheKey(ctx, now, months)

	if key != "" {
		start := time.Now()
		if cached, ok := s.readCache(ctx, key); ok {
			s.metrics.ObserveSummaryBuild("cache", time.Since(start))
			return cached, nil
		}
	}

	start := time.Now()
	buckets, err := s.build(ctx, now, months)
	if err != nil {
		return nil, err
	}
	out := Mask(buckets, now, s.loc)
	s.metrics.ObserveSummaryBuild("store", time.Since(start))

	if key != "" {
		s.writeCache(ctx, key, out)
	}
	return out, nil
}

// Invalidate bumps the cache version so every cached summary goes stale.
func (s *service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if _, err := s.cache.Incr(ctx, s.cache.VersionKey(cacheName)); err != nil {
		return fmt.Errorf("bump summary cache version: %w", err)
	}
	return nil
}

func (s *service) build(ctx context.Context, now time.Time, months int) ([]Bucket, error) {
	from, to := Window(now, s.loc, months)

	var (
		rows           []models.InventoryLog
		totalAvailable int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.logs.ListBetween(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		totalAvailable, err = s.stock.TotalAvailable(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.FromStore(err, "inventory data not found")
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			ActionType:      row.ActionType,
			QuantityChanged: row.QuantityChanged,
			CreatedAt:       row.CreatedAt,
		})
	}
	return Build(now, s.loc, months, entries, totalAvailable), nil
}

// cacheKey returns "" when caching is disabled or the version is unreadable.
func (s *service) cacheKey(ctx context.Context, now time.Time, months int) string {
	if s.cache == nil {
		return ""
	}
	version := "0"
	raw, err := s.cache.Get(ctx, s.cache.VersionKey(cacheName))
	switch {
	case err == nil:
		version = raw
	case redis.IsMiss(err):
	default:
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "summary cache version lookup failed")
		return ""
	}
	return s.cache.CacheKey(cacheName, "v"+version, Key(now, s.loc), strconv.Itoa(months), s.loc.String())
}

func (s *service) readCache(ctx context.Context, key string) ([]MonthSummary, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "summary cache read failed")
		}
		return nil, false
	}
	var out []MonthSummary
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "summary cache payload invalid")
		return nil, false
	}
	return out, true
}

func (s *service) writeCache(ctx context.Context, key string, out []MonthSummary) {
	payload, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "summary cache write failed")
	}
}
