package summary

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/inventorylog"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/db/dbtest"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

type memoryCache struct {
	values  map[string]string
	sets    int
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	if m.failGet {
		return "", errors.New("connection refused")
	}
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.sets++
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	}
	return nil
}

func (m *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	n, _ := strconv.ParseInt(m.values[key], 10, 64)
	n++
	m.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *memoryCache) CacheKey(parts ...string) string {
	return "cache:" + strings.Join(parts, ":")
}

func (m *memoryCache) VersionKey(name string) string {
	return "version:" + name
}

type summaryEnv struct {
	svc      Service
	conn     *gorm.DB
	stockSvc stock.Service
	cache    *memoryCache
	now      time.Time
}

func newSummaryEnv(t *testing.T, cache *memoryCache) *summaryEnv {
	t.Helper()
	conn := dbtest.Open(t)
	env := &summaryEnv{conn: conn, cache: cache, now: time.Date(2026, time.July, 15, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return env.now }

	stockRepo := stock.NewRepository(conn)
	logs := inventorylog.NewRepository(conn)
	var err error
	env.stockSvc, err = stock.NewService(stock.ServiceParams{StockRepo: stockRepo, LogRepo: logs, Now: clock})
	require.NoError(t, err)

	params := ServiceParams{
		Logs:   logs,
		Stock:  stockRepo,
		Logger: logger.New(logger.Options{ServiceName: "summary-test", Output: &bytes.Buffer{}}),
		Now:    clock,
	}
	if cache != nil {
		params.Cache = cache
	}
	env.svc, err = NewService(params)
	require.NoError(t, err)
	return env
}

func (e *summaryEnv) addProduct(t *testing.T, count int) *models.Product {
	t.Helper()
	ctx := context.Background()
	product := &models.Product{Name: "Soldering iron"}
	opening, err := stock.ForAddProduct(count)
	require.NoError(t, err)
	require.NoError(t, e.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Omit("Stock").Create(product).Error; err != nil {
			return err
		}
		return e.stockSvc.Seed(ctx, tx, stock.Entry{ProductID: product.ID, Mutation: opening})
	}))
	return product
}

func (e *summaryEnv) record(t *testing.T, product *models.Product, m stock.Mutation) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.conn.Transaction(func(tx *gorm.DB) error {
		return e.stockSvc.Record(ctx, tx, stock.Entry{ProductID: product.ID, Mutation: m})
	}))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestMonthlyReflectsNewProduct(t *testing.T) {
	env := newSummaryEnv(t, nil)
	env.addProduct(t, 8)

	views, err := env.svc.Monthly(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	current := views[0]
	assert.Equal(t, "July", current.Month)
	require.NotNil(t, current.NewlyPurchased)
	assert.Equal(t, 8, *current.NewlyPurchased)
	assert.Equal(t, 0, *current.OpeningStock)
	assert.Equal(t, 8, *current.ClosingStock)
}

func TestMonthlyAnchorsToLiveAvailability(t *testing.T) {
	env := newSummaryEnv(t, nil)

	env.now = time.Date(2026, time.May, 3, 9, 0, 0, 0, time.UTC)
	a := env.addProduct(t, 10)
	env.now = time.Date(2026, time.June, 9, 9, 0, 0, 0, time.UTC)
	b := env.addProduct(t, 4)
	borrow, err := stock.ForCreate("borrowed", 3)
	require.NoError(t, err)
	env.record(t, a, borrow)
	env.now = time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	defective, err := stock.ForDefective(1)
	require.NoError(t, err)
	env.record(t, b, defective)
	env.now = time.Date(2026, time.July, 15, 10, 0, 0, 0, time.UTC)

	svc := env.svc.(*service)
	buckets, err := svc.build(context.Background(), svc.now(), 3)
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"2026-05", "2026-06", "2026-07"}, []string{buckets[0].Key, buckets[1].Key, buckets[2].Key})
	assert.Equal(t, 10, buckets[2].ClosingStock)
	assert.Equal(t, 11, buckets[2].OpeningStock)
	assert.Equal(t, 1, buckets[2].DefectiveRemoved)
	assert.Equal(t, 3, buckets[1].UtilizedItems)
	assert.Equal(t, 10, buckets[1].OpeningStock)
	assert.Equal(t, 0, buckets[0].OpeningStock)

	views, err := env.svc.Monthly(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, views[0].ClosingStock)
	assert.Nil(t, views[1].UtilizedItems)
	require.NotNil(t, views[2].ClosingStock)
	assert.Equal(t, 10, *views[2].ClosingStock)
}

func TestMonthlyCachesUntilInvalidated(t *testing.T) {
	cache := newMemoryCache()
	env := newSummaryEnv(t, cache)
	ctx := context.Background()
	product := env.addProduct(t, 5)

	first, err := env.svc.Monthly(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	restock, err := stock.ForRestock(2)
	require.NoError(t, err)
	env.record(t, product, restock)

	stale, err := env.svc.Monthly(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, *first[0].ClosingStock, *stale[0].ClosingStock, "served from cache")
	assert.Equal(t, 1, cache.sets)

	require.NoError(t, env.svc.Invalidate(ctx))
	fresh, err := env.svc.Monthly(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, *fresh[0].ClosingStock)
	assert.Equal(t, 2, cache.sets)
}

func TestMonthlyIgnoresCacheFailures(t *testing.T) {
	cache := newMemoryCache()
	cache.failGet = true
	env := newSummaryEnv(t, cache)
	env.addProduct(t, 3)

	views, err := env.svc.Monthly(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, *views[0].ClosingStock)
	assert.Equal(t, 0, cache.sets)
}

func TestInvalidateWithoutCacheIsNoop(t *testing.T) {
	env := newSummaryEnv(t, nil)
	assert.NoError(t, env.svc.Invalidate(context.Background()))
}
