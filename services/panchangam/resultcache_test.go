package panchangam

import (
	"context"
	"testing"
	"time"

	"github.com/kaalam/panchangam/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResultCache is a minimal in-memory ResultCache, standing in for Redis
// in tests the same way the teacher's MockCache stands in for the
// ephemeris cache.
type fakeResultCache struct {
	store map[string]*cache.PanchangamCacheData
	gets  int
	sets  int
}

func newFakeResultCache() *fakeResultCache {
	return &fakeResultCache{store: make(map[string]*cache.PanchangamCacheData)}
}

func (f *fakeResultCache) Get(ctx context.Context, key string) (*cache.PanchangamCacheData, error) {
	f.gets++
	return f.store[key], nil
}

func (f *fakeResultCache) Set(ctx context.Context, key string, data *cache.PanchangamCacheData) error {
	f.sets++
	f.store[key] = data
	return nil
}

func TestToCacheDataFlattensReport(t *testing.T) {
	report := &DailyReport{
		Date:    time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC),
		Sunrise: time.Date(2026, 7, 29, 5, 58, 0, 0, time.UTC),
		Sunset:  time.Date(2026, 7, 29, 18, 24, 0, 0, time.UTC),
	}

	data := ToCacheData(report)

	assert.Equal(t, "2026-07-29", data.Date)
	assert.False(t, data.Incomplete)
}

func TestEngineDailySummaryCachesAcrossCalls(t *testing.T) {
	e := newTestEngine()
	fake := newFakeResultCache()
	e.SetResultCache(fake)

	req := Request{
		Date:      time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC),
		Zone:      time.UTC,
		Latitude:  13.0827,
		Longitude: 80.2707,
	}

	first, err := e.DailySummary(context.Background(), req, "Tamil Nadu", "Lahiri")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, fake.gets)
	assert.Equal(t, 1, fake.sets)

	second, err := e.DailySummary(context.Background(), req, "Tamil Nadu", "Lahiri")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, fake.gets)
	assert.Equal(t, 1, fake.sets) // second call was a cache hit, no extra Set
}

func TestEngineDailySummaryWithoutCacheComputesDirectly(t *testing.T) {
	e := newTestEngine()

	req := Request{
		Date:      time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC),
		Zone:      time.UTC,
		Latitude:  13.0827,
		Longitude: 80.2707,
	}

	summary, err := e.DailySummary(context.Background(), req, "Tamil Nadu", "Lahiri")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "2026-07-29", summary.Date)
}
