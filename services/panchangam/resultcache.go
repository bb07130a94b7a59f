package panchangam

import (
	"context"
	"fmt"

	"github.com/kaalam/panchangam/cache"
)

// ResultCache caches the flattened, human-facing summary of a DailyReport,
// keyed by date/region/method/location, so repeated requests for the same
// civil day and place skip recomputing the full report. *cache.RedisCache
// satisfies this interface.
type ResultCache interface {
	Get(ctx context.Context, key string) (*cache.PanchangamCacheData, error)
	Set(ctx context.Context, key string, data *cache.PanchangamCacheData) error
}

// ToCacheData flattens a DailyReport into its cache read model.
func ToCacheData(report *DailyReport) *cache.PanchangamCacheData {
	data := &cache.PanchangamCacheData{
		Date:        report.Date.Format("2006-01-02"),
		Incomplete:  report.Incomplete,
		SunriseTime: report.Sunrise.Format("15:04:05"),
		SunsetTime:  report.Sunset.Format("15:04:05"),
	}

	if report.Incomplete {
		return data
	}

	if report.Tithi != nil {
		data.Tithi = fmt.Sprintf("%s (#%d)", report.Tithi.Name, report.Tithi.Number)
	}
	if report.Nakshatra != nil {
		data.Nakshatra = fmt.Sprintf("%s (#%d)", report.Nakshatra.Name, report.Nakshatra.Number)
	}
	if report.Yoga != nil {
		data.Yoga = fmt.Sprintf("%s (#%d)", report.Yoga.Name, report.Yoga.Number)
	}
	if report.Karana != nil {
		data.Karana = fmt.Sprintf("%s (#%d)", report.Karana.Name, report.Karana.Number)
	}
	if report.MoonRasi != nil {
		data.MoonRasi = report.MoonRasi.Name
	}
	if report.Vara != nil {
		data.Vara = report.Vara.Name
	}
	if report.TamilDate != nil {
		data.TamilDate = fmt.Sprintf("%s %d, %s %d", report.TamilDate.MonthName, report.TamilDate.Day, report.TamilDate.YearName, report.TamilDate.YearNumber)
	}

	for _, f := range report.Festivals {
		data.Events = append(data.Events, cache.Event{Name: f.Name, EventType: f.Type})
	}

	return data
}

// SetResultCache wires an optional result cache into the Engine. Passing
// nil disables caching (the default); DailySummary then always recomputes.
func (e *Engine) SetResultCache(resultCache ResultCache) {
	e.resultCache = resultCache
}

// DailySummary returns the flattened, human-facing summary for the given
// request, region and calculation method label, consulting the Engine's
// result cache first when one is configured. On a cache miss (or when no
// cache is configured) it computes the full report via Daily and, if a
// cache is configured, stores the summary for subsequent lookups.
func (e *Engine) DailySummary(ctx context.Context, req Request, region, method string) (*cache.PanchangamCacheData, error) {
	ctx, span := e.observer.CreateSpan(ctx, "Engine.DailySummary")
	defer span.End()

	if e.resultCache == nil {
		report, err := e.Daily(ctx, req)
		if err != nil {
			return nil, err
		}
		return ToCacheData(report), nil
	}

	key := cache.GenerateCacheKey(req.Date.Format("2006-01-02"), region, method, req.Latitude, req.Longitude)

	if cached, err := e.resultCache.Get(ctx, key); err == nil && cached != nil {
		span.AddEvent("result cache hit")
		return cached, nil
	}

	report, err := e.Daily(ctx, req)
	if err != nil {
		return nil, err
	}

	data := ToCacheData(report)
	if err := e.resultCache.Set(ctx, key, data); err != nil {
		span.RecordError(err)
	}

	return data, nil
}
