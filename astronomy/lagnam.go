package astronomy

import (
	"context"

	"github.com/kaalam/panchangam/astronomy/ephemeris"
	"github.com/kaalam/panchangam/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// lagnamStepJD is the Julian-day step between ascendant samples: 10 minutes.
const lagnamStepJD = 1.0 / 144.0

// LagnamInterval is a span of time during which the ascendant (rising sign)
// remains within one Rasi.
type LagnamInterval struct {
	Rasi      *RasiInfo `json:"rasi"`
	StartJD   float64   `json:"start_jd"`
	EndJD     float64   `json:"end_jd"`
}

// LagnamCalculator scans the ascendant across a civil day at fixed steps and
// collapses consecutive same-Rasi samples into intervals.
type LagnamCalculator struct {
	ephemerisManager *ephemeris.Manager
	observer         observability.ObserverInterface
}

// NewLagnamCalculator creates a new LagnamCalculator.
func NewLagnamCalculator(ephemerisManager *ephemeris.Manager) *LagnamCalculator {
	return &LagnamCalculator{
		ephemerisManager: ephemerisManager,
		observer:         observability.Observer(),
	}
}

// Scan walks from sunriseJD to sunriseJD+1 day in 10-minute steps, computing
// the ascendant at each step, and returns the resulting list of
// same-Rasi intervals. Ascendant failures at individual steps (which can
// occur at extreme latitudes) are swallowed and that step is skipped rather
// than aborting the whole scan.
func (lc *LagnamCalculator) Scan(ctx context.Context, sunriseJD ephemeris.JulianDay, latitude, longitude float64) ([]*LagnamInterval, error) {
	ctx, span := lc.observer.CreateSpan(ctx, "LagnamCalculator.Scan")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("sunrise_jd", float64(sunriseJD)),
		attribute.Float64("latitude", latitude),
		attribute.Float64("longitude", longitude),
	)

	start := float64(sunriseJD)
	end := start + 1.0

	var intervals []*LagnamInterval
	var current *LagnamInterval
	skipped := 0

	for jd := start; jd < end; jd += lagnamStepJD {
		ascendant, err := lc.ephemerisManager.Ascendant(ctx, ephemeris.JulianDay(jd), latitude, longitude)
		if err != nil {
			skipped++
			continue
		}

		rasi := RasiForLongitude(ascendant)

		if current != nil && current.Rasi.Number == rasi.Number {
			current.EndJD = jd + lagnamStepJD
			continue
		}

		if current != nil {
			intervals = append(intervals, current)
		}

		current = &LagnamInterval{
			Rasi:    rasi,
			StartJD: jd,
			EndJD:   jd + lagnamStepJD,
		}
	}

	if current != nil {
		intervals = append(intervals, current)
	}

	span.SetAttributes(
		attribute.Int("interval_count", len(intervals)),
		attribute.Int("skipped_steps", skipped),
	)
	span.AddEvent("Lagnam scan completed", trace.WithAttributes(
		attribute.Int("interval_count", len(intervals)),
	))

	return intervals, nil
}
