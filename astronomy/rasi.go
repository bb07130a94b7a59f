package astronomy

import (
	"context"
	"fmt"
	"math"

	"github.com/kaalam/panchangam/astronomy/ephemeris"
	"github.com/kaalam/panchangam/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// rasiSpanDegrees is the width of one zodiac sign.
const rasiSpanDegrees = 30.0

// RasiInfo represents a zodiac sign (Rasi) occupied by a body at some moment.
type RasiInfo struct {
	Number       int     `json:"number"` // 1-12
	Name         string  `json:"name"`
	Lord         string  `json:"lord"`
	StartDegree  float64 `json:"start_degree"`
	BodyLongitude float64 `json:"body_longitude"`
}

// RasiData contains the 12 sidereal zodiac signs and their planetary lords.
var RasiData = map[int]struct {
	Name string
	Lord string
}{
	1:  {"Mesha", "Mars"},
	2:  {"Vrishabha", "Venus"},
	3:  {"Mithuna", "Mercury"},
	4:  {"Karka", "Moon"},
	5:  {"Simha", "Sun"},
	6:  {"Kanya", "Mercury"},
	7:  {"Tula", "Venus"},
	8:  {"Vrischika", "Mars"},
	9:  {"Dhanu", "Jupiter"},
	10: {"Makara", "Saturn"},
	11: {"Kumbha", "Saturn"},
	12: {"Meena", "Jupiter"},
}

// RasiCalculator maps a sidereal longitude onto one of the 12 zodiac signs.
type RasiCalculator struct {
	ephemerisManager *ephemeris.Manager
	observer         observability.ObserverInterface
}

// NewRasiCalculator creates a new RasiCalculator.
func NewRasiCalculator(ephemerisManager *ephemeris.Manager) *RasiCalculator {
	return &RasiCalculator{
		ephemerisManager: ephemerisManager,
		observer:         observability.Observer(),
	}
}

// RasiForLongitude returns the Rasi containing the given sidereal longitude.
func RasiForLongitude(longitude float64) *RasiInfo {
	normalized := math.Mod(math.Mod(longitude, 360)+360, 360)
	number := int(normalized/rasiSpanDegrees) + 1
	if number > 12 {
		number = 12
	}

	details := RasiData[number]
	return &RasiInfo{
		Number:        number,
		Name:          details.Name,
		Lord:          details.Lord,
		StartDegree:   rasiSpanDegrees * float64(number-1),
		BodyLongitude: normalized,
	}
}

// MoonRasi returns the Rasi occupied by the Moon at the given Julian day.
func (rc *RasiCalculator) MoonRasi(ctx context.Context, jd ephemeris.JulianDay) (*RasiInfo, error) {
	ctx, span := rc.observer.CreateSpan(ctx, "RasiCalculator.MoonRasi")
	defer span.End()

	moonPos, err := rc.ephemerisManager.GetMoonPosition(ctx, jd)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get moon position: %w", err)
	}

	rasi := RasiForLongitude(moonPos.Longitude)

	span.SetAttributes(
		attribute.Int("rasi_number", rasi.Number),
		attribute.String("rasi_name", rasi.Name),
		attribute.Float64("moon_longitude", moonPos.Longitude),
	)
	span.AddEvent("Moon rasi calculated", trace.WithAttributes(
		attribute.String("rasi_name", rasi.Name),
	))

	return rasi, nil
}

// SunRasi returns the Rasi occupied by the Sun at the given Julian day.
func (rc *RasiCalculator) SunRasi(ctx context.Context, jd ephemeris.JulianDay) (*RasiInfo, error) {
	ctx, span := rc.observer.CreateSpan(ctx, "RasiCalculator.SunRasi")
	defer span.End()

	sunPos, err := rc.ephemerisManager.GetSunPosition(ctx, jd)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get sun position: %w", err)
	}

	rasi := RasiForLongitude(sunPos.Longitude)

	span.SetAttributes(
		attribute.Int("rasi_number", rasi.Number),
		attribute.String("rasi_name", rasi.Name),
	)

	return rasi, nil
}

// ValidateRasiCalculation validates a Rasi calculation result.
func ValidateRasiCalculation(rasi *RasiInfo) error {
	if rasi == nil {
		return fmt.Errorf("rasi cannot be nil")
	}

	if rasi.Number < 1 || rasi.Number > 12 {
		return fmt.Errorf("invalid rasi number: %d, must be between 1 and 12", rasi.Number)
	}

	if rasi.Name == "" || rasi.Lord == "" {
		return fmt.Errorf("rasi name and lord cannot be empty")
	}

	expectedStart := rasiSpanDegrees * float64(rasi.Number-1)
	if math.Abs(rasi.StartDegree-expectedStart) > 1e-9 {
		return fmt.Errorf("rasi start degree %f does not match expected %f for number %d", rasi.StartDegree, expectedStart, rasi.Number)
	}

	return nil
}
