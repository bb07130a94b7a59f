package astronomy

import (
	"context"
	"fmt"
	"math"

	"github.com/kaalam/panchangam/astronomy/ephemeris"
	"github.com/kaalam/panchangam/observability"
	"github.com/kaalam/panchangam/solver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChandrashtamaInfo reports whether the transiting Moon occupies the 8th
// house counted from a person's birth Moon Rasi, the classically inauspicious
// "Chandrashtama" condition.
type ChandrashtamaInfo struct {
	Active         bool    `json:"active"`
	BirthMoonRasi  int     `json:"birth_moon_rasi"`
	ChandrashtamaRasi int  `json:"chandrashtama_rasi"`
	StartJD        float64 `json:"start_jd,omitempty"`
	EndJD          float64 `json:"end_jd,omitempty"`
}

// chandrashtamaSearchWindowDays is how far either side of the reference
// Julian day the Moon's entry/exit into the Chandrashtama Rasi is searched.
const chandrashtamaSearchWindowDays = 3.0

// ChandrashtamaCalculator evaluates the 8th-house Moon condition relative to
// a fixed birth Nakshatra.
type ChandrashtamaCalculator struct {
	ephemerisManager *ephemeris.Manager
	observer         observability.ObserverInterface
}

// NewChandrashtamaCalculator creates a new ChandrashtamaCalculator.
func NewChandrashtamaCalculator(ephemerisManager *ephemeris.Manager) *ChandrashtamaCalculator {
	return &ChandrashtamaCalculator{
		ephemerisManager: ephemerisManager,
		observer:         observability.Observer(),
	}
}

// birthMoonRasiFromNakshatra derives the Rasi containing a Nakshatra's
// starting degree, used as the birth Moon Rasi anchor.
func birthMoonRasiFromNakshatra(nakshatraNumber int) int {
	startDegree := float64(nakshatraNumber-1) * nakshatraSpanDegrees
	return RasiForLongitude(startDegree).Number
}

// Calculate evaluates Chandrashtama for the given birth Nakshatra at the
// given reference Julian day (the civil day's sunrise instant).
func (cc *ChandrashtamaCalculator) Calculate(ctx context.Context, birthNakshatraNumber int, referenceJD ephemeris.JulianDay) (*ChandrashtamaInfo, error) {
	ctx, span := cc.observer.CreateSpan(ctx, "ChandrashtamaCalculator.Calculate")
	defer span.End()

	birthMoonRasi := birthMoonRasiFromNakshatra(birthNakshatraNumber)
	chandrashtamaRasi := ((birthMoonRasi-1+7)%12)%12 + 1

	span.SetAttributes(
		attribute.Int("birth_nakshatra", birthNakshatraNumber),
		attribute.Int("birth_moon_rasi", birthMoonRasi),
		attribute.Int("chandrashtama_rasi", chandrashtamaRasi),
	)

	moonPos, err := cc.ephemerisManager.GetMoonPosition(ctx, referenceJD)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get moon position: %w", err)
	}

	transitRasi := RasiForLongitude(moonPos.Longitude)
	active := transitRasi.Number == chandrashtamaRasi

	span.SetAttributes(attribute.Bool("active", active))

	if !active {
		span.AddEvent("Chandrashtama not active")
		return nil, nil
	}

	info := &ChandrashtamaInfo{
		Active:            true,
		BirthMoonRasi:     birthMoonRasi,
		ChandrashtamaRasi: chandrashtamaRasi,
	}

	startDegree := rasiSpanDegrees * float64(chandrashtamaRasi-1)
	endDegree := math.Mod(startDegree+rasiSpanDegrees, 360)

	moonLongitudeAt := func(jd float64) (float64, error) {
		pos, err := cc.ephemerisManager.GetMoonPosition(ctx, ephemeris.JulianDay(jd))
		if err != nil {
			return 0, err
		}
		return math.Mod(pos.Longitude+360, 360), nil
	}

	refJD := float64(referenceJD)

	startJD, err := solver.FindCrossing(ctx, refJD-chandrashtamaSearchWindowDays, refJD, startDegree, moonLongitudeAt, solver.DefaultTolerance)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to locate chandrashtama entry: %w", err)
	}

	endJD, err := solver.FindCrossing(ctx, refJD, refJD+chandrashtamaSearchWindowDays, endDegree, moonLongitudeAt, solver.DefaultTolerance)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to locate chandrashtama exit: %w", err)
	}

	info.StartJD = startJD
	info.EndJD = endJD

	span.AddEvent("Chandrashtama window located", trace.WithAttributes(
		attribute.Float64("start_jd", startJD),
		attribute.Float64("end_jd", endJD),
	))

	return info, nil
}

// ValidateChandrashtamaCalculation validates a Chandrashtama result.
func ValidateChandrashtamaCalculation(info *ChandrashtamaInfo) error {
	if info == nil {
		return fmt.Errorf("chandrashtama info cannot be nil")
	}

	if info.BirthMoonRasi < 1 || info.BirthMoonRasi > 12 {
		return fmt.Errorf("invalid birth moon rasi: %d", info.BirthMoonRasi)
	}

	if info.ChandrashtamaRasi < 1 || info.ChandrashtamaRasi > 12 {
		return fmt.Errorf("invalid chandrashtama rasi: %d", info.ChandrashtamaRasi)
	}

	expected := ((info.BirthMoonRasi-1+7)%12)%12 + 1
	if info.ChandrashtamaRasi != expected {
		return fmt.Errorf("chandrashtama rasi %d does not match expected 8th house %d", info.ChandrashtamaRasi, expected)
	}

	if info.Active && info.EndJD <= info.StartJD {
		return fmt.Errorf("chandrashtama end_jd must be after start_jd when active")
	}

	return nil
}
