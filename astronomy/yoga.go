package astronomy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kaalam/panchangam/astronomy/ephemeris"
	"github.com/kaalam/panchangam/observability"
	"github.com/kaalam/panchangam/solver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// YogaQuality is the teacher's richer internal categorization of a Yoga's
// traditional disposition; YogaNature below collapses this to the binary
// auspicious/inauspicious distinction external callers see.
type YogaQuality string

const (
	YogaQualityAuspicious   YogaQuality = "Auspicious"
	YogaQualityInauspicious YogaQuality = "Inauspicious"
	YogaQualityMixed        YogaQuality = "Mixed"
	YogaQualityNeutral      YogaQuality = "Neutral"
)

// YogaNature is the binary auspicious/inauspicious classification exposed
// on the record.
type YogaNature string

const (
	YogaNatureAuspicious   YogaNature = "auspicious"
	YogaNatureInauspicious YogaNature = "inauspicious"
)

// yogaSpanDegrees is the arc width of one Yoga (360/27), same as nakshatraSpanDegrees.
const yogaSpanDegrees = 360.0 / 27.0

// YogaInfo represents a Yoga with its properties
type YogaInfo struct {
	Number        int         `json:"number"`          // 1-27
	Name          string      `json:"name"`            // Sanskrit name
	Quality       YogaQuality `json:"quality"`         // Teacher's richer disposition
	Nature        YogaNature  `json:"nature"`           // auspicious | inauspicious
	Description   string      `json:"description"`     // Meaning and effects
	EndJD         float64     `json:"end_jd"`          // Julian day at which this Yoga ends
	SunLongitude  float64     `json:"sun_longitude"`   // Sun's longitude in degrees
	MoonLongitude float64     `json:"moon_longitude"`  // Moon's longitude in degrees
	CombinedValue float64     `json:"combined_value"`  // Sum of Sun and Moon longitudes
}

// YogaCalculator handles Yoga calculations
type YogaCalculator struct {
	ephemerisManager *ephemeris.Manager
	observer         observability.ObserverInterface
}

// NewYogaCalculator creates a new YogaCalculator
func NewYogaCalculator(ephemerisManager *ephemeris.Manager) *YogaCalculator {
	return &YogaCalculator{
		ephemerisManager: ephemerisManager,
		observer:         observability.Observer(),
	}
}

// YogaData contains detailed information about each Yoga
// Sources:
// - "Brihat Parashara Hora Shastra" by Sage Parashara
// - "Muhurta Chintamani" by Daivagya Ramachandra
// - "Hindu Astronomy" by W.E. van Wijk (1930)
// - "Surya Siddhanta" - Ancient Sanskrit astronomical text
var YogaData = map[int]struct {
	Name        string
	Quality     YogaQuality
	Description string
}{
	1:  {"Vishkambha", YogaQualityInauspicious, "Obstructive, delays and obstacles"},
	2:  {"Priti", YogaQualityAuspicious, "Love and affection, good for relationships"},
	3:  {"Ayushman", YogaQualityAuspicious, "Longevity, health and vitality"},
	4:  {"Saubhagya", YogaQualityAuspicious, "Good fortune, prosperity and happiness"},
	5:  {"Shobhana", YogaQualityAuspicious, "Beauty, auspicious for ceremonies"},
	6:  {"Atiganda", YogaQualityInauspicious, "Great danger, avoid important work"},
	7:  {"Sukarma", YogaQualityAuspicious, "Good deeds, meritorious actions"},
	8:  {"Dhriti", YogaQualityAuspicious, "Determination, steadfastness"},
	9:  {"Shula", YogaQualityInauspicious, "Pain and suffering, inauspicious"},
	10: {"Ganda", YogaQualityInauspicious, "Danger, avoid travel and new ventures"},
	11: {"Vriddhi", YogaQualityAuspicious, "Growth and prosperity"},
	12: {"Dhruva", YogaQualityAuspicious, "Stability, permanent gains"},
	13: {"Vyaghata", YogaQualityInauspicious, "Destruction, avoid important work"},
	14: {"Harshana", YogaQualityAuspicious, "Joy and happiness"},
	15: {"Vajra", YogaQualityMixed, "Diamond-like strength, can be harsh"},
	16: {"Siddhi", YogaQualityAuspicious, "Success and achievement"},
	17: {"Vyatipata", YogaQualityInauspicious, "Great calamity, very inauspicious"},
	18: {"Variyana", YogaQualityMixed, "Choice and selection, mixed results"},
	19: {"Parigha", YogaQualityInauspicious, "Iron rod, obstacles and delays"},
	20: {"Shiva", YogaQualityAuspicious, "Auspicious, beneficial for all activities"},
	21: {"Siddha", YogaQualityAuspicious, "Accomplished, success assured"},
	22: {"Sadhya", YogaQualityAuspicious, "Achievable, goals can be accomplished"},
	23: {"Shubha", YogaQualityAuspicious, "Pure and auspicious"},
	24: {"Shukla", YogaQualityAuspicious, "Bright and pure"},
	25: {"Brahma", YogaQualityAuspicious, "Divine, highly auspicious"},
	26: {"Indra", YogaQualityAuspicious, "Royal, powerful and prosperous"},
	27: {"Vaidhriti", YogaQualityInauspicious, "Separation, avoid joint ventures"},
}

// yogaNatureOf collapses the teacher's four-way quality into the binary
// nature the record exposes: only Auspicious counts as auspicious, Mixed
// and Neutral Yogas are treated as inauspicious since neither carries the
// unqualified "favorable for all activities" endorsement auspicious does.
func yogaNatureOf(quality YogaQuality) YogaNature {
	if quality == YogaQualityAuspicious {
		return YogaNatureAuspicious
	}
	return YogaNatureInauspicious
}

// GetYogaForDate calculates the Yoga for a given date
func (yc *YogaCalculator) GetYogaForDate(ctx context.Context, date time.Time) (*YogaInfo, error) {
	ctx, span := yc.observer.CreateSpan(ctx, "YogaCalculator.GetYogaForDate")
	defer span.End()

	span.SetAttributes(
		attribute.String("date", date.Format("2006-01-02")),
		attribute.String("timezone", date.Location().String()),
	)

	noonDate := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	jd := ephemeris.TimeToJulianDay(noonDate)

	span.SetAttributes(attribute.Float64("julian_day", float64(jd)))

	ctx, posSpan := yc.observer.CreateSpan(ctx, "getYogaPositions")
	positions, err := yc.ephemerisManager.GetPlanetaryPositions(ctx, jd)
	if err != nil {
		posSpan.RecordError(err)
		posSpan.End()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get planetary positions: %w", err)
	}

	sunLong := positions.Sun.Longitude
	moonLong := positions.Moon.Longitude

	posSpan.SetAttributes(
		attribute.Float64("sun_longitude", sunLong),
		attribute.Float64("moon_longitude", moonLong),
	)
	posSpan.End()

	yoga, err := yc.calculateYogaFromLongitudes(ctx, sunLong, moonLong, float64(jd))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("yoga_number", yoga.Number),
		attribute.String("yoga_name", yoga.Name),
		attribute.String("yoga_quality", string(yoga.Quality)),
		attribute.String("yoga_nature", string(yoga.Nature)),
		attribute.Float64("combined_value", yoga.CombinedValue),
	)

	span.AddEvent("Yoga calculated", trace.WithAttributes(
		attribute.Int("yoga_number", yoga.Number),
		attribute.String("yoga_name", yoga.Name),
		attribute.String("yoga_nature", string(yoga.Nature)),
	))

	return yoga, nil
}

// calculateYogaFromLongitudes calculates Yoga from Sun and Moon longitudes at referenceJD
func (yc *YogaCalculator) calculateYogaFromLongitudes(ctx context.Context, sunLong, moonLong, referenceJD float64) (*YogaInfo, error) {
	ctx, span := yc.observer.CreateSpan(ctx, "YogaCalculator.calculateYogaFromLongitudes")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("sun_longitude", sunLong),
		attribute.Float64("moon_longitude", moonLong),
		attribute.Float64("reference_jd", referenceJD),
	)

	normalizedSunLong := normalizeLongitude(sunLong)
	normalizedMoonLong := normalizeLongitude(moonLong)

	combinedValue := math.Mod(normalizedSunLong+normalizedMoonLong, 360)

	span.SetAttributes(
		attribute.Float64("normalized_sun_longitude", normalizedSunLong),
		attribute.Float64("normalized_moon_longitude", normalizedMoonLong),
		attribute.Float64("combined_value", combinedValue),
	)

	yogaFloat := combinedValue / yogaSpanDegrees
	yogaNumber := int(yogaFloat) + 1

	if yogaNumber > 27 {
		yogaNumber = 27
	}
	if yogaNumber < 1 {
		yogaNumber = 1
	}

	span.SetAttributes(
		attribute.Float64("yoga_span", yogaSpanDegrees),
		attribute.Float64("yoga_float", yogaFloat),
		attribute.Int("yoga_number", yogaNumber),
	)

	yogaDetails := YogaData[yogaNumber]
	nature := yogaNatureOf(yogaDetails.Quality)

	endJD, err := yc.findYogaEndJD(ctx, referenceJD, yogaNumber)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to locate yoga end: %w", err)
	}

	span.SetAttributes(
		attribute.String("yoga_name", yogaDetails.Name),
		attribute.String("yoga_quality", string(yogaDetails.Quality)),
		attribute.String("yoga_nature", string(nature)),
		attribute.String("yoga_description", yogaDetails.Description),
		attribute.Float64("end_jd", endJD),
	)

	yoga := &YogaInfo{
		Number:        yogaNumber,
		Name:          yogaDetails.Name,
		Quality:       yogaDetails.Quality,
		Nature:        nature,
		Description:   yogaDetails.Description,
		EndJD:         endJD,
		SunLongitude:  normalizedSunLong,
		MoonLongitude: normalizedMoonLong,
		CombinedValue: combinedValue,
	}

	span.AddEvent("Yoga calculation completed", trace.WithAttributes(
		attribute.Int("yoga_number", yogaNumber),
		attribute.String("yoga_name", yogaDetails.Name),
		attribute.String("yoga_nature", string(nature)),
		attribute.Float64("end_jd", endJD),
	))

	return yoga, nil
}

// findYogaEndJD locates the Julian day at which sun+moon crosses the upper
// boundary of the current Yoga, via bracketed bisection over a two-day
// window starting at referenceJD.
func (yc *YogaCalculator) findYogaEndJD(ctx context.Context, referenceJD float64, yogaNumber int) (float64, error) {
	targetValue := math.Mod(float64(yogaNumber)*yogaSpanDegrees, 360)

	combinedAt := func(jd float64) (float64, error) {
		sun, moon, err := yc.ephemerisManager.SunMoon(ctx, ephemeris.JulianDay(jd))
		if err != nil {
			return 0, err
		}
		return math.Mod(sun+moon, 360), nil
	}

	return solver.FindCrossing(ctx, referenceJD, referenceJD+2, targetValue, combinedAt, solver.DefaultTolerance)
}

// GetYogaFromLongitudes is a convenience function for direct longitude input
func (yc *YogaCalculator) GetYogaFromLongitudes(ctx context.Context, sunLong, moonLong float64, jd float64) (*YogaInfo, error) {
	ctx, span := yc.observer.CreateSpan(ctx, "YogaCalculator.GetYogaFromLongitudes")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("sun_longitude", sunLong),
		attribute.Float64("moon_longitude", moonLong),
		attribute.Float64("julian_day", jd),
	)

	return yc.calculateYogaFromLongitudes(ctx, sunLong, moonLong, jd)
}

// IsAuspiciousYoga returns true if the Yoga's nature is auspicious
func IsAuspiciousYoga(yoga *YogaInfo) bool {
	return yoga.Nature == YogaNatureAuspicious
}

// IsInauspiciousYoga returns true if the Yoga's nature is inauspicious
func IsInauspiciousYoga(yoga *YogaInfo) bool {
	return yoga.Nature == YogaNatureInauspicious
}

// GetYogaQualityDescription returns a detailed description of the Yoga quality
func GetYogaQualityDescription(quality YogaQuality) string {
	switch quality {
	case YogaQualityAuspicious:
		return "Favorable for all activities, brings good fortune and success"
	case YogaQualityInauspicious:
		return "Unfavorable, avoid important activities and new ventures"
	case YogaQualityMixed:
		return "Mixed results, proceed with caution and careful planning"
	case YogaQualityNeutral:
		return "Neutral influence, neither particularly favorable nor unfavorable"
	default:
		return "Unknown yoga quality"
	}
}

// normalizeLongitude normalizes a longitude value to 0-360 degrees
func normalizeLongitude(longitude float64) float64 {
	return math.Mod(math.Mod(longitude, 360)+360, 360)
}

// ValidateYogaCalculation validates a Yoga calculation result
func ValidateYogaCalculation(yoga *YogaInfo) error {
	if yoga == nil {
		return fmt.Errorf("yoga cannot be nil")
	}

	if yoga.Number < 1 || yoga.Number > 27 {
		return fmt.Errorf("invalid yoga number: %d, must be between 1 and 27", yoga.Number)
	}

	if yoga.SunLongitude < 0 || yoga.SunLongitude >= 360 {
		return fmt.Errorf("invalid sun longitude: %f, must be between 0 and 360 degrees", yoga.SunLongitude)
	}

	if yoga.MoonLongitude < 0 || yoga.MoonLongitude >= 360 {
		return fmt.Errorf("invalid moon longitude: %f, must be between 0 and 360 degrees", yoga.MoonLongitude)
	}

	if yoga.CombinedValue < 0 || yoga.CombinedValue >= 360 {
		return fmt.Errorf("invalid combined value: %f, must be between 0 and 360 degrees", yoga.CombinedValue)
	}

	if yoga.Name == "" {
		return fmt.Errorf("yoga name cannot be empty")
	}

	switch yoga.Nature {
	case YogaNatureAuspicious, YogaNatureInauspicious:
		// valid
	default:
		return fmt.Errorf("invalid yoga nature: %s", yoga.Nature)
	}

	return nil
}
