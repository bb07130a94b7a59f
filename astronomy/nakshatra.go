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

// nakshatraSpanDegrees is the arc width of one Nakshatra (360/27).
const nakshatraSpanDegrees = 360.0 / 27.0

// padaSpanDegrees is the arc width of one pada (nakshatraSpanDegrees/4).
const padaSpanDegrees = nakshatraSpanDegrees / 4.0

// NakshatraInfo represents a Nakshatra with its properties
type NakshatraInfo struct {
	Number        int     `json:"number"`         // 1-27
	Name          string  `json:"name"`           // Sanskrit name
	Deity         string  `json:"deity"`          // Ruling deity
	PlanetaryLord string  `json:"planetary_lord"` // Ruling planet (the "lord")
	Symbol        string  `json:"symbol"`         // Traditional symbol
	Pada          int     `json:"pada"`           // Current pada (1-4)
	EndJD         float64 `json:"end_jd"`         // Julian day at which this Nakshatra ends
	NextName      string  `json:"next_name"`      // Name of the following Nakshatra
	MoonLongitude float64 `json:"moon_longitude"` // Moon's sidereal longitude in degrees
}

// NakshatraCalculator handles Nakshatra calculations
type NakshatraCalculator struct {
	ephemerisManager *ephemeris.Manager
	observer         observability.ObserverInterface
}

// NewNakshatraCalculator creates a new NakshatraCalculator
func NewNakshatraCalculator(ephemerisManager *ephemeris.Manager) *NakshatraCalculator {
	return &NakshatraCalculator{
		ephemerisManager: ephemerisManager,
		observer:         observability.Observer(),
	}
}

// NakshatraData contains detailed information about each Nakshatra
// Sources:
// - "Hindu Astronomy" by W.E. van Wijk (1930)
// - "Surya Siddhanta" - Ancient Sanskrit astronomical text
// - "Brihat Parashara Hora Shastra" by Sage Parashara
// - "Muhurta Chintamani" by Daivagya Ramachandra
var NakshatraData = map[int]struct {
	Name          string
	Deity         string
	PlanetaryLord string
	Symbol        string
}{
	1:  {"Ashwini", "Ashwini Kumaras", "Ketu", "Horse's Head"},
	2:  {"Bharani", "Yama", "Venus", "Yoni (Vagina)"},
	3:  {"Krittika", "Agni", "Sun", "Razor/Knife"},
	4:  {"Rohini", "Brahma", "Moon", "Cart/Chariot"},
	5:  {"Mrigashira", "Soma", "Mars", "Deer's Head"},
	6:  {"Ardra", "Rudra", "Rahu", "Teardrop/Diamond"},
	7:  {"Punarvasu", "Aditi", "Jupiter", "Bow and Quiver"},
	8:  {"Pushya", "Brihaspati", "Saturn", "Cow's Udder"},
	9:  {"Ashlesha", "Nagas", "Mercury", "Serpent"},
	10: {"Magha", "Pitrs (Ancestors)", "Ketu", "Throne"},
	11: {"Purva Phalguni", "Bhaga", "Venus", "Front Legs of Bed"},
	12: {"Uttara Phalguni", "Aryaman", "Sun", "Back Legs of Bed"},
	13: {"Hasta", "Savitar", "Moon", "Hand"},
	14: {"Chitra", "Tvashtar", "Mars", "Bright Jewel"},
	15: {"Swati", "Vayu", "Rahu", "Young Shoot of Plant"},
	16: {"Vishakha", "Indra-Agni", "Jupiter", "Triumphal Arch"},
	17: {"Anuradha", "Mitra", "Saturn", "Lotus"},
	18: {"Jyeshtha", "Indra", "Mercury", "Circular Amulet"},
	19: {"Mula", "Nirriti", "Ketu", "Bunch of Roots"},
	20: {"Purva Ashadha", "Apas", "Venus", "Elephant Tusk"},
	21: {"Uttara Ashadha", "Vishve Devas", "Sun", "Elephant Tusk"},
	22: {"Shravana", "Vishnu", "Moon", "Ear/Three Footprints"},
	23: {"Dhanishta", "Vasus", "Mars", "Drum"},
	24: {"Shatabhisha", "Varuna", "Rahu", "Empty Circle"},
	25: {"Purva Bhadrapada", "Aja Ekapada", "Jupiter", "Front Legs of Funeral Cot"},
	26: {"Uttara Bhadrapada", "Ahir Budhnya", "Saturn", "Back Legs of Funeral Cot"},
	27: {"Revati", "Pushan", "Mercury", "Fish/Pair of Fish"},
}

// GetNakshatraForDate calculates the Nakshatra for a given date
func (nc *NakshatraCalculator) GetNakshatraForDate(ctx context.Context, date time.Time) (*NakshatraInfo, error) {
	ctx, span := nc.observer.CreateSpan(ctx, "NakshatraCalculator.GetNakshatraForDate")
	defer span.End()

	span.SetAttributes(
		attribute.String("date", date.Format("2006-01-02")),
		attribute.String("timezone", date.Location().String()),
	)

	noonDate := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	jd := ephemeris.TimeToJulianDay(noonDate)

	span.SetAttributes(attribute.Float64("julian_day", float64(jd)))

	ctx, posSpan := nc.observer.CreateSpan(ctx, "getNakshatraPositions")
	positions, err := nc.ephemerisManager.GetPlanetaryPositions(ctx, jd)
	if err != nil {
		posSpan.RecordError(err)
		posSpan.End()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get planetary positions: %w", err)
	}

	moonLong := positions.Moon.Longitude

	posSpan.SetAttributes(attribute.Float64("moon_longitude", moonLong))
	posSpan.End()

	nakshatra, err := nc.calculateNakshatraFromLongitude(ctx, moonLong, float64(jd))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("nakshatra_number", nakshatra.Number),
		attribute.String("nakshatra_name", nakshatra.Name),
		attribute.String("deity", nakshatra.Deity),
		attribute.String("planetary_lord", nakshatra.PlanetaryLord),
		attribute.Int("pada", nakshatra.Pada),
		attribute.Float64("moon_longitude", nakshatra.MoonLongitude),
		attribute.Float64("end_jd", nakshatra.EndJD),
	)

	span.AddEvent("Nakshatra calculated", trace.WithAttributes(
		attribute.Int("nakshatra_number", nakshatra.Number),
		attribute.String("nakshatra_name", nakshatra.Name),
		attribute.Int("pada", nakshatra.Pada),
	))

	return nakshatra, nil
}

// calculateNakshatraFromLongitude calculates Nakshatra from Moon's longitude at referenceJD
func (nc *NakshatraCalculator) calculateNakshatraFromLongitude(ctx context.Context, moonLong float64, referenceJD float64) (*NakshatraInfo, error) {
	ctx, span := nc.observer.CreateSpan(ctx, "NakshatraCalculator.calculateNakshatraFromLongitude")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("moon_longitude", moonLong),
		attribute.Float64("reference_jd", referenceJD),
	)

	normalizedLong := math.Mod(moonLong+360, 360)

	span.SetAttributes(attribute.Float64("normalized_moon_longitude", normalizedLong))

	nakshatraFloat := normalizedLong / nakshatraSpanDegrees
	nakshatraNumber := int(nakshatraFloat) + 1

	if nakshatraNumber > 27 {
		nakshatraNumber = 27
	}
	if nakshatraNumber < 1 {
		nakshatraNumber = 1
	}

	positionInNakshatra := normalizedLong - (float64(nakshatraNumber-1) * nakshatraSpanDegrees)
	pada := int(positionInNakshatra/padaSpanDegrees) + 1

	if pada > 4 {
		pada = 4
	}
	if pada < 1 {
		pada = 1
	}

	span.SetAttributes(
		attribute.Float64("nakshatra_span", nakshatraSpanDegrees),
		attribute.Float64("nakshatra_float", nakshatraFloat),
		attribute.Int("nakshatra_number", nakshatraNumber),
		attribute.Float64("position_in_nakshatra", positionInNakshatra),
		attribute.Float64("pada_span", padaSpanDegrees),
		attribute.Int("pada", pada),
	)

	nakshatraDetails := NakshatraData[nakshatraNumber]
	nextNumber := nakshatraNumber + 1
	if nextNumber > 27 {
		nextNumber = 1
	}
	nextName := NakshatraData[nextNumber].Name

	endJD, err := nc.findNakshatraEndJD(ctx, referenceJD, nakshatraNumber)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to locate nakshatra end: %w", err)
	}

	nakshatra := &NakshatraInfo{
		Number:        nakshatraNumber,
		Name:          nakshatraDetails.Name,
		Deity:         nakshatraDetails.Deity,
		PlanetaryLord: nakshatraDetails.PlanetaryLord,
		Symbol:        nakshatraDetails.Symbol,
		Pada:          pada,
		EndJD:         endJD,
		NextName:      nextName,
		MoonLongitude: normalizedLong,
	}

	span.AddEvent("Nakshatra calculation completed", trace.WithAttributes(
		attribute.Int("nakshatra_number", nakshatraNumber),
		attribute.String("nakshatra_name", nakshatraDetails.Name),
		attribute.Int("pada", pada),
		attribute.Float64("end_jd", endJD),
	))

	return nakshatra, nil
}

// findNakshatraEndJD locates the Julian day at which the Moon's sidereal
// longitude crosses the upper boundary of the current Nakshatra, via
// bracketed bisection over a two-day window starting at referenceJD.
func (nc *NakshatraCalculator) findNakshatraEndJD(ctx context.Context, referenceJD float64, nakshatraNumber int) (float64, error) {
	targetLongitude := math.Mod(float64(nakshatraNumber)*nakshatraSpanDegrees, 360)

	moonLongitudeAt := func(jd float64) (float64, error) {
		moonPos, err := nc.ephemerisManager.GetMoonPosition(ctx, ephemeris.JulianDay(jd))
		if err != nil {
			return 0, err
		}
		return math.Mod(moonPos.Longitude+360, 360), nil
	}

	return solver.FindCrossing(ctx, referenceJD, referenceJD+2, targetLongitude, moonLongitudeAt, solver.DefaultTolerance)
}

// GetNakshatraFromLongitude is a convenience function for direct longitude input
func (nc *NakshatraCalculator) GetNakshatraFromLongitude(ctx context.Context, moonLong float64, jd float64) (*NakshatraInfo, error) {
	ctx, span := nc.observer.CreateSpan(ctx, "NakshatraCalculator.GetNakshatraFromLongitude")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("moon_longitude", moonLong),
		attribute.Float64("julian_day", jd),
	)

	return nc.calculateNakshatraFromLongitude(ctx, moonLong, jd)
}

// GetPadaDescription returns a description of the Pada
func GetPadaDescription(nakshatraNumber, pada int) string {
	switch pada {
	case 1:
		return "First pada - represents new beginnings and initiation"
	case 2:
		return "Second pada - represents growth and development"
	case 3:
		return "Third pada - represents maturity and stability"
	case 4:
		return "Fourth pada - represents completion and transformation"
	default:
		return "Unknown pada"
	}
}

// ValidateNakshatraCalculation validates a Nakshatra calculation result
func ValidateNakshatraCalculation(nakshatra *NakshatraInfo) error {
	if nakshatra == nil {
		return fmt.Errorf("nakshatra cannot be nil")
	}

	if nakshatra.Number < 1 || nakshatra.Number > 27 {
		return fmt.Errorf("invalid nakshatra number: %d, must be between 1 and 27", nakshatra.Number)
	}

	if nakshatra.Pada < 1 || nakshatra.Pada > 4 {
		return fmt.Errorf("invalid pada: %d, must be between 1 and 4", nakshatra.Pada)
	}

	if nakshatra.MoonLongitude < 0 || nakshatra.MoonLongitude >= 360 {
		return fmt.Errorf("invalid moon longitude: %f, must be between 0 and 360 degrees", nakshatra.MoonLongitude)
	}

	if nakshatra.Name == "" || nakshatra.NextName == "" {
		return fmt.Errorf("nakshatra name cannot be empty")
	}

	if nakshatra.PlanetaryLord == "" {
		return fmt.Errorf("nakshatra planetary lord cannot be empty")
	}

	return nil
}
