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

// TithiType represents the categorization of Tithi
type TithiType string

const (
	TithiTypeNanda  TithiType = "Nanda"  // 1, 6, 11 (Joyful)
	TithiTypeBhadra TithiType = "Bhadra" // 2, 7, 12 (Auspicious)
	TithiTypeJaya   TithiType = "Jaya"   // 3, 8, 13 (Victorious)
	TithiTypeRikta  TithiType = "Rikta"  // 4, 9, 14 (Empty)
	TithiTypePurna  TithiType = "Purna"  // 5, 10, 15 (Full/Complete)
)

// tithiSpanDegrees is the elongation width of one Tithi.
const tithiSpanDegrees = 12.0

// TithiInfo represents a Tithi with its properties
type TithiInfo struct {
	Number          int       `json:"number"`           // 1-30
	Name            string    `json:"name"`             // Standard Sanskrit name of the Tithi
	Type            TithiType `json:"type"`             // Category (Nanda, Bhadra, Jaya, Rikta, Purna)
	EndJD           float64   `json:"end_jd"`            // Julian day at which this Tithi ends (elongation crosses the next 12° boundary)
	NextName        string    `json:"next_name"`         // Standard name of the following Tithi
	IsShukla        bool      `json:"is_shukla"`         // true for Shukla Paksha, false for Krishna Paksha
	Paksha          string    `json:"paksha"`            // "Shukla" or "Krishna"
	PakshaDay       int       `json:"paksha_day"`        // 1-15 within the paksha
	TraditionalName string    `json:"traditional_name"`  // Traditional Sanskrit name (Dvithiya, Thuthiya, etc.)
	MoonSunDiff     float64   `json:"moon_sun_diff"`     // Moon longitude - Sun longitude in degrees
	CalendarSystem  string    `json:"calendar_system"`   // "Purnimanta" or "Amanta"
}

// TithiCalculator handles Tithi calculations
type TithiCalculator struct {
	ephemerisManager *ephemeris.Manager
	observer         observability.ObserverInterface
}

// NewTithiCalculator creates a new TithiCalculator
func NewTithiCalculator(ephemerisManager *ephemeris.Manager) *TithiCalculator {
	return &TithiCalculator{
		ephemerisManager: ephemerisManager,
		observer:         observability.Observer(),
	}
}

// TithiNames maps Tithi numbers to their standard Sanskrit names
var TithiNames = map[int]string{
	1: "Pratipada", 2: "Dwitiya", 3: "Tritiya", 4: "Chaturthi", 5: "Panchami",
	6: "Shashthi", 7: "Saptami", 8: "Ashtami", 9: "Navami", 10: "Dashami",
	11: "Ekadashi", 12: "Dwadashi", 13: "Trayodashi", 14: "Chaturdashi", 15: "Purnima",
	16: "Pratipada", 17: "Dwitiya", 18: "Tritiya", 19: "Chaturthi", 20: "Panchami",
	21: "Shashthi", 22: "Saptami", 23: "Ashtami", 24: "Navami", 25: "Dashami",
	26: "Ekadashi", 27: "Dwadashi", 28: "Trayodashi", 29: "Chaturdashi", 30: "Amavasya",
}

// TraditionalTithiNames maps Tithi numbers to traditional Sanskrit names with preferred spellings
var TraditionalTithiNames = map[int]string{
	1: "Pratipada", 2: "Dvithiya", 3: "Thuthiya", 4: "Chathurthi", 5: "Panchami",
	6: "Shashthi", 7: "Sapthami", 8: "Ashtami", 9: "Navami", 10: "Dashami",
	11: "Ekadashi", 12: "Dvadashi", 13: "Thrayodashi", 14: "Chathurdashi", 15: "Pournima",
	16: "Pratipada", 17: "Dvithiya", 18: "Thuthiya", 19: "Chathurthi", 20: "Panchami",
	21: "Shashthi", 22: "Sapthami", 23: "Ashtami", 24: "Navami", 25: "Dashami",
	26: "Ekadashi", 27: "Dvadashi", 28: "Thrayodashi", 29: "Chathurdashi", 30: "Amavasya",
}

// PakshaNames maps paksha day numbers (1-15) to their traditional names
var PakshaNames = map[int]string{
	1: "Pratipada", 2: "Dvithiya", 3: "Thuthiya", 4: "Chathurthi", 5: "Panchami",
	6: "Shashthi", 7: "Sapthami", 8: "Ashtami", 9: "Navami", 10: "Dashami",
	11: "Ekadashi", 12: "Dvadashi", 13: "Thrayodashi", 14: "Chathurdashi", 15: "Pournima",
}

// GetTithiForDate calculates the Tithi for a given date with default Purnimanta system
func (tc *TithiCalculator) GetTithiForDate(ctx context.Context, date time.Time) (*TithiInfo, error) {
	return tc.GetTithiForDateWithCalendarSystem(ctx, date, "Purnimanta")
}

// GetTithiForDateWithCalendarSystem calculates the Tithi for a given date with specified calendar system
func (tc *TithiCalculator) GetTithiForDateWithCalendarSystem(ctx context.Context, date time.Time, calendarSystem string) (*TithiInfo, error) {
	ctx, span := tc.observer.CreateSpan(ctx, "TithiCalculator.GetTithiForDateWithCalendarSystem")
	defer span.End()

	span.SetAttributes(
		attribute.String("date", date.Format("2006-01-02")),
		attribute.String("timezone", date.Location().String()),
		attribute.String("calendar_system", calendarSystem),
	)

	noonDate := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	jd := ephemeris.TimeToJulianDay(noonDate)

	span.SetAttributes(attribute.Float64("julian_day", float64(jd)))

	ctx, posSpan := tc.observer.CreateSpan(ctx, "getTithiPositions")
	positions, err := tc.ephemerisManager.GetPlanetaryPositions(ctx, jd)
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

	tithi, err := tc.calculateTithiFromLongitudes(ctx, sunLong, moonLong, float64(jd), calendarSystem)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("tithi_number", tithi.Number),
		attribute.String("tithi_name", tithi.Name),
		attribute.String("paksha", tithi.Paksha),
		attribute.Int("paksha_day", tithi.PakshaDay),
		attribute.String("traditional_name", tithi.TraditionalName),
		attribute.String("tithi_type", string(tithi.Type)),
		attribute.Bool("is_shukla", tithi.IsShukla),
		attribute.Float64("moon_sun_diff", tithi.MoonSunDiff),
		attribute.String("calendar_system", tithi.CalendarSystem),
		attribute.Float64("end_jd", tithi.EndJD),
	)

	span.AddEvent("Tithi calculated", trace.WithAttributes(
		attribute.Int("tithi_number", tithi.Number),
		attribute.String("tithi_name", tithi.Name),
		attribute.String("paksha", tithi.Paksha),
		attribute.String("traditional_name", tithi.TraditionalName),
		attribute.String("tithi_type", string(tithi.Type)),
	))

	return tithi, nil
}

// calculateTithiFromLongitudes calculates Tithi from Sun and Moon longitudes at referenceJD
func (tc *TithiCalculator) calculateTithiFromLongitudes(ctx context.Context, sunLong, moonLong, referenceJD float64, calendarSystem string) (*TithiInfo, error) {
	ctx, span := tc.observer.CreateSpan(ctx, "TithiCalculator.calculateTithiFromLongitudes")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("sun_longitude", sunLong),
		attribute.Float64("moon_longitude", moonLong),
		attribute.String("calendar_system", calendarSystem),
	)

	moonSunDiff := math.Mod(moonLong-sunLong+360, 360)

	span.SetAttributes(attribute.Float64("normalized_moon_sun_diff", moonSunDiff))

	tithiFloat := moonSunDiff / tithiSpanDegrees
	baseTithiNumber := int(tithiFloat) + 1

	if baseTithiNumber > 30 {
		baseTithiNumber = 30
	}
	if baseTithiNumber < 1 {
		baseTithiNumber = 1
	}

	span.SetAttributes(
		attribute.Float64("tithi_float", tithiFloat),
		attribute.Int("base_tithi_number", baseTithiNumber),
	)

	var tithiNumber, pakshaDay int
	var paksha string
	var isShukla bool
	var traditionalName string

	if calendarSystem == "Amanta" {
		if baseTithiNumber <= 15 {
			isShukla = true
			paksha = "Shukla"
			pakshaDay = baseTithiNumber
			tithiNumber = baseTithiNumber
		} else {
			isShukla = false
			paksha = "Krishna"
			pakshaDay = baseTithiNumber - 15
			tithiNumber = baseTithiNumber
		}

		if pakshaDay == 15 && !isShukla {
			traditionalName = "Amavasya"
		} else {
			traditionalName = PakshaNames[pakshaDay]
		}
	} else {
		if baseTithiNumber <= 15 {
			isShukla = true
			paksha = "Shukla"
			pakshaDay = baseTithiNumber
		} else {
			isShukla = false
			paksha = "Krishna"
			pakshaDay = baseTithiNumber - 15
		}
		tithiNumber = baseTithiNumber
		traditionalName = TraditionalTithiNames[baseTithiNumber]
	}

	tithiName := TithiNames[baseTithiNumber]
	nextTithiNumber := tithiNumber + 1
	if nextTithiNumber > 30 {
		nextTithiNumber = 1
	}
	nextName := TithiNames[nextTithiNumber]

	tithiType := getTithiType(pakshaDay)

	endJD, err := tc.findTithiEndJD(ctx, referenceJD, baseTithiNumber)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to locate tithi end: %w", err)
	}

	tithi := &TithiInfo{
		Number:          tithiNumber,
		Name:            tithiName,
		Type:            tithiType,
		EndJD:           endJD,
		NextName:        nextName,
		IsShukla:        isShukla,
		Paksha:          paksha,
		PakshaDay:       pakshaDay,
		TraditionalName: traditionalName,
		MoonSunDiff:     moonSunDiff,
		CalendarSystem:  calendarSystem,
	}

	span.AddEvent("Tithi calculation completed", trace.WithAttributes(
		attribute.Int("tithi_number", tithiNumber),
		attribute.String("tithi_name", tithiName),
		attribute.String("traditional_name", traditionalName),
		attribute.String("paksha", paksha),
		attribute.Int("paksha_day", pakshaDay),
		attribute.Float64("end_jd", endJD),
	))

	return tithi, nil
}

// findTithiEndJD locates the Julian day at which the elongation crosses the
// upper boundary of the current Tithi (baseTithiNumber * 12 degrees), via
// bracketed bisection over a two-day window starting at referenceJD.
func (tc *TithiCalculator) findTithiEndJD(ctx context.Context, referenceJD float64, baseTithiNumber int) (float64, error) {
	targetElongation := math.Mod(float64(baseTithiNumber)*tithiSpanDegrees, 360)

	elongationAt := func(jd float64) (float64, error) {
		sun, moon, err := tc.ephemerisManager.SunMoon(ctx, ephemeris.JulianDay(jd))
		if err != nil {
			return 0, err
		}
		return math.Mod(moon-sun+360, 360), nil
	}

	return solver.FindCrossing(ctx, referenceJD, referenceJD+2, targetElongation, elongationAt, solver.DefaultTolerance)
}

// getTithiType returns the type/category of a Tithi
func getTithiType(tithiNumber int) TithiType {
	normalizedTithi := tithiNumber
	if normalizedTithi > 15 {
		normalizedTithi = normalizedTithi - 15
	}

	switch normalizedTithi {
	case 1, 6, 11:
		return TithiTypeNanda
	case 2, 7, 12:
		return TithiTypeBhadra
	case 3, 8, 13:
		return TithiTypeJaya
	case 4, 9, 14:
		return TithiTypeRikta
	case 5, 10, 15:
		return TithiTypePurna
	default:
		return TithiTypeNanda
	}
}

// GetTithiFromLongitudes is a convenience function for direct longitude input with default Purnimanta system
func (tc *TithiCalculator) GetTithiFromLongitudes(ctx context.Context, sunLong, moonLong float64, jd float64) (*TithiInfo, error) {
	return tc.GetTithiFromLongitudesWithCalendarSystem(ctx, sunLong, moonLong, jd, "Purnimanta")
}

// GetTithiFromLongitudesWithCalendarSystem is a convenience function for direct longitude input with specified calendar system
func (tc *TithiCalculator) GetTithiFromLongitudesWithCalendarSystem(ctx context.Context, sunLong, moonLong float64, jd float64, calendarSystem string) (*TithiInfo, error) {
	ctx, span := tc.observer.CreateSpan(ctx, "TithiCalculator.GetTithiFromLongitudesWithCalendarSystem")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("sun_longitude", sunLong),
		attribute.Float64("moon_longitude", moonLong),
		attribute.Float64("julian_day", jd),
		attribute.String("calendar_system", calendarSystem),
	)

	return tc.calculateTithiFromLongitudes(ctx, sunLong, moonLong, jd, calendarSystem)
}

// GetTithiTypeDescription returns a description of the Tithi type
func GetTithiTypeDescription(tithiType TithiType) string {
	switch tithiType {
	case TithiTypeNanda:
		return "Joyful, good for celebrations and new beginnings"
	case TithiTypeBhadra:
		return "Auspicious, good for all activities"
	case TithiTypeJaya:
		return "Victorious, good for achieving success"
	case TithiTypeRikta:
		return "Empty, avoid starting new ventures"
	case TithiTypePurna:
		return "Complete, excellent for completion of tasks"
	default:
		return "Unknown Tithi type"
	}
}

// ValidateTithiCalculation validates a Tithi calculation result
func ValidateTithiCalculation(tithi *TithiInfo) error {
	if tithi == nil {
		return fmt.Errorf("tithi cannot be nil")
	}

	if tithi.Number < 1 || tithi.Number > 30 {
		return fmt.Errorf("invalid tithi number: %d, must be between 1 and 30", tithi.Number)
	}

	if tithi.PakshaDay < 1 || tithi.PakshaDay > 15 {
		return fmt.Errorf("invalid paksha day: %d, must be between 1 and 15", tithi.PakshaDay)
	}

	if tithi.Paksha != "Shukla" && tithi.Paksha != "Krishna" {
		return fmt.Errorf("invalid paksha: %s, must be Shukla or Krishna", tithi.Paksha)
	}

	if (tithi.Paksha == "Shukla") != (tithi.Number <= 15) {
		return fmt.Errorf("paksha %s inconsistent with tithi number %d", tithi.Paksha, tithi.Number)
	}

	if tithi.CalendarSystem != "Purnimanta" && tithi.CalendarSystem != "Amanta" {
		return fmt.Errorf("invalid calendar system: %s, must be Purnimanta or Amanta", tithi.CalendarSystem)
	}

	if tithi.MoonSunDiff < 0 || tithi.MoonSunDiff >= 360 {
		return fmt.Errorf("invalid moon-sun difference: %f, must be between 0 and 360 degrees", tithi.MoonSunDiff)
	}

	if tithi.Name == "" || tithi.TraditionalName == "" || tithi.NextName == "" {
		return fmt.Errorf("tithi names cannot be empty")
	}

	return nil
}
