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

// tamilMonthSpanDegrees is the sidereal Sun longitude width of one Tamil
// solar month. Month 1, Chithirai, begins when the Sun enters sidereal
// longitude 0.
const tamilMonthSpanDegrees = 30.0

// TamilMonthNames lists the 12 Tamil solar months in order, index 1 = Chithirai.
var TamilMonthNames = map[int]string{
	1:  "Chithirai",
	2:  "Vaikasi",
	3:  "Aani",
	4:  "Aadi",
	5:  "Avani",
	6:  "Purattasi",
	7:  "Aippasi",
	8:  "Karthigai",
	9:  "Margazhi",
	10: "Thai",
	11: "Maasi",
	12: "Panguni",
}

// tamilYearNames lists the 60-year Jupiter-cycle names in cycle order,
// starting at Prabhava; tamilYearCycleAnchor gives the index for Gregorian
// year 2000.
var tamilYearNames = []string{
	"Prabhava", "Vibhava", "Shukla", "Pramoda", "Prajapati", "Angirasa",
	"Srimukha", "Bhava", "Yuva", "Dhatu", "Ishvara", "Bahudhanya",
	"Pramathi", "Vikrama", "Vishu", "Chitrabhanu", "Svabhanu", "Tarana",
	"Parthiva", "Vyaya", "Sarvajit", "Sarvadhari", "Virodhi", "Vikriti",
	"Khara", "Nandana", "Vijaya", "Jaya", "Manmatha", "Durmukhi",
	"Hevilambi", "Vilambi", "Vikari", "Sharvari", "Plava", "Shubhakrit",
	"Shobhakrit", "Krodhi", "Vishvavasu", "Parabhava", "Plavanga", "Kilaka",
	"Saumya", "Sadharana", "Virodhikrit", "Paridhavi", "Pramadicha", "Ananda",
	"Rakshasa", "Nala", "Pingala", "Kalayukti", "Siddharthi", "Raudri",
	"Durmati", "Dundubhi", "Rudhirodgari", "Raktakshi", "Krodhana", "Akshaya",
}

// tamilYearCycleAnchor is the 0-based index into tamilYearNames for
// Gregorian year 2000.
const tamilYearCycleAnchor = 23

// tamilEraOffset converts a Gregorian year to the corresponding Tamil
// (Kaliyuga-derived civil) year number.
const tamilEraOffset = 3101

// TamilDateMode selects the date-boundary rule for the first day of a Tamil
// month. With TamilDateModeSankranti (the default), the classical civil
// sankranti rule is used: if the Sun's sidereal longitude crosses a month
// boundary between sunrise and sunset of a civil day, that day is day 1 of
// the new month; otherwise day 1 falls on the following civil day. With
// TamilDateModeApproximate, a simplified degree-based approximation is used
// instead
// (day = floor(longitude mod 30) + 1), matching some published panchangams
// that do not apply the civil sankranti rule.
type TamilDateMode int

const (
	TamilDateModeSankranti TamilDateMode = iota
	TamilDateModeApproximate
)

// TamilDate holds the Tamil solar calendar reading for one civil day.
type TamilDate struct {
	MonthIndex int    `json:"month_index"` // 1-12
	MonthName  string `json:"month_name"`
	Day        int    `json:"day"`
	YearNumber int    `json:"year_number"`
	YearName   string `json:"year_name"`
}

// TamilCalendarCalculator derives the Tamil solar calendar date from the
// sidereal Sun longitude at sunrise.
type TamilCalendarCalculator struct {
	ephemerisManager *ephemeris.Manager
	mode             TamilDateMode
	observer         observability.ObserverInterface
}

// NewTamilCalendarCalculator creates a new TamilCalendarCalculator using the
// given date-boundary mode.
func NewTamilCalendarCalculator(ephemerisManager *ephemeris.Manager, mode TamilDateMode) *TamilCalendarCalculator {
	return &TamilCalendarCalculator{
		ephemerisManager: ephemerisManager,
		mode:             mode,
		observer:         observability.Observer(),
	}
}

func tamilMonthIndexForLongitude(sunLongitude float64) int {
	normalized := math.Mod(math.Mod(sunLongitude, 360)+360, 360)
	index := int(normalized/tamilMonthSpanDegrees) + 1
	if index > 12 {
		index = 12
	}
	return index
}

// Calculate derives the Tamil month/day/year for the civil day whose
// sunrise and sunset Julian days are given, using the sidereal Sun
// longitude at sunrise and (for the sankranti rule) at sunset, and the
// civil Gregorian year for the year-name cycle.
func (tc *TamilCalendarCalculator) Calculate(ctx context.Context, sunriseJD, sunsetJD ephemeris.JulianDay, gregorianYear int) (*TamilDate, error) {
	ctx, span := tc.observer.CreateSpan(ctx, "TamilCalendarCalculator.Calculate")
	defer span.End()

	sunAtSunrise, err := tc.ephemerisManager.GetSunPosition(ctx, sunriseJD)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get sun position at sunrise: %w", err)
	}

	monthIndex := tamilMonthIndexForLongitude(sunAtSunrise.Longitude)
	day := 1

	switch tc.mode {
	case TamilDateModeApproximate:
		normalized := math.Mod(math.Mod(sunAtSunrise.Longitude, tamilMonthSpanDegrees)+tamilMonthSpanDegrees, tamilMonthSpanDegrees)
		day = int(normalized) + 1
	default:
		sunAtSunset, err := tc.ephemerisManager.GetSunPosition(ctx, sunsetJD)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to get sun position at sunset: %w", err)
		}
		monthAtSunset := tamilMonthIndexForLongitude(sunAtSunset.Longitude)
		if monthAtSunset != monthIndex {
			// Sankranti occurred between sunrise and sunset: today is day 1
			// of the new month.
			monthIndex = monthAtSunset
		}

		sankrantiJD, err := tc.findSankrantiJD(ctx, monthIndex, sunsetJD)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to locate sankranti instant: %w", err)
		}
		day = int(float64(sunsetJD)-sankrantiJD) + 1
		if day < 1 {
			day = 1
		}
	}

	cycleIndex := (tamilYearCycleAnchor + (gregorianYear - 2000)) % 60
	if cycleIndex < 0 {
		cycleIndex += 60
	}

	result := &TamilDate{
		MonthIndex: monthIndex,
		MonthName:  TamilMonthNames[monthIndex],
		Day:        day,
		YearNumber: gregorianYear + tamilEraOffset,
		YearName:   tamilYearNames[cycleIndex],
	}

	span.SetAttributes(
		attribute.Int("tamil_month_index", result.MonthIndex),
		attribute.String("tamil_month_name", result.MonthName),
		attribute.Int("tamil_day", result.Day),
		attribute.Int("tamil_year_number", result.YearNumber),
		attribute.String("tamil_year_name", result.YearName),
	)
	span.AddEvent("Tamil date calculated", trace.WithAttributes(
		attribute.String("tamil_month_name", result.MonthName),
		attribute.Int("tamil_day", result.Day),
	))

	return result, nil
}

// findSankrantiJD locates the most recent Julian day at which the Sun's
// sidereal longitude crossed into the given Tamil month, searching back from
// sunsetJD across a window wide enough to contain one full month span even
// at the slowest point of the Sun's apparent annual motion.
func (tc *TamilCalendarCalculator) findSankrantiJD(ctx context.Context, monthIndex int, sunsetJD ephemeris.JulianDay) (float64, error) {
	target := float64(monthIndex-1) * tamilMonthSpanDegrees
	hi := float64(sunsetJD)
	lo := hi - tamilMonthSpanDegrees - 5.0

	angleFunc := func(jd float64) (float64, error) {
		sunPos, err := tc.ephemerisManager.GetSunPosition(ctx, ephemeris.JulianDay(jd))
		if err != nil {
			return 0, err
		}
		return sunPos.Longitude, nil
	}

	return solver.FindCrossing(ctx, lo, hi, target, angleFunc, solver.DefaultTolerance)
}

// ValidateTamilDate validates a TamilDate result.
func ValidateTamilDate(date *TamilDate) error {
	if date == nil {
		return fmt.Errorf("tamil date cannot be nil")
	}

	if date.MonthIndex < 1 || date.MonthIndex > 12 {
		return fmt.Errorf("invalid tamil month index: %d", date.MonthIndex)
	}

	if date.Day < 1 || date.Day > 31 {
		return fmt.Errorf("invalid tamil day: %d", date.Day)
	}

	if date.MonthName == "" || date.YearName == "" {
		return fmt.Errorf("tamil month/year name cannot be empty")
	}

	return nil
}
