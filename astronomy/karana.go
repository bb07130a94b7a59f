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

// KaranaType represents the category of Karana
type KaranaType string

const (
	KaranaTypeMovable KaranaType = "movable"
	KaranaTypeFixed   KaranaType = "fixed"
)

// karanaSlotSpanDegrees is the elongation width of one Karana slot (half-Tithi).
const karanaSlotSpanDegrees = 6.0

// KaranaInfo represents a Karana with its properties
type KaranaInfo struct {
	Number      int        `json:"number"`        // 1-11
	Name        string     `json:"name"`          // Sanskrit name
	Type        KaranaType `json:"type"`          // movable or fixed
	Description string     `json:"description"`   // Meaning and effects
	IsVishti    bool       `json:"is_vishti"`     // Special flag for Vishti (Bhadra) karana
	EndJD       float64    `json:"end_jd"`        // Julian day at which this Karana ends
	NextName    string     `json:"next_name"`     // Name of the following Karana
	MoonSunDiff float64    `json:"moon_sun_diff"` // Moon longitude - Sun longitude in degrees
	Slot        int        `json:"slot"`          // 1-60 half-tithi slot within the lunation
}

// KaranaCalculator handles Karana calculations
type KaranaCalculator struct {
	ephemerisManager *ephemeris.Manager
	observer         observability.ObserverInterface
}

// NewKaranaCalculator creates a new KaranaCalculator
func NewKaranaCalculator(ephemerisManager *ephemeris.Manager) *KaranaCalculator {
	return &KaranaCalculator{
		ephemerisManager: ephemerisManager,
		observer:         observability.Observer(),
	}
}

// KaranaData contains detailed information about each of the 11 distinct Karanas.
var KaranaData = map[int]struct {
	Name        string
	Type        KaranaType
	Description string
	IsVishti    bool
}{
	1:  {"Kimstughna", KaranaTypeFixed, "Destroyer of insects, good for destroying enemies", false},
	2:  {"Bava", KaranaTypeMovable, "Child-like, good for creative and joyful activities", false},
	3:  {"Balava", KaranaTypeMovable, "Strong and powerful, good for strength-based activities", false},
	4:  {"Kaulava", KaranaTypeMovable, "Of the family, good for family-related activities", false},
	5:  {"Taitila", KaranaTypeMovable, "Sesame seed, good for detailed work", false},
	6:  {"Gara", KaranaTypeMovable, "Poison, avoid important activities", false},
	7:  {"Vanija", KaranaTypeMovable, "Merchant, good for business and trade", false},
	8:  {"Vishti", KaranaTypeMovable, "Obstruction, very inauspicious - avoid all important work", true},
	9:  {"Shakuni", KaranaTypeFixed, "Bird of ill omen, inauspicious", false},
	10: {"Chatushpada", KaranaTypeFixed, "Four-footed, stable and grounding", false},
	11: {"Naga", KaranaTypeFixed, "Serpent, mysterious and transformative", false},
}

// karanaIndexForSlot maps a 1..60 half-tithi slot to its 1..11 Karana index,
// per the fixed invariant: slot 1 is Kimstughna, slots 58-60 are Shakuni/
// Chatushpada/Naga, and slots 2-57 cycle through the 7 movable Karanas
// starting at Bava in slot 2.
func karanaIndexForSlot(slot int) int {
	switch slot {
	case 1:
		return 1 // Kimstughna
	case 58:
		return 9 // Shakuni
	case 59:
		return 10 // Chatushpada
	case 60:
		return 11 // Naga
	default:
		cycleIndex := (slot - 2) % 7
		return 2 + cycleIndex // Bava..Vishti
	}
}

// GetKaranaForDate calculates the Karana for a given date
func (kc *KaranaCalculator) GetKaranaForDate(ctx context.Context, date time.Time) (*KaranaInfo, error) {
	ctx, span := kc.observer.CreateSpan(ctx, "KaranaCalculator.GetKaranaForDate")
	defer span.End()

	span.SetAttributes(
		attribute.String("date", date.Format("2006-01-02")),
		attribute.String("timezone", date.Location().String()),
	)

	noonDate := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	jd := ephemeris.TimeToJulianDay(noonDate)

	span.SetAttributes(attribute.Float64("julian_day", float64(jd)))

	sun, moon, err := kc.ephemerisManager.SunMoon(ctx, jd)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get sun/moon longitudes: %w", err)
	}

	karana, err := kc.calculateKaranaFromLongitudes(ctx, sun, moon, float64(jd))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("karana_number", karana.Number),
		attribute.String("karana_name", karana.Name),
		attribute.String("karana_type", string(karana.Type)),
		attribute.Bool("is_vishti", karana.IsVishti),
		attribute.Int("slot", karana.Slot),
		attribute.Float64("moon_sun_diff", karana.MoonSunDiff),
	)

	span.AddEvent("Karana calculated", trace.WithAttributes(
		attribute.Int("karana_number", karana.Number),
		attribute.String("karana_name", karana.Name),
		attribute.Bool("is_vishti", karana.IsVishti),
	))

	return karana, nil
}

// calculateKaranaFromLongitudes calculates Karana directly from the elongation
// between Moon and Sun, per the 60-slot partition.
func (kc *KaranaCalculator) calculateKaranaFromLongitudes(ctx context.Context, sunLong, moonLong, referenceJD float64) (*KaranaInfo, error) {
	ctx, span := kc.observer.CreateSpan(ctx, "KaranaCalculator.calculateKaranaFromLongitudes")
	defer span.End()

	moonSunDiff := math.Mod(moonLong-sunLong+360, 360)

	span.SetAttributes(
		attribute.Float64("sun_longitude", sunLong),
		attribute.Float64("moon_longitude", moonLong),
		attribute.Float64("moon_sun_diff", moonSunDiff),
	)

	slot := int(moonSunDiff/karanaSlotSpanDegrees) + 1
	if slot > 60 {
		slot = 60
	}
	if slot < 1 {
		slot = 1
	}

	karanaNumber := karanaIndexForSlot(slot)
	karanaDetails := KaranaData[karanaNumber]

	nextSlot := slot + 1
	if nextSlot > 60 {
		nextSlot = 1
	}
	nextName := KaranaData[karanaIndexForSlot(nextSlot)].Name

	span.SetAttributes(
		attribute.Int("slot", slot),
		attribute.Int("karana_number", karanaNumber),
		attribute.String("karana_name", karanaDetails.Name),
	)

	endJD, err := kc.findKaranaEndJD(ctx, referenceJD, slot)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to locate karana end: %w", err)
	}

	karana := &KaranaInfo{
		Number:      karanaNumber,
		Name:        karanaDetails.Name,
		Type:        karanaDetails.Type,
		Description: karanaDetails.Description,
		IsVishti:    karanaDetails.IsVishti,
		EndJD:       endJD,
		NextName:    nextName,
		MoonSunDiff: moonSunDiff,
		Slot:        slot,
	}

	span.AddEvent("Karana calculation completed", trace.WithAttributes(
		attribute.Int("karana_number", karanaNumber),
		attribute.String("karana_name", karanaDetails.Name),
		attribute.Bool("is_vishti", karanaDetails.IsVishti),
		attribute.Float64("end_jd", endJD),
	))

	return karana, nil
}

// findKaranaEndJD locates the Julian day at which the elongation crosses the
// upper boundary of the current 6° slot, bracketed over a single day.
func (kc *KaranaCalculator) findKaranaEndJD(ctx context.Context, referenceJD float64, slot int) (float64, error) {
	targetElongation := math.Mod(float64(slot)*karanaSlotSpanDegrees, 360)

	elongationAt := func(jd float64) (float64, error) {
		sun, moon, err := kc.ephemerisManager.SunMoon(ctx, ephemeris.JulianDay(jd))
		if err != nil {
			return 0, err
		}
		return math.Mod(moon-sun+360, 360), nil
	}

	return solver.FindCrossing(ctx, referenceJD, referenceJD+1, targetElongation, elongationAt, solver.DefaultTolerance)
}

// GetKaranaFromLongitudes is a convenience function for direct longitude input
func (kc *KaranaCalculator) GetKaranaFromLongitudes(ctx context.Context, sunLong, moonLong float64, jd float64) (*KaranaInfo, error) {
	ctx, span := kc.observer.CreateSpan(ctx, "KaranaCalculator.GetKaranaFromLongitudes")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("sun_longitude", sunLong),
		attribute.Float64("moon_longitude", moonLong),
		attribute.Float64("julian_day", jd),
	)

	return kc.calculateKaranaFromLongitudes(ctx, sunLong, moonLong, jd)
}

// IsAuspiciousKarana returns true if the Karana is considered auspicious
func IsAuspiciousKarana(karana *KaranaInfo) bool {
	if karana.IsVishti || karana.Name == "Gara" || karana.Name == "Shakuni" {
		return false
	}
	return true
}

// GetKaranaTypeDescription returns a description of the Karana type
func GetKaranaTypeDescription(karanaType KaranaType) string {
	switch karanaType {
	case KaranaTypeMovable:
		return "Movable Karana - cycles through the lunar month, each has specific qualities"
	case KaranaTypeFixed:
		return "Fixed Karana - appears in specific positions during new moon and first tithi"
	default:
		return "Unknown karana type"
	}
}

// GetKaranaRecommendations returns recommendations based on the Karana
func GetKaranaRecommendations(karana *KaranaInfo) string {
	switch karana.Name {
	case "Vishti":
		return "Avoid all important activities, travel, and new ventures. Time for rest and introspection."
	case "Gara":
		return "Avoid important activities. Not favorable for new beginnings."
	case "Shakuni":
		return "Inauspicious time. Avoid important decisions and activities."
	case "Bava":
		return "Good time for creative activities, learning, and joyful pursuits."
	case "Balava":
		return "Favorable for activities requiring strength and determination."
	case "Kaulava":
		return "Good for family-related activities and domestic affairs."
	case "Vanija":
		return "Excellent time for business, trade, and commercial activities."
	case "Taitila":
		return "Good for detailed work, craftsmanship, and precision tasks."
	case "Kimstughna":
		return "Favorable for activities that require removing obstacles or enemies."
	case "Chatushpada":
		return "Stable and grounding energy. Good for foundational work."
	case "Naga":
		return "Mysterious energy. Good for spiritual practices and transformation."
	default:
		return "General karana with moderate influence."
	}
}

// ValidateKaranaCalculation validates a Karana calculation result
func ValidateKaranaCalculation(karana *KaranaInfo) error {
	if karana == nil {
		return fmt.Errorf("karana cannot be nil")
	}

	if karana.Number < 1 || karana.Number > 11 {
		return fmt.Errorf("invalid karana number: %d, must be between 1 and 11", karana.Number)
	}

	if karana.Slot < 1 || karana.Slot > 60 {
		return fmt.Errorf("invalid karana slot: %d, must be between 1 and 60", karana.Slot)
	}

	if karana.MoonSunDiff < 0 || karana.MoonSunDiff >= 360 {
		return fmt.Errorf("invalid moon-sun difference: %f, must be between 0 and 360 degrees", karana.MoonSunDiff)
	}

	if karana.Name == "" || karana.NextName == "" {
		return fmt.Errorf("karana name cannot be empty")
	}

	switch karana.Type {
	case KaranaTypeMovable, KaranaTypeFixed:
		// valid
	default:
		return fmt.Errorf("invalid karana type: %s", karana.Type)
	}

	return nil
}
