package astronomy

import (
	"context"
	"fmt"
	"time"

	"github.com/kaalam/panchangam/astronomy/ephemeris"
	"github.com/kaalam/panchangam/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// daySegmentCount is the number of equal sub-intervals the sunrise-to-sunset
// span is partitioned into.
const daySegmentCount = 8

// DaySegment is one of the 8 equal sunrise-to-sunset sub-intervals.
type DaySegment struct {
	Index     int       `json:"index"` // 1-8
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	PlanetRuler string  `json:"planet_ruler"`
	Good      bool      `json:"good"`
}

// DaySegments holds the full day-segment partition and the named
// inauspicious/auspicious windows picked out of it.
type DaySegments struct {
	Segments    [daySegmentCount]*DaySegment `json:"segments"`
	RahuKalam   *DaySegment                  `json:"rahu_kalam"`
	Yamagandam  *DaySegment                  `json:"yamagandam"`
	KuligaiKalam *DaySegment                 `json:"kuligai_kalam"`
	GowriNeram  []*DaySegment                `json:"gowri_neram"`
	NallaNeram  []*DaySegment                `json:"nalla_neram"`
}

// These tables give the 1-8 segment index selected for each weekday, indexed
// 0=Sunday..6=Saturday.
var rahuKalamTable = [7]int{8, 2, 7, 5, 6, 4, 3}
var yamagandamTable = [7]int{5, 4, 3, 2, 1, 7, 6}
var kuligaiKalamTable = [7]int{7, 6, 5, 4, 3, 2, 1}

// gowriGoodSegments lists the segment indices considered auspicious (Gowri)
// for each weekday. Sunday/Tuesday/Thursday/Saturday share one pattern,
// Monday/Wednesday/Friday share the other.
var gowriGoodSegments = map[time.Weekday][]int{
	time.Sunday:    {1, 2, 5, 6},
	time.Tuesday:   {1, 2, 5, 6},
	time.Thursday:  {1, 2, 5, 6},
	time.Saturday:  {1, 2, 5, 6},
	time.Monday:    {3, 4, 7, 8},
	time.Wednesday: {3, 4, 7, 8},
	time.Friday:    {3, 4, 7, 8},
}

// segmentPlanetCycle is the fixed 8-entry planetary label cycle a segment's
// ruler is read off of. The offset applied per weekday is an undocumented
// classical convention, preserved as given.
var segmentPlanetCycle = [8]string{"Sun", "Venus", "Mercury", "Moon", "Saturn", "Jupiter", "Mars", "Rahu"}

// DaySegmentCalculator partitions the sunrise-to-sunset span into the 8
// traditional segments and picks out the named inauspicious/auspicious
// windows.
type DaySegmentCalculator struct {
	ephemerisManager *ephemeris.Manager
	observer         observability.ObserverInterface
}

// NewDaySegmentCalculator creates a new DaySegmentCalculator.
func NewDaySegmentCalculator(ephemerisManager *ephemeris.Manager) *DaySegmentCalculator {
	return &DaySegmentCalculator{
		ephemerisManager: ephemerisManager,
		observer:         observability.Observer(),
	}
}

// Calculate partitions the given sunrise/sunset window into 8 equal segments
// and derives Rahu Kalam, Yamagandam, Kuligai Kalam, Gowri Neram and Nalla
// Neram from the civil weekday of sunriseTime.
func (dc *DaySegmentCalculator) Calculate(ctx context.Context, sunriseTime, sunsetTime time.Time) (*DaySegments, error) {
	ctx, span := dc.observer.CreateSpan(ctx, "DaySegmentCalculator.Calculate")
	defer span.End()

	if !sunsetTime.After(sunriseTime) {
		err := fmt.Errorf("sunset %s must be after sunrise %s", sunsetTime, sunriseTime)
		span.RecordError(err)
		return nil, err
	}

	weekday := sunriseTime.Weekday()
	span.SetAttributes(attribute.String("weekday", weekday.String()))

	dayLength := sunsetTime.Sub(sunriseTime)
	segmentDuration := dayLength / daySegmentCount

	span.SetAttributes(
		attribute.Float64("day_length_hours", dayLength.Hours()),
		attribute.Float64("segment_duration_minutes", segmentDuration.Minutes()),
	)

	var segments [daySegmentCount]*DaySegment
	for i := 0; i < daySegmentCount; i++ {
		cycleIndex := (i + int(weekday)) % 8
		segments[i] = &DaySegment{
			Index:       i + 1,
			Start:       sunriseTime.Add(time.Duration(i) * segmentDuration),
			End:         sunriseTime.Add(time.Duration(i+1) * segmentDuration),
			PlanetRuler: segmentPlanetCycle[cycleIndex],
		}
	}

	goodSet := map[int]bool{}
	for _, idx := range gowriGoodSegments[weekday] {
		goodSet[idx] = true
	}
	for _, seg := range segments {
		seg.Good = goodSet[seg.Index]
	}

	result := &DaySegments{
		Segments:     segments,
		RahuKalam:    segments[rahuKalamTable[int(weekday)]-1],
		Yamagandam:   segments[yamagandamTable[int(weekday)]-1],
		KuligaiKalam: segments[kuligaiKalamTable[int(weekday)]-1],
	}

	for _, seg := range segments {
		result.GowriNeram = append(result.GowriNeram, seg)
		if seg.Good {
			result.NallaNeram = append(result.NallaNeram, seg)
		}
	}

	span.AddEvent("Day segments calculated", trace.WithAttributes(
		attribute.String("rahu_kalam", fmt.Sprintf("%d", result.RahuKalam.Index)),
		attribute.String("yamagandam", fmt.Sprintf("%d", result.Yamagandam.Index)),
		attribute.String("kuligai_kalam", fmt.Sprintf("%d", result.KuligaiKalam.Index)),
		attribute.Int("nalla_neram_count", len(result.NallaNeram)),
	))

	return result, nil
}

// ValidateDaySegments checks that the 8 segments exactly tile the
// sunrise-to-sunset window with no gaps or overlaps.
func ValidateDaySegments(segments *DaySegments, sunrise, sunset time.Time) error {
	if segments == nil {
		return fmt.Errorf("day segments cannot be nil")
	}

	if !segments.Segments[0].Start.Equal(sunrise) {
		return fmt.Errorf("first segment must start at sunrise")
	}
	if !segments.Segments[daySegmentCount-1].End.Equal(sunset) {
		return fmt.Errorf("last segment must end at sunset")
	}

	for i := 1; i < daySegmentCount; i++ {
		if !segments.Segments[i].Start.Equal(segments.Segments[i-1].End) {
			return fmt.Errorf("segment %d does not start where segment %d ends", i+1, i)
		}
	}

	return nil
}
