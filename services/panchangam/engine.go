package panchangam

import (
	"context"
	"fmt"
	"time"

	"github.com/kaalam/panchangam/astronomy"
	"github.com/kaalam/panchangam/astronomy/ephemeris"
	"github.com/kaalam/panchangam/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Request describes one day's panchangam request for a civil location.
type Request struct {
	Date          time.Time // civil date; only year/month/day are used
	Zone          *time.Location
	Latitude      float64
	Longitude     float64
	TamilDateMode astronomy.TamilDateMode

	// BirthNakshatra, when non-nil, enables the Chandrashtama sub-engine
	// for this request, using the given 1-27 birth Nakshatra index.
	BirthNakshatra *int
}

// DailyReport is the complete panchangam reading for one civil day at one
// location.
type DailyReport struct {
	Date       time.Time
	Sunrise    time.Time
	Sunset     time.Time
	Incomplete bool // true when no sunrise/sunset event occurred (polar day/night)

	TamilDate *astronomy.TamilDate

	Tithi     *astronomy.TithiInfo
	Nakshatra *astronomy.NakshatraInfo
	Yoga      *astronomy.YogaInfo
	Karana    *astronomy.KaranaInfo
	MoonRasi  *astronomy.RasiInfo

	Vara *astronomy.VaraInfo

	LagnamIntervals []*astronomy.LagnamInterval
	DaySegments     *astronomy.DaySegments

	Festivals []astronomy.FestivalMatch

	Chandrashtama *astronomy.ChandrashtamaInfo
}

// Engine computes panchangam daily reports. It is stateless and safe for
// concurrent use by multiple goroutines handling independent requests.
type Engine struct {
	ephemerisManager *ephemeris.Manager

	tithiCalc         *astronomy.TithiCalculator
	nakshatraCalc     *astronomy.NakshatraCalculator
	yogaCalc          *astronomy.YogaCalculator
	karanaCalc        *astronomy.KaranaCalculator
	rasiCalc          *astronomy.RasiCalculator
	daySegmentCalc    *astronomy.DaySegmentCalculator
	lagnamCalc        *astronomy.LagnamCalculator
	chandrashtamaCalc *astronomy.ChandrashtamaCalculator
	varaCalc          *astronomy.VaraCalculator
	festivalMatcher   *astronomy.FestivalMatcher

	resultCache ResultCache

	observer observability.ObserverInterface
}

// NewEngine wires an Engine around the given ephemeris manager. Custom
// festival rule tables may be supplied via festivalMatcher; pass nil to use
// the built-in defaults.
func NewEngine(ephemerisManager *ephemeris.Manager, festivalMatcher *astronomy.FestivalMatcher) *Engine {
	if festivalMatcher == nil {
		festivalMatcher = astronomy.NewFestivalMatcher(nil, nil, nil)
	}

	return &Engine{
		ephemerisManager:  ephemerisManager,
		tithiCalc:         astronomy.NewTithiCalculator(ephemerisManager),
		nakshatraCalc:     astronomy.NewNakshatraCalculator(ephemerisManager),
		yogaCalc:          astronomy.NewYogaCalculator(ephemerisManager),
		karanaCalc:        astronomy.NewKaranaCalculator(ephemerisManager),
		rasiCalc:          astronomy.NewRasiCalculator(ephemerisManager),
		daySegmentCalc:    astronomy.NewDaySegmentCalculator(ephemerisManager),
		lagnamCalc:        astronomy.NewLagnamCalculator(ephemerisManager),
		chandrashtamaCalc: astronomy.NewChandrashtamaCalculator(ephemerisManager),
		varaCalc:          astronomy.NewVaraCalculator(),
		festivalMatcher:   festivalMatcher,
		observer:          observability.Observer(),
	}
}

// Daily computes the full panchangam report for the given request.
func (e *Engine) Daily(ctx context.Context, req Request) (*DailyReport, error) {
	ctx, span := e.observer.CreateSpan(ctx, "Engine.Daily")
	defer span.End()

	if req.Zone == nil {
		err := fmt.Errorf("invalid input: zone cannot be nil")
		span.RecordError(err)
		return nil, err
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		err := fmt.Errorf("invalid input: latitude %f out of range", req.Latitude)
		span.RecordError(err)
		return nil, err
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		err := fmt.Errorf("invalid input: longitude %f out of range", req.Longitude)
		span.RecordError(err)
		return nil, err
	}

	civilDate := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Zone)
	noonJD := ephemeris.TimeToJulianDay(time.Date(civilDate.Year(), civilDate.Month(), civilDate.Day(), 12, 0, 0, 0, req.Zone))

	span.SetAttributes(
		attribute.String("date", civilDate.Format("2006-01-02")),
		attribute.Float64("latitude", req.Latitude),
		attribute.Float64("longitude", req.Longitude),
	)

	riseSet, err := e.ephemerisManager.RiseSet(ctx, noonJD, req.Latitude, req.Longitude)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ephemeris failure computing sunrise/sunset at jd %f: %w", noonJD, err)
	}

	report := &DailyReport{
		Date:       civilDate,
		Sunrise:    ephemeris.JulianDayToTime(riseSet.SunriseJD).In(req.Zone),
		Sunset:     ephemeris.JulianDayToTime(riseSet.SunsetJD).In(req.Zone),
		Incomplete: !riseSet.HasEvent,
	}

	if !riseSet.HasEvent {
		span.AddEvent("No diurnal event; report will be marked incomplete")
		return report, nil
	}

	sunriseJD := riseSet.SunriseJD

	tamilCalc := astronomy.NewTamilCalendarCalculator(e.ephemerisManager, req.TamilDateMode)
	tamilDate, err := tamilCalc.Calculate(ctx, sunriseJD, riseSet.SunsetJD, civilDate.Year())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to compute tamil date: %w", err)
	}
	report.TamilDate = tamilDate

	sun, moon, err := e.ephemerisManager.SunMoon(ctx, sunriseJD)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get sun/moon longitudes: %w", err)
	}

	tithi, err := e.tithiCalc.GetTithiFromLongitudesWithCalendarSystem(ctx, sun, moon, float64(sunriseJD), "Amanta")
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to compute tithi: %w", err)
	}
	report.Tithi = tithi

	nakshatra, err := e.nakshatraGetAt(ctx, sunriseJD)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	report.Nakshatra = nakshatra

	yoga, err := e.yogaCalc.GetYogaFromLongitudes(ctx, sun, moon, float64(sunriseJD))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to compute yoga: %w", err)
	}
	report.Yoga = yoga

	karana, err := e.karanaCalc.GetKaranaFromLongitudes(ctx, sun, moon, float64(sunriseJD))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to compute karana: %w", err)
	}
	report.Karana = karana

	moonRasi, err := e.rasiCalc.MoonRasi(ctx, sunriseJD)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to compute moon rasi: %w", err)
	}
	report.MoonRasi = moonRasi

	nextNoonJD := ephemeris.TimeToJulianDay(time.Date(civilDate.Year(), civilDate.Month(), civilDate.Day()+1, 12, 0, 0, 0, req.Zone))
	nextRiseSet, err := e.ephemerisManager.RiseSet(ctx, nextNoonJD, req.Latitude, req.Longitude)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ephemeris failure computing next sunrise at jd %f: %w", nextNoonJD, err)
	}
	nextSunrise := ephemeris.JulianDayToTime(nextRiseSet.SunriseJD).In(req.Zone)

	vara, err := e.varaCalc.GetVaraFromGregorianDay(ctx, report.Sunrise.Weekday(), report.Sunrise, nextSunrise, report.Sunrise)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to compute vara: %w", err)
	}
	report.Vara = vara

	lagnamIntervals, err := e.lagnamCalc.Scan(ctx, sunriseJD, req.Latitude, req.Longitude)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to scan lagnam: %w", err)
	}
	report.LagnamIntervals = lagnamIntervals

	daySegments, err := e.daySegmentCalc.Calculate(ctx, report.Sunrise, report.Sunset)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to compute day segments: %w", err)
	}
	report.DaySegments = daySegments

	report.Festivals = e.festivalMatcher.Match(ctx, tithi.Number, nakshatra.Number, tamilDate.MonthIndex, int(civilDate.Month()), civilDate.Day())

	if req.BirthNakshatra != nil {
		chandrashtama, err := e.chandrashtamaCalc.Calculate(ctx, *req.BirthNakshatra, sunriseJD)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to compute chandrashtama: %w", err)
		}
		report.Chandrashtama = chandrashtama
	}

	span.AddEvent("Daily report assembled", trace.WithAttributes(
		attribute.String("tithi", tithi.Name),
		attribute.String("nakshatra", nakshatra.Name),
		attribute.String("yoga", yoga.Name),
		attribute.String("karana", karana.Name),
		attribute.Int("festival_count", len(report.Festivals)),
	))

	return report, nil
}

func (e *Engine) nakshatraGetAt(ctx context.Context, jd ephemeris.JulianDay) (*astronomy.NakshatraInfo, error) {
	moonPos, err := e.ephemerisManager.GetMoonPosition(ctx, jd)
	if err != nil {
		return nil, fmt.Errorf("failed to get moon position: %w", err)
	}
	return e.nakshatraCalc.GetNakshatraFromLongitude(ctx, moonPos.Longitude, float64(jd))
}
