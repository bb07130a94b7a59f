package ephemeris

import (
	"context"
	"fmt"
	"math"
	"time"

	swe "github.com/tejzpr/go-swisseph"

	"github.com/kaalam/panchangam/observability"
	"go.opentelemetry.io/otel/attribute"
)

// planetCodes maps the PlanetaryPositions struct fields to Swiss Ephemeris
// body numbers, in the order the positions are assembled.
var planetCodes = []struct {
	name string
	code int32
}{
	{"sun", swe.Sun},
	{"moon", swe.Moon},
	{"mercury", swe.Mercury},
	{"venus", swe.Venus},
	{"mars", swe.Mars},
	{"jupiter", swe.Jupiter},
	{"saturn", swe.Saturn},
	{"uranus", swe.Uranus},
	{"neptune", swe.Neptune},
	{"pluto", swe.Pluto},
}

// SwissEphemerisProvider implements EphemerisProvider on top of the real
// Swiss Ephemeris C library, configured for the Lahiri (Chitrapaksha)
// ayanamsa. This is the primary provider; AnalyticProvider is the fallback
// when the shared library or its data files are unavailable.
type SwissEphemerisProvider struct {
	name            string
	version         string
	ephePath        string
	dataStartJD     JulianDay
	dataEndJD       JulianDay
	observer        observability.ObserverInterface
	healthStatus    *HealthStatus
	lastHealthCheck time.Time
}

// NewSwissEphemerisProvider configures the Swiss Ephemeris library for
// sidereal Lahiri calculations. ephePath may be empty to use the library's
// built-in Moshier approximation when no .se1 data files are installed.
func NewSwissEphemerisProvider(ephePath string) *SwissEphemerisProvider {
	swe.SetEphePath(ephePath)
	swe.SetSidMode(swe.SidmLahiri, 0, 0)

	now := time.Now()

	return &SwissEphemerisProvider{
		name:        "Swiss Ephemeris",
		version:     swe.Version(),
		ephePath:    ephePath,
		dataStartJD: JulianDay(625000.0),  // approx 3000 BCE, Moshier floor
		dataEndJD:   JulianDay(2820000.0), // approx 3000 CE, Moshier ceiling
		observer:    observability.Observer(),
		healthStatus: &HealthStatus{
			Available: true,
			LastCheck: now,
			Version:   swe.Version(),
			Source:    "Swiss Ephemeris",
		},
		lastHealthCheck: now,
	}
}

// calcFlag is the default sidereal calculation flag: Swiss Ephemeris/Moshier
// series with sidereal zodiac reduction baked in by the library (ayanamsa
// applied internally once SetSidMode has been called).
const calcFlag = swe.FlagSwieph | swe.FlagSidereal

func (s *SwissEphemerisProvider) positionFromResult(name string, r swe.CalcResult) (Position, error) {
	if r.Flag < 0 {
		return Position{}, fmt.Errorf("swisseph calc failed for %s: %s", name, r.Error)
	}
	if len(r.Data) < 4 {
		return Position{}, fmt.Errorf("swisseph calc returned short data for %s", name)
	}
	return Position{
		Longitude: math.Mod(r.Data[0]+360, 360),
		Latitude:  r.Data[1],
		Distance:  r.Data[2],
		Speed:     r.Data[3],
	}, nil
}

// GetPlanetaryPositions returns sidereal positions of all planets for a given Julian day
func (s *SwissEphemerisProvider) GetPlanetaryPositions(ctx context.Context, jd JulianDay) (*PlanetaryPositions, error) {
	ctx, span := s.observer.CreateSpan(ctx, "swisseph.GetPlanetaryPositions")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", s.name),
		attribute.Float64("julian_day", float64(jd)),
	)

	positions := &PlanetaryPositions{JulianDay: jd}
	fields := []*Position{
		&positions.Sun, &positions.Moon, &positions.Mercury, &positions.Venus,
		&positions.Mars, &positions.Jupiter, &positions.Saturn, &positions.Uranus,
		&positions.Neptune, &positions.Pluto,
	}

	for i, pc := range planetCodes {
		result := swe.CalcUT(float64(jd), pc.code, calcFlag)
		pos, err := s.positionFromResult(pc.name, result)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		*fields[i] = pos
	}

	span.SetAttributes(attribute.Bool("success", true))
	span.AddEvent("Planetary positions calculated via Swiss Ephemeris")

	return positions, nil
}

// GetSunPosition returns detailed sidereal Sun position for a given Julian day
func (s *SwissEphemerisProvider) GetSunPosition(ctx context.Context, jd JulianDay) (*SolarPosition, error) {
	ctx, span := s.observer.CreateSpan(ctx, "swisseph.GetSunPosition")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", s.name),
		attribute.Float64("julian_day", float64(jd)),
	)

	eclResult := swe.CalcUT(float64(jd), swe.Sun, calcFlag)
	if eclResult.Flag < 0 {
		err := fmt.Errorf("swisseph sun calc failed: %s", eclResult.Error)
		span.RecordError(err)
		return nil, err
	}

	equResult := swe.CalcUT(float64(jd), swe.Sun, calcFlag|swe.FlagEquatorial)
	if equResult.Flag < 0 {
		err := fmt.Errorf("swisseph sun equatorial calc failed: %s", equResult.Error)
		span.RecordError(err)
		return nil, err
	}

	timeEqu, err := swe.TimeEqu(float64(jd))
	if err != nil {
		span.RecordError(err)
		timeEqu = 0
	}

	position := &SolarPosition{
		JulianDay:      jd,
		Longitude:      math.Mod(eclResult.Data[0]+360, 360),
		RightAscension: math.Mod(equResult.Data[0]+360, 360),
		Declination:    equResult.Data[1],
		Distance:       eclResult.Data[2],
		MeanAnomaly:    eclResult.Data[0], // Swiss Ephemeris reports true, not mean; kept for API parity
		EquationOfTime: timeEqu * 1440.0,  // TimeEqu returns fraction of day
	}

	span.SetAttributes(
		attribute.Float64("longitude", position.Longitude),
		attribute.Float64("right_ascension", position.RightAscension),
		attribute.Float64("declination", position.Declination),
		attribute.Bool("success", true),
	)
	span.AddEvent("Sun position calculated via Swiss Ephemeris")

	return position, nil
}

// GetMoonPosition returns detailed sidereal Moon position for a given Julian day
func (s *SwissEphemerisProvider) GetMoonPosition(ctx context.Context, jd JulianDay) (*LunarPosition, error) {
	ctx, span := s.observer.CreateSpan(ctx, "swisseph.GetMoonPosition")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", s.name),
		attribute.Float64("julian_day", float64(jd)),
	)

	moonResult := swe.CalcUT(float64(jd), swe.Moon, calcFlag)
	if moonResult.Flag < 0 {
		err := fmt.Errorf("swisseph moon calc failed: %s", moonResult.Error)
		span.RecordError(err)
		return nil, err
	}

	sunResult := swe.CalcUT(float64(jd), swe.Sun, calcFlag)
	if sunResult.Flag < 0 {
		err := fmt.Errorf("swisseph sun calc (for moon phase) failed: %s", sunResult.Error)
		span.RecordError(err)
		return nil, err
	}

	lon := math.Mod(moonResult.Data[0]+360, 360)
	elongation := math.Abs(lon - math.Mod(sunResult.Data[0]+360, 360))
	if elongation > 180 {
		elongation = 360 - elongation
	}
	phase := (1.0 - math.Cos(elongation*math.Pi/180.0)) / 2.0

	position := &LunarPosition{
		JulianDay:    jd,
		Longitude:    lon,
		Latitude:     moonResult.Data[1],
		Distance:     moonResult.Data[2] * 149597870.7, // AU to km
		Phase:        phase,
		PhaseAngle:   elongation,
		Illumination: phase * 100.0,
		TrueLongitude: lon,
	}

	span.SetAttributes(
		attribute.Float64("longitude", position.Longitude),
		attribute.Float64("latitude", position.Latitude),
		attribute.Float64("distance", position.Distance),
		attribute.Float64("phase", position.Phase),
		attribute.Bool("success", true),
	)
	span.AddEvent("Moon position calculated via Swiss Ephemeris")

	return position, nil
}

// Ayanamsa returns the Lahiri ayanamsa in degrees for the given Julian day.
func (s *SwissEphemerisProvider) Ayanamsa(ctx context.Context, jd JulianDay) (float64, error) {
	_, span := s.observer.CreateSpan(ctx, "swisseph.Ayanamsa")
	defer span.End()

	ayanamsa := swe.GetAyanamsaUT(float64(jd))
	span.SetAttributes(attribute.Float64("ayanamsa", ayanamsa))
	return ayanamsa, nil
}

// RiseSet returns sunrise/sunset Julian days for the civil day containing jd,
// using the Hindu-rising convention (geometric disc center, no refraction).
func (s *SwissEphemerisProvider) RiseSet(ctx context.Context, jd JulianDay, latitude, longitude float64) (*RiseSet, error) {
	ctx, span := s.observer.CreateSpan(ctx, "swisseph.RiseSet")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("julian_day", float64(jd)),
		attribute.Float64("latitude", latitude),
		attribute.Float64("longitude", longitude),
	)

	dayStartJD := math.Floor(float64(jd)-0.5) + 0.5
	geopos := [3]float64{longitude, latitude, 0}

	riseResult := swe.RiseTrans(dayStartJD, swe.Sun, "", swe.FlagSwieph, swe.CalcRise|swe.BitHinduRising, geopos, 1013.25, 15.0)
	setResult := swe.RiseTrans(dayStartJD, swe.Sun, "", swe.FlagSwieph, swe.CalcSet|swe.BitHinduRising, geopos, 1013.25, 15.0)

	if riseResult.Flag < 0 || setResult.Flag < 0 {
		// -2 signals no event (polar latitude); anything else is a genuine error.
		if riseResult.Flag != -2 && setResult.Flag != -2 {
			err := fmt.Errorf("swisseph rise/set failed: rise=%q set=%q", riseResult.Error, setResult.Error)
			span.RecordError(err)
			return nil, err
		}
		span.AddEvent("No diurnal rise/set event (polar latitude)")
		return &RiseSet{SunriseJD: JulianDay(dayStartJD + 0.5), SunsetJD: JulianDay(dayStartJD + 0.5), HasEvent: false}, nil
	}

	result := &RiseSet{
		SunriseJD: JulianDay(riseResult.Time),
		SunsetJD:  JulianDay(setResult.Time),
		HasEvent:  true,
	}

	span.SetAttributes(
		attribute.Float64("sunrise_jd", float64(result.SunriseJD)),
		attribute.Float64("sunset_jd", float64(result.SunsetJD)),
		attribute.Bool("has_event", true),
	)

	return result, nil
}

// Ascendant returns the sidereal longitude of the rising degree (Lagnam).
func (s *SwissEphemerisProvider) Ascendant(ctx context.Context, jd JulianDay, latitude, longitude float64) (float64, error) {
	_, span := s.observer.CreateSpan(ctx, "swisseph.Ascendant")
	defer span.End()

	houses := swe.HousesEx(float64(jd), swe.FlagSidereal, latitude, longitude, 'P')
	if len(houses.Points) <= swe.Asc {
		err := fmt.Errorf("swisseph houses calc returned no ascendant point")
		span.RecordError(err)
		return 0, err
	}

	ascendant := math.Mod(houses.Points[swe.Asc]+360, 360)
	span.SetAttributes(attribute.Float64("ascendant_sidereal", ascendant))

	return ascendant, nil
}

// IsAvailable checks if the Swiss Ephemeris library responds to a basic calculation.
func (s *SwissEphemerisProvider) IsAvailable(ctx context.Context) bool {
	ctx, span := s.observer.CreateSpan(ctx, "swisseph.IsAvailable")
	defer span.End()

	if time.Since(s.lastHealthCheck) > 30*time.Second {
		s.updateHealthStatus(ctx)
	}

	available := s.healthStatus.Available
	span.SetAttributes(attribute.Bool("available", available))

	return available
}

// GetDataRange returns the valid Julian day range for this provider
func (s *SwissEphemerisProvider) GetDataRange() (startJD, endJD JulianDay) {
	return s.dataStartJD, s.dataEndJD
}

// GetHealthStatus returns the current health status
func (s *SwissEphemerisProvider) GetHealthStatus(ctx context.Context) (*HealthStatus, error) {
	ctx, span := s.observer.CreateSpan(ctx, "swisseph.GetHealthStatus")
	defer span.End()

	s.updateHealthStatus(ctx)

	span.SetAttributes(
		attribute.Bool("available", s.healthStatus.Available),
		attribute.String("version", s.healthStatus.Version),
	)

	return s.healthStatus, nil
}

// GetProviderName returns the name of the provider
func (s *SwissEphemerisProvider) GetProviderName() string {
	return s.name
}

// GetVersion returns the version of the ephemeris data
func (s *SwissEphemerisProvider) GetVersion() string {
	return s.version
}

// Close releases the Swiss Ephemeris library's internal state.
func (s *SwissEphemerisProvider) Close() error {
	swe.Close()
	return nil
}

func (s *SwissEphemerisProvider) updateHealthStatus(ctx context.Context) {
	_, span := s.observer.CreateSpan(ctx, "swisseph.updateHealthStatus")
	defer span.End()

	start := time.Now()
	testJD := JulianDay(2451545.0)

	result := swe.CalcUT(float64(testJD), swe.Sun, calcFlag)
	available := result.Flag >= 0
	errorMessage := result.Error

	responseTime := time.Since(start)
	now := time.Now()

	s.healthStatus = &HealthStatus{
		Available:    available,
		LastCheck:    now,
		DataStartJD:  float64(s.dataStartJD),
		DataEndJD:    float64(s.dataEndJD),
		ResponseTime: responseTime,
		ErrorMessage: errorMessage,
		Version:      s.version,
		Source:       s.name,
	}
	s.lastHealthCheck = now

	span.SetAttributes(
		attribute.Bool("available", available),
		attribute.Int64("response_time_ms", responseTime.Milliseconds()),
	)
}
