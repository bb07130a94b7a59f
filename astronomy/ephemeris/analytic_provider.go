package ephemeris

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kaalam/panchangam/observability"
	"go.opentelemetry.io/otel/attribute"
)

// lahiriAyanamsaJ2000 is the Lahiri (Chitrapaksha) ayanamsa in degrees at
// J2000.0, with a linear precession rate. This reproduces the Lahiri value to
// within a few arcseconds over the modern era; the Swiss-backed provider
// supplies the authoritative value when available.
const (
	lahiriAyanamsaJ2000       = 23.85
	lahiriAyanamsaRatePerYear = 0.013972
	julianDaysPerYear         = 365.25
)

// lahiriAyanamsa returns the Lahiri ayanamsa in degrees for the given Julian day.
func lahiriAyanamsa(jd JulianDay) float64 {
	yearsSinceJ2000 := float64(jd-2451545.0) / julianDaysPerYear
	return lahiriAyanamsaJ2000 + lahiriAyanamsaRatePerYear*yearsSinceJ2000
}

// AnalyticProvider implements EphemerisProvider with closed-form analytic
// series (not a wrapped Swiss Ephemeris library). It is the fallback provider:
// no external ephemeris files, always available, moderate precision.
type AnalyticProvider struct {
	name            string
	version         string
	dataStartJD     JulianDay
	dataEndJD       JulianDay
	observer        observability.ObserverInterface
	healthStatus    *HealthStatus
	lastHealthCheck time.Time
}

// NewAnalyticProvider creates a new analytic ephemeris provider.
func NewAnalyticProvider() *AnalyticProvider {
	now := time.Now()

	return &AnalyticProvider{
		name:        "Analytic Series",
		version:     "1.0",
		dataStartJD: JulianDay(-3027215.5),
		dataEndJD:   JulianDay(7857061.5),
		observer:    observability.Observer(),
		healthStatus: &HealthStatus{
			Available:    true,
			LastCheck:    now,
			DataStartJD:  -3027215.5,
			DataEndJD:    7857061.5,
			ResponseTime: 0,
			Version:      "1.0",
			Source:       "Analytic Series",
		},
		lastHealthCheck: now,
	}
}

// GetPlanetaryPositions returns positions of all planets for a given Julian day
func (s *AnalyticProvider) GetPlanetaryPositions(ctx context.Context, jd JulianDay) (*PlanetaryPositions, error) {
	ctx, span := s.observer.CreateSpan(ctx, "analytic.GetPlanetaryPositions")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", s.name),
		attribute.String("version", s.version),
		attribute.Float64("julian_day", float64(jd)),
	)

	if jd < s.dataStartJD || jd > s.dataEndJD {
		err := fmt.Errorf("julian day %f is outside valid range [%f, %f]", jd, s.dataStartJD, s.dataEndJD)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("in_range", false))
		return nil, err
	}

	span.SetAttributes(attribute.Bool("in_range", true))

	ayanamsa := lahiriAyanamsa(jd)

	positions := &PlanetaryPositions{
		JulianDay: jd,
		Sun:       s.siderealize(s.calculateSunPosition(ctx, jd), ayanamsa),
		Moon:      s.siderealize(s.calculateMoonPosition(ctx, jd), ayanamsa),
		Mercury:   s.siderealize(s.calculatePlanetPosition(ctx, jd, "mercury"), ayanamsa),
		Venus:     s.siderealize(s.calculatePlanetPosition(ctx, jd, "venus"), ayanamsa),
		Mars:      s.siderealize(s.calculatePlanetPosition(ctx, jd, "mars"), ayanamsa),
		Jupiter:   s.siderealize(s.calculatePlanetPosition(ctx, jd, "jupiter"), ayanamsa),
		Saturn:    s.siderealize(s.calculatePlanetPosition(ctx, jd, "saturn"), ayanamsa),
		Uranus:    s.siderealize(s.calculatePlanetPosition(ctx, jd, "uranus"), ayanamsa),
		Neptune:   s.siderealize(s.calculatePlanetPosition(ctx, jd, "neptune"), ayanamsa),
		Pluto:     s.siderealize(s.calculatePlanetPosition(ctx, jd, "pluto"), ayanamsa),
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Float64("ayanamsa", ayanamsa),
	)
	span.AddEvent("Planetary positions calculated from analytic series")

	return positions, nil
}

// siderealize subtracts the ayanamsa from a tropical longitude.
func (s *AnalyticProvider) siderealize(p Position, ayanamsa float64) Position {
	p.Longitude = math.Mod(p.Longitude-ayanamsa+360, 360)
	return p
}

// GetSunPosition returns detailed Sun position for a given Julian day, sidereal.
func (s *AnalyticProvider) GetSunPosition(ctx context.Context, jd JulianDay) (*SolarPosition, error) {
	ctx, span := s.observer.CreateSpan(ctx, "analytic.GetSunPosition")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", s.name),
		attribute.Float64("julian_day", float64(jd)),
	)

	if jd < s.dataStartJD || jd > s.dataEndJD {
		err := fmt.Errorf("julian day %f is outside valid range [%f, %f]", jd, s.dataStartJD, s.dataEndJD)
		span.RecordError(err)
		return nil, err
	}

	position := s.calculateDetailedSunPosition(ctx, jd)
	ayanamsa := lahiriAyanamsa(jd)
	position.Longitude = math.Mod(position.Longitude-ayanamsa+360, 360)
	position.ApparentLongitude = math.Mod(position.ApparentLongitude-ayanamsa+360, 360)

	span.SetAttributes(
		attribute.Float64("longitude", position.Longitude),
		attribute.Float64("right_ascension", position.RightAscension),
		attribute.Float64("declination", position.Declination),
		attribute.Float64("distance", position.Distance),
		attribute.Float64("ayanamsa", ayanamsa),
		attribute.Bool("success", true),
	)
	span.AddEvent("Sun position calculated from analytic series")

	return position, nil
}

// GetMoonPosition returns detailed Moon position for a given Julian day, sidereal.
func (s *AnalyticProvider) GetMoonPosition(ctx context.Context, jd JulianDay) (*LunarPosition, error) {
	ctx, span := s.observer.CreateSpan(ctx, "analytic.GetMoonPosition")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", s.name),
		attribute.Float64("julian_day", float64(jd)),
	)

	if jd < s.dataStartJD || jd > s.dataEndJD {
		err := fmt.Errorf("julian day %f is outside valid range [%f, %f]", jd, s.dataStartJD, s.dataEndJD)
		span.RecordError(err)
		return nil, err
	}

	position := s.calculateDetailedMoonPosition(ctx, jd)
	ayanamsa := lahiriAyanamsa(jd)
	position.Longitude = math.Mod(position.Longitude-ayanamsa+360, 360)
	position.TrueLongitude = math.Mod(position.TrueLongitude-ayanamsa+360, 360)

	span.SetAttributes(
		attribute.Float64("longitude", position.Longitude),
		attribute.Float64("latitude", position.Latitude),
		attribute.Float64("distance", position.Distance),
		attribute.Float64("phase", position.Phase),
		attribute.Float64("ayanamsa", ayanamsa),
		attribute.Bool("success", true),
	)
	span.AddEvent("Moon position calculated from analytic series")

	return position, nil
}

// Ayanamsa returns the Lahiri ayanamsa in degrees at the given Julian day.
func (s *AnalyticProvider) Ayanamsa(ctx context.Context, jd JulianDay) (float64, error) {
	_, span := s.observer.CreateSpan(ctx, "analytic.Ayanamsa")
	defer span.End()

	ayanamsa := lahiriAyanamsa(jd)
	span.SetAttributes(attribute.Float64("ayanamsa", ayanamsa))
	return ayanamsa, nil
}

// RiseSet returns sunrise/sunset Julian days for the civil day containing jd,
// using the geometric horizon crossing of the solar center (no refraction or
// solar-radius allowance).
func (s *AnalyticProvider) RiseSet(ctx context.Context, jd JulianDay, latitude, longitude float64) (*RiseSet, error) {
	ctx, span := s.observer.CreateSpan(ctx, "analytic.RiseSet")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("julian_day", float64(jd)),
		attribute.Float64("latitude", latitude),
		attribute.Float64("longitude", longitude),
	)

	// jd is interpreted as local noon of the civil day; work from the
	// preceding midnight so the minutes-from-midnight results land on the
	// same civil day.
	dayStartJD := math.Floor(float64(jd)-0.5) + 0.5

	eqTime, decl := solarEquationAndDeclination(ctx, s.observer, dayStartJD)
	sunriseMin, sunsetMin, hasEvent := riseSetMinutes(ctx, s.observer, latitude, longitude, eqTime, decl)

	result := &RiseSet{
		SunriseJD: JulianDay(dayStartJD + sunriseMin/1440.0),
		SunsetJD:  JulianDay(dayStartJD + sunsetMin/1440.0),
		HasEvent:  hasEvent,
	}

	span.SetAttributes(
		attribute.Float64("sunrise_jd", float64(result.SunriseJD)),
		attribute.Float64("sunset_jd", float64(result.SunsetJD)),
		attribute.Bool("has_event", hasEvent),
	)

	return result, nil
}

// Ascendant returns the sidereal longitude of the eastern horizon point
// (Lagnam) at the given Julian day and location, via local sidereal time and
// the standard ascendant formula.
func (s *AnalyticProvider) Ascendant(ctx context.Context, jd JulianDay, latitude, longitude float64) (float64, error) {
	_, span := s.observer.CreateSpan(ctx, "analytic.Ascendant")
	defer span.End()

	t := float64(jd-2451545.0) / 36525.0

	// Greenwich mean sidereal time in degrees (Meeus 12.4, abbreviated).
	gmst := math.Mod(280.46061837+360.98564736629*float64(jd-2451545.0)+
		0.000387933*t*t-t*t*t/38710000.0, 360.0)
	if gmst < 0 {
		gmst += 360
	}

	lst := math.Mod(gmst+longitude, 360.0)
	lstRad := lst * DegToRad

	epsilon := 23.4392911 - 0.0130042*t
	epsilonRad := epsilon * DegToRad
	latRad := latitude * DegToRad

	ascRad := math.Atan2(
		math.Cos(lstRad),
		-(math.Sin(lstRad)*math.Cos(epsilonRad) + math.Tan(latRad)*math.Sin(epsilonRad)),
	)
	ascendantTropical := math.Mod(ascRad*RadToDeg+360, 360)

	ayanamsa := lahiriAyanamsa(jd)
	ascendantSidereal := math.Mod(ascendantTropical-ayanamsa+360, 360)

	span.SetAttributes(
		attribute.Float64("lst", lst),
		attribute.Float64("ascendant_tropical", ascendantTropical),
		attribute.Float64("ayanamsa", ayanamsa),
		attribute.Float64("ascendant_sidereal", ascendantSidereal),
	)

	return ascendantSidereal, nil
}

// IsAvailable checks if the ephemeris provider is available
func (s *AnalyticProvider) IsAvailable(ctx context.Context) bool {
	ctx, span := s.observer.CreateSpan(ctx, "analytic.IsAvailable")
	defer span.End()

	if time.Since(s.lastHealthCheck) > 30*time.Second {
		s.updateHealthStatus(ctx)
	}

	available := s.healthStatus.Available
	span.SetAttributes(
		attribute.Bool("available", available),
		attribute.String("last_check", s.healthStatus.LastCheck.Format(time.RFC3339)),
	)

	return available
}

// GetDataRange returns the valid Julian day range for this provider
func (s *AnalyticProvider) GetDataRange() (startJD, endJD JulianDay) {
	return s.dataStartJD, s.dataEndJD
}

// GetHealthStatus returns the current health status
func (s *AnalyticProvider) GetHealthStatus(ctx context.Context) (*HealthStatus, error) {
	ctx, span := s.observer.CreateSpan(ctx, "analytic.GetHealthStatus")
	defer span.End()

	s.updateHealthStatus(ctx)

	span.SetAttributes(
		attribute.Bool("available", s.healthStatus.Available),
		attribute.Int64("response_time_ms", s.healthStatus.ResponseTime.Milliseconds()),
		attribute.String("version", s.healthStatus.Version),
	)

	return s.healthStatus, nil
}

// GetProviderName returns the name of the provider
func (s *AnalyticProvider) GetProviderName() string {
	return s.name
}

// GetVersion returns the version of the ephemeris data
func (s *AnalyticProvider) GetVersion() string {
	return s.version
}

// Close closes the provider and releases resources
func (s *AnalyticProvider) Close() error {
	return nil
}

// updateHealthStatus updates the health status of the provider
func (s *AnalyticProvider) updateHealthStatus(ctx context.Context) {
	ctx, span := s.observer.CreateSpan(ctx, "analytic.updateHealthStatus")
	defer span.End()

	start := time.Now()

	testJD := JulianDay(2451545.0) // J2000.0
	available := true
	var errorMessage string

	if testJD < s.dataStartJD || testJD > s.dataEndJD {
		available = false
		errorMessage = "Test Julian day outside valid range"
	} else {
		_ = s.calculateSunPosition(ctx, testJD)
	}

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
		attribute.String("error_message", errorMessage),
	)
	span.AddEvent("Health status updated")
}

// calculateSunPosition calculates tropical sun position using a low-order
// Keplerian series (Meeus ch. 25 abbreviated).
func (s *AnalyticProvider) calculateSunPosition(ctx context.Context, jd JulianDay) Position {
	_, span := s.observer.CreateSpan(ctx, "analytic.calculateSunPosition")
	defer span.End()

	t := float64(jd - 2451545.0)

	L := math.Mod(280.4664567+0.9856235*t, 360.0)
	M := math.Mod(357.5291092+0.9856002585*t, 360.0)
	MRad := M * math.Pi / 180.0

	C := 1.9148*math.Sin(MRad) + 0.0200*math.Sin(2*MRad) + 0.0003*math.Sin(3*MRad)

	lambda := L + C

	distance := 1.000001018 * (1 - 0.01671123*math.Cos(MRad) - 0.00014*math.Cos(2*MRad))
	speed := 0.9856 * (1 + 0.0167*math.Cos(MRad))

	position := Position{
		Longitude: math.Mod(lambda+360, 360),
		Latitude:  0.0,
		Distance:  distance,
		Speed:     speed,
	}

	span.SetAttributes(
		attribute.Float64("longitude", position.Longitude),
		attribute.Float64("distance", position.Distance),
		attribute.Float64("speed", position.Speed),
		attribute.Float64("eccentricity_correction", C),
	)

	return position
}

// calculateMoonPosition calculates tropical moon position using an
// abbreviated ELP-2000-style periodic series.
func (s *AnalyticProvider) calculateMoonPosition(ctx context.Context, jd JulianDay) Position {
	_, span := s.observer.CreateSpan(ctx, "analytic.calculateMoonPosition")
	defer span.End()

	t := float64(jd - 2451545.0)

	L := math.Mod(218.3164477+13.17639648*t, 360.0)
	M := math.Mod(134.9633964+13.06499295*t, 360.0)
	Mp := math.Mod(357.5291092+0.9856002585*t, 360.0)
	D := math.Mod(297.8501921+12.19074912*t, 360.0)
	F := math.Mod(93.2720950+13.22935025*t, 360.0)

	MRad := M * math.Pi / 180.0
	MpRad := Mp * math.Pi / 180.0
	DRad := D * math.Pi / 180.0
	FRad := F * math.Pi / 180.0

	deltaL := 6.289*math.Sin(MRad) + 1.274*math.Sin(2*DRad-MRad) + 0.658*math.Sin(2*DRad) -
		0.186*math.Sin(MpRad) - 0.059*math.Sin(2*MRad-2*DRad) - 0.057*math.Sin(MRad-2*DRad+MpRad)

	deltaB := 5.128*math.Sin(FRad) + 0.281*math.Sin(MRad+FRad) + 0.277*math.Sin(MRad-FRad) +
		0.173*math.Sin(2*DRad-FRad) + 0.055*math.Sin(2*DRad-MRad+FRad)

	deltaR := -20905*math.Cos(MRad) - 3699*math.Cos(2*DRad-MRad) - 2956*math.Cos(2*DRad) -
		570*math.Cos(2*MRad) + 246*math.Cos(2*MRad-2*DRad)

	lambda := L + deltaL
	beta := deltaB
	distance := (385000.56 + deltaR) / 149597870.7

	speed := 13.18 * (1 + 0.055*math.Cos(MRad))

	position := Position{
		Longitude: math.Mod(lambda+360, 360),
		Latitude:  beta,
		Distance:  distance,
		Speed:     speed,
	}

	span.SetAttributes(
		attribute.Float64("longitude", position.Longitude),
		attribute.Float64("latitude", position.Latitude),
		attribute.Float64("distance_au", position.Distance),
		attribute.Float64("speed", position.Speed),
		attribute.Float64("delta_longitude", deltaL),
		attribute.Float64("delta_latitude", deltaB),
	)

	return position
}

// calculatePlanetPosition calculates a planet's tropical position using an
// abbreviated VSOP87-style series.
func (s *AnalyticProvider) calculatePlanetPosition(ctx context.Context, jd JulianDay, planet string) Position {
	_, span := s.observer.CreateSpan(ctx, "analytic.calculatePlanetPosition")
	defer span.End()

	span.SetAttributes(attribute.String("planet", planet))

	t := float64(jd - 2451545.0)

	var L, M, distance, speed float64
	var deltaL, deltaM, deltaR float64

	switch planet {
	case "mercury":
		L = math.Mod(252.2509+4.092338*t, 360.0)
		M = math.Mod(174.7948+4.092335*t, 360.0)
		distance = 0.387098
		speed = 4.092
		deltaL = 0.378 * math.Sin((157.074+4.092338*t)*math.Pi/180.0)
		deltaM = 0.321 * math.Sin((164.045+4.092338*t)*math.Pi/180.0)
		deltaR = 0.007824 * math.Cos((157.074+4.092338*t)*math.Pi/180.0)
	case "venus":
		L = math.Mod(181.9798+1.602136*t, 360.0)
		M = math.Mod(50.4161+1.602136*t, 360.0)
		distance = 0.723327
		speed = 1.602
		deltaL = 0.775 * math.Sin((89.44+1.602136*t)*math.Pi/180.0)
		deltaM = 0.007 * math.Sin((313.42+1.602136*t)*math.Pi/180.0)
		deltaR = 0.000005 * math.Cos((89.44+1.602136*t)*math.Pi/180.0)
	case "mars":
		L = math.Mod(355.433+0.524033*t, 360.0)
		M = math.Mod(19.3870+0.524033*t, 360.0)
		distance = 1.523679
		speed = 0.524
		deltaL = 10.691 * math.Sin((68.98+0.524033*t)*math.Pi/180.0)
		deltaM = 0.606 * math.Sin((108.99+0.524033*t)*math.Pi/180.0)
		deltaR = 0.141063 * math.Cos((68.98+0.524033*t)*math.Pi/180.0)
	case "jupiter":
		L = math.Mod(34.3515+0.083091*t, 360.0)
		M = math.Mod(20.0202+0.083091*t, 360.0)
		distance = 5.204267
		speed = 0.083
		deltaL = 5.555 * math.Sin((318.16+0.083091*t)*math.Pi/180.0)
		deltaM = 0.164 * math.Sin((225.33+0.083091*t)*math.Pi/180.0)
		deltaR = 0.262127 * math.Cos((318.16+0.083091*t)*math.Pi/180.0)
	case "saturn":
		L = math.Mod(50.0774+0.033494*t, 360.0)
		M = math.Mod(317.021+0.033494*t, 360.0)
		distance = 9.5820172
		speed = 0.033
		deltaL = 6.406 * math.Sin((231.46+0.033494*t)*math.Pi/180.0)
		deltaM = 0.407 * math.Sin((206.19+0.033494*t)*math.Pi/180.0)
		deltaR = 0.301020 * math.Cos((231.46+0.033494*t)*math.Pi/180.0)
	case "uranus":
		L = math.Mod(314.055+0.011733*t, 360.0)
		M = math.Mod(142.238+0.011733*t, 360.0)
		distance = 19.189253
		speed = 0.012
		deltaL = 1.681 * math.Sin((77.25+0.011733*t)*math.Pi/180.0)
		deltaM = 0.104 * math.Sin((108.11+0.011733*t)*math.Pi/180.0)
		deltaR = 0.09142 * math.Cos((77.25+0.011733*t)*math.Pi/180.0)
	case "neptune":
		L = math.Mod(304.348+0.005965*t, 360.0)
		M = math.Mod(256.225+0.005965*t, 360.0)
		distance = 30.070900
		speed = 0.006
		deltaL = 1.021 * math.Sin((84.457+0.005965*t)*math.Pi/180.0)
		deltaM = 0.058 * math.Sin((200.51+0.005965*t)*math.Pi/180.0)
		deltaR = 0.046116 * math.Cos((84.457+0.005965*t)*math.Pi/180.0)
	case "pluto":
		L = math.Mod(238.956+0.003968*t, 360.0)
		M = math.Mod(14.8820+0.003968*t, 360.0)
		distance = 39.481686
		speed = 0.004
		deltaL = 0.041 * math.Sin((322.16+0.003968*t)*math.Pi/180.0)
		deltaM = 0.004 * math.Sin((322.16+0.003968*t)*math.Pi/180.0)
		deltaR = 0.0064 * math.Cos((322.16+0.003968*t)*math.Pi/180.0)
	default:
		L = math.Mod(100.4644+0.985647*t, 360.0)
		M = math.Mod(357.5291+0.985600*t, 360.0)
		distance = 1.000001
		speed = 0.986
		deltaL = 0.0
		deltaM = 0.0
		deltaR = 0.0
	}

	MRad := (M + deltaM) * math.Pi / 180.0
	lambda := L + deltaL + 1.915*math.Sin(MRad) + 0.020*math.Sin(2*MRad)
	correctedDistance := distance + deltaR

	position := Position{
		Longitude: math.Mod(lambda+360, 360),
		Latitude:  0.0,
		Distance:  correctedDistance,
		Speed:     speed,
	}

	span.SetAttributes(
		attribute.Float64("longitude", position.Longitude),
		attribute.Float64("distance", position.Distance),
		attribute.Float64("speed", position.Speed),
		attribute.Float64("vsop87_delta_l", deltaL),
		attribute.Float64("vsop87_delta_r", deltaR),
	)

	return position
}

// calculateDetailedSunPosition calculates a full tropical SolarPosition.
func (s *AnalyticProvider) calculateDetailedSunPosition(ctx context.Context, jd JulianDay) *SolarPosition {
	_, span := s.observer.CreateSpan(ctx, "analytic.calculateDetailedSunPosition")
	defer span.End()

	t := float64(jd - 2451545.0)

	L := math.Mod(280.4664567+0.9856235*t, 360.0)
	M := math.Mod(357.5291092+0.9856002585*t, 360.0)
	MRad := M * math.Pi / 180.0

	C := 1.9148*math.Sin(MRad) + 0.0200*math.Sin(2*MRad) + 0.0003*math.Sin(3*MRad)

	lambda := L + C
	lambdaRad := lambda * math.Pi / 180.0

	epsilon := 23.4392911 - 0.0130042*t/100.0 - 0.00000164*t*t/10000.0
	epsilonRad := epsilon * math.Pi / 180.0

	alpha := math.Atan2(math.Cos(epsilonRad)*math.Sin(lambdaRad), math.Cos(lambdaRad)) * 180.0 / math.Pi
	alpha = math.Mod(alpha+360, 360)

	delta := math.Asin(math.Sin(epsilonRad)*math.Sin(lambdaRad)) * 180.0 / math.Pi

	distance := 1.000001018 * (1 - 0.01671123*math.Cos(MRad) - 0.00014*math.Cos(2*MRad))

	y := math.Tan(epsilonRad/2.0) * math.Tan(epsilonRad/2.0)
	eqTime := 4.0 * (y*math.Sin(2*L*math.Pi/180.0) - 2.0*0.01671123*math.Sin(M*math.Pi/180.0) +
		4.0*0.01671123*y*math.Sin(M*math.Pi/180.0)*math.Cos(2*L*math.Pi/180.0) -
		0.5*y*y*math.Sin(4*L*math.Pi/180.0) - 1.25*0.01671123*0.01671123*math.Sin(2*M*math.Pi/180.0))
	eqTime = eqTime * 180.0 / math.Pi / 15.0

	trueAnomaly := M + C
	eccentricAnomaly := M + 1.9148*math.Sin(MRad) + 0.0200*math.Sin(2*MRad)

	apparentLongitude := lambda + 0.00569 - 0.00478*math.Sin((125.04-1934.136*t)*math.Pi/180.0)

	position := &SolarPosition{
		JulianDay:         jd,
		Longitude:         math.Mod(lambda+360, 360),
		RightAscension:    alpha,
		Declination:       delta,
		Distance:          distance,
		EquationOfTime:    eqTime,
		MeanAnomaly:       M,
		TrueAnomaly:       trueAnomaly,
		EccentricAnomaly:  eccentricAnomaly,
		MeanLongitude:     L,
		ApparentLongitude: math.Mod(apparentLongitude+360, 360),
	}

	span.SetAttributes(
		attribute.Float64("longitude", position.Longitude),
		attribute.Float64("right_ascension", position.RightAscension),
		attribute.Float64("declination", position.Declination),
		attribute.Float64("distance", position.Distance),
		attribute.Float64("equation_of_time", position.EquationOfTime),
		attribute.Float64("equation_of_center", C),
	)

	return position
}

// calculateDetailedMoonPosition calculates a full tropical LunarPosition.
func (s *AnalyticProvider) calculateDetailedMoonPosition(ctx context.Context, jd JulianDay) *LunarPosition {
	_, span := s.observer.CreateSpan(ctx, "analytic.calculateDetailedMoonPosition")
	defer span.End()

	t := float64(jd - 2451545.0)

	L := math.Mod(218.3164477+13.17639648*t, 360.0)
	M := math.Mod(134.9633964+13.06499295*t, 360.0)
	Mp := math.Mod(357.5291092+0.9856002585*t, 360.0)
	D := math.Mod(297.8501921+12.19074912*t, 360.0)
	F := math.Mod(93.2720950+13.22935025*t, 360.0)

	MRad := M * math.Pi / 180.0
	MpRad := Mp * math.Pi / 180.0
	DRad := D * math.Pi / 180.0
	FRad := F * math.Pi / 180.0

	deltaL := 6.289*math.Sin(MRad) + 1.274*math.Sin(2*DRad-MRad) + 0.658*math.Sin(2*DRad) -
		0.186*math.Sin(MpRad) - 0.059*math.Sin(2*MRad-2*DRad) - 0.057*math.Sin(MRad-2*DRad+MpRad) +
		0.053*math.Sin(MRad+2*DRad) + 0.046*math.Sin(2*DRad-MpRad) + 0.041*math.Sin(MRad-MpRad) -
		0.035*math.Sin(DRad) - 0.031*math.Sin(MRad+MpRad) - 0.015*math.Sin(2*FRad-2*DRad) +
		0.011*math.Sin(MRad-4*DRad)

	deltaB := 5.128*math.Sin(FRad) + 0.281*math.Sin(MRad+FRad) + 0.277*math.Sin(MRad-FRad) +
		0.173*math.Sin(2*DRad-FRad) + 0.055*math.Sin(2*DRad-MRad+FRad) - 0.046*math.Sin(2*DRad-MRad-FRad) +
		0.033*math.Sin(MRad+2*DRad+FRad) + 0.017*math.Sin(2*MRad+FRad)

	deltaR := -20905*math.Cos(MRad) - 3699*math.Cos(2*DRad-MRad) - 2956*math.Cos(2*DRad) -
		570*math.Cos(2*MRad) + 246*math.Cos(2*MRad-2*DRad) - 205*math.Cos(MpRad-2*DRad) -
		171*math.Cos(MRad+2*DRad) - 152*math.Cos(MRad+MpRad-2*DRad) + 148*math.Cos(MRad-MpRad) -
		125*math.Cos(DRad) - 110*math.Cos(MRad+MpRad) + 59*math.Cos(2*DRad-MRad-MpRad)

	lambda := L + deltaL
	beta := deltaB
	distance := 385000.56 + deltaR

	lambdaRad := lambda * math.Pi / 180.0
	betaRad := beta * math.Pi / 180.0
	epsilon := 23.4392911 - 0.0130042*t/100.0
	epsilonRad := epsilon * math.Pi / 180.0

	alpha := math.Atan2(math.Cos(epsilonRad)*math.Sin(lambdaRad)-math.Sin(epsilonRad)*math.Tan(betaRad), math.Cos(lambdaRad)) * 180.0 / math.Pi
	alpha = math.Mod(alpha+360, 360)

	delta := math.Asin(math.Sin(epsilonRad)*math.Sin(lambdaRad)*math.Cos(betaRad)+math.Cos(epsilonRad)*math.Sin(betaRad)) * 180.0 / math.Pi

	sunLongitude := s.calculateSunPosition(ctx, jd).Longitude
	elongation := math.Abs(lambda - sunLongitude)
	if elongation > 180 {
		elongation = 360 - elongation
	}

	phaseAngle := elongation
	phase := (1.0 - math.Cos(elongation*math.Pi/180.0)) / 2.0
	illumination := phase * 100.0

	angularDiameter := 1873.0 * (6378.14 / distance)

	trueAnomaly := M + deltaL
	argumentOfLatitude := math.Mod(lambda-125.0, 360.0)

	position := &LunarPosition{
		JulianDay:          jd,
		Longitude:          math.Mod(lambda+360, 360),
		Latitude:           beta,
		RightAscension:     alpha,
		Declination:        delta,
		Distance:           distance,
		Phase:              phase,
		PhaseAngle:         phaseAngle,
		Illumination:       illumination,
		AngularDiameter:    angularDiameter,
		MeanAnomaly:        M,
		TrueAnomaly:        trueAnomaly,
		ArgumentOfLatitude: argumentOfLatitude,
		MeanLongitude:      L,
		TrueLongitude:      lambda,
	}

	span.SetAttributes(
		attribute.Float64("longitude", position.Longitude),
		attribute.Float64("latitude", position.Latitude),
		attribute.Float64("distance", position.Distance),
		attribute.Float64("phase", position.Phase),
		attribute.Float64("illumination", position.Illumination),
		attribute.Float64("elp2000_delta_l", deltaL),
		attribute.Float64("elp2000_delta_b", deltaB),
		attribute.Float64("elp2000_delta_r", deltaR),
	)

	return position
}
