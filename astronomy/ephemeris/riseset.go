package ephemeris

import (
	"context"
	"math"

	"github.com/kaalam/panchangam/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// DegToRad converts degrees to radians.
	DegToRad = math.Pi / 180
	// RadToDeg converts radians to degrees.
	RadToDeg = 180 / math.Pi

	// solarDepressionAngle is the depression of the solar center below the
	// horizon at sunrise/sunset: zero, the geometric crossing of the horizon
	// by the Sun's center, with no allowance for atmospheric refraction or
	// the Sun's angular radius.
	solarDepressionAngle = 0.0
)

// solarEquationAndDeclination returns the equation of time (minutes) and
// solar declination (radians) at the given Julian day, using the same
// low-order Meeus series as the analytic position calculator.
func solarEquationAndDeclination(ctx context.Context, observer observability.ObserverInterface, jd float64) (eqTime, decl float64) {
	_, span := observer.CreateSpan(ctx, "ephemeris.solarEquationAndDeclination")
	defer span.End()

	n := jd - 2451545.0
	L := math.Mod(280.460+0.9856474*n, 360)
	g := math.Mod(357.528+0.9856003*n, 360) * DegToRad

	lambda := L + 1.915*math.Sin(g) + 0.020*math.Sin(2*g)

	ra := math.Atan2(math.Cos(23.44*DegToRad)*math.Sin(lambda*DegToRad), math.Cos(lambda*DegToRad)) * RadToDeg
	ra = math.Mod(ra+360, 360)

	eqTime = 4 * (L - ra)
	decl = math.Asin(math.Sin(23.44*DegToRad) * math.Sin(lambda*DegToRad))

	span.SetAttributes(
		attribute.Float64("equation_of_time", eqTime),
		attribute.Float64("declination_rad", decl),
	)

	return eqTime, decl
}

// riseSetMinutes returns sunrise/sunset in minutes from midnight UTC, and
// whether a diurnal rise/set event occurred (false at polar latitudes, where
// the returned minutes carry midnight/noon sentinels).
func riseSetMinutes(ctx context.Context, observer observability.ObserverInterface, latitude, longitude, eqTime, decl float64) (sunrise, sunset float64, hasEvent bool) {
	_, span := observer.CreateSpan(ctx, "ephemeris.riseSetMinutes")
	defer span.End()

	latRad := latitude * DegToRad

	cosH := (math.Cos((90+solarDepressionAngle)*DegToRad) - math.Sin(latRad)*math.Sin(decl)) /
		(math.Cos(latRad) * math.Cos(decl))

	span.SetAttributes(
		attribute.Float64("cos_hour_angle", cosH),
		attribute.Float64("latitude", latitude),
	)

	if cosH > 1 {
		span.SetAttributes(attribute.String("condition", "polar_night"))
		span.AddEvent("Polar night: sun never rises")
		return 720, 720, false
	}
	if cosH < -1 {
		span.SetAttributes(attribute.String("condition", "polar_day"))
		span.AddEvent("Polar day: sun never sets")
		return 0, 1439, false
	}

	H := math.Acos(cosH) * RadToDeg
	timeCorrection := eqTime + longitude*4

	sunrise = math.Mod(720-4*H-timeCorrection+1440, 1440)
	sunset = math.Mod(720+4*H-timeCorrection+1440, 1440)

	span.SetAttributes(
		attribute.String("condition", "normal"),
		attribute.Float64("hour_angle_degrees", H),
		attribute.Float64("sunrise_minutes", sunrise),
		attribute.Float64("sunset_minutes", sunset),
	)

	return sunrise, sunset, true
}
