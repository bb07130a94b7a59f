// Package solver provides a generic bracketed angular bisection root-finder,
// used by the limb engines to find the instant a derived angle crosses its
// next boundary.
package solver

import (
	"context"
	"math"

	"github.com/kaalam/panchangam/observability"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultTolerance is the default convergence tolerance in degrees.
const DefaultTolerance = 1e-3

// MaxIterations caps the bisection loop; on exhaustion the final midpoint is
// returned rather than an error (the non-convergence is recorded as a span
// event, not surfaced).
const MaxIterations = 50

// AngleFunc produces a degree value in [0, 360) for a given Julian day. Over
// the bracket [lo, hi] passed to FindCrossing it is assumed monotone once
// shifted by the target, i.e. it crosses target exactly once.
type AngleFunc func(jd float64) (float64, error)

// shortestSignedArc reduces a difference of two angles to (-180, 180].
func shortestSignedArc(diffDegrees float64) float64 {
	d := math.Mod(diffDegrees, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// FindCrossing finds the Julian day in [lo, hi] at which f(jd) first equals
// target (mod 360), via bracketed bisection on the shortest-signed-arc
// difference. f must straddle zero at lo and hi once shifted by target.
//
// Terminates when |diff(mid)| < tol, or after MaxIterations, in which case
// the final midpoint is returned (non-convergence is recorded as a span event,
// not treated as an error).
func FindCrossing(ctx context.Context, lo, hi, target float64, f AngleFunc, tol float64) (float64, error) {
	observer := observability.Observer()
	ctx, span := observer.CreateSpan(ctx, "solver.FindCrossing")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("lo", lo),
		attribute.Float64("hi", hi),
		attribute.Float64("target", target),
		attribute.Float64("tolerance", tol),
	)

	if tol <= 0 {
		tol = DefaultTolerance
	}

	angleLo, err := f(lo)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	diffLo := shortestSignedArc(angleLo - target)

	angleHi, err := f(hi)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	diffHi := shortestSignedArc(angleHi - target)

	mid := (lo + hi) / 2
	diffMid := diffLo

	converged := false
	iterations := 0

	for iterations = 0; iterations < MaxIterations; iterations++ {
		mid = (lo + hi) / 2

		angleMid, err := f(mid)
		if err != nil {
			span.RecordError(err)
			return 0, err
		}
		diffMid = shortestSignedArc(angleMid - target)

		if math.Abs(diffMid) < tol {
			converged = true
			break
		}

		// Halve toward the side whose endpoints straddle zero.
		if sameSign(diffLo, diffMid) {
			lo = mid
			diffLo = diffMid
		} else {
			hi = mid
			diffHi = diffMid
		}
	}

	_ = diffHi

	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Bool("converged", converged),
		attribute.Float64("result_jd", mid),
		attribute.Float64("final_diff", diffMid),
	)
	if !converged {
		span.AddEvent("solver reached iteration cap without converging; returning final midpoint")
	}

	return mid, nil
}

func sameSign(a, b float64) bool {
	return (a >= 0 && b >= 0) || (a < 0 && b < 0)
}
