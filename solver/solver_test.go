package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/kaalam/panchangam/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	observability.NewLocalObserver()
}

func TestFindCrossingLinear(t *testing.T) {
	// f(jd) = jd * 12 degrees/day, crosses 180 at jd=15
	f := func(jd float64) (float64, error) {
		return mod360(jd * 12), nil
	}

	result, err := FindCrossing(context.Background(), 0, 30, 180, f, DefaultTolerance)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, result, 0.01)
}

func TestFindCrossingNearWraparound(t *testing.T) {
	// f crosses 0/360 boundary within the bracket
	f := func(jd float64) (float64, error) {
		return mod360(350 + jd*4), nil
	}

	result, err := FindCrossing(context.Background(), 0, 10, 0, f, DefaultTolerance)
	require.NoError(t, err)
	gotAngle := mod360(350 + result*4)
	assert.InDelta(t, 0.0, shortestSignedArc(gotAngle), 0.01)
}

func TestFindCrossingPropagatesError(t *testing.T) {
	boom := errors.New("ephemeris unavailable")
	f := func(jd float64) (float64, error) {
		return 0, boom
	}

	_, err := FindCrossing(context.Background(), 0, 1, 0, f, DefaultTolerance)
	assert.ErrorIs(t, err, boom)
}

func TestFindCrossingNonConvergenceReturnsMidpoint(t *testing.T) {
	// A function with no actual crossing in range (always positive diff)
	// still must return a value rather than erroring.
	f := func(jd float64) (float64, error) {
		return mod360(90 + jd), nil
	}

	result, err := FindCrossing(context.Background(), 0, 1, 0, f, DefaultTolerance)
	require.NoError(t, err)
	assert.True(t, result >= 0 && result <= 1)
}

func TestShortestSignedArc(t *testing.T) {
	assert.InDelta(t, 1.0, shortestSignedArc(361), 1e-9)
	assert.InDelta(t, -1.0, shortestSignedArc(-361), 1e-9)
	assert.InDelta(t, 179.0, shortestSignedArc(179), 1e-9)
	assert.InDelta(t, 180.0, shortestSignedArc(-180+360), 1e-9)
}

func mod360(x float64) float64 {
	x = x - 360*float64(int(x/360))
	if x < 0 {
		x += 360
	}
	return x
}
