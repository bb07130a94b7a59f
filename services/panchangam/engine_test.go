package panchangam

import (
	"context"
	"testing"
	"time"

	"github.com/kaalam/panchangam/astronomy"
	"github.com/kaalam/panchangam/astronomy/ephemeris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine wires an Engine around the real analytic ephemeris provider,
// closed-form and deterministic, so the orchestration is exercised
// end-to-end without any network or data-file dependency.
func newTestEngine() *Engine {
	manager := ephemeris.NewManager(ephemeris.NewAnalyticProvider(), nil, ephemeris.NewNoOpCache())
	return NewEngine(manager, nil)
}

func TestEngineDailyHappyPath(t *testing.T) {
	e := newTestEngine()

	req := Request{
		Date:          time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC),
		Zone:          time.UTC,
		Latitude:      13.0827,
		Longitude:     80.2707,
		TamilDateMode: astronomy.TamilDateModeSankranti,
	}

	report, err := e.Daily(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.False(t, report.Incomplete)
	assert.True(t, report.Sunset.After(report.Sunrise))

	require.NotNil(t, report.Tithi)
	assert.NoError(t, astronomy.ValidateTithiCalculation(report.Tithi))

	require.NotNil(t, report.Nakshatra)
	require.NotNil(t, report.Yoga)
	require.NotNil(t, report.Karana)

	require.NotNil(t, report.MoonRasi)
	assert.NoError(t, astronomy.ValidateRasiCalculation(report.MoonRasi))

	require.NotNil(t, report.Vara)
	assert.Equal(t, report.Sunrise.Weekday(), weekdayForVara(report.Vara.Name))

	require.NotNil(t, report.TamilDate)
	assert.NoError(t, astronomy.ValidateTamilDate(report.TamilDate))

	require.NotNil(t, report.DaySegments)
	assert.NoError(t, astronomy.ValidateDaySegments(report.DaySegments, report.Sunrise, report.Sunset))

	assert.NotEmpty(t, report.LagnamIntervals)
	assert.Nil(t, report.Chandrashtama)
}

// weekdayForVara maps a Vara name back to its Gregorian weekday via
// VaraData (keyed 1=Sunday..7=Saturday), to cross-check the computed Vara
// against the sunrise's own civil weekday.
func weekdayForVara(name string) time.Weekday {
	for varaNumber, info := range astronomy.VaraData {
		if info.Name == name {
			return time.Weekday(varaNumber - 1)
		}
	}
	return -1
}

func TestEngineDailyWithChandrashtama(t *testing.T) {
	e := newTestEngine()
	birthNakshatra := 5

	req := Request{
		Date:           time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC),
		Zone:           time.UTC,
		Latitude:       13.0827,
		Longitude:      80.2707,
		BirthNakshatra: &birthNakshatra,
	}

	report, err := e.Daily(context.Background(), req)

	require.NoError(t, err)
	// With the real analytic provider, the transiting Moon may or may not
	// actually sit in the 8th rasi from this birth Nakshatra on this date;
	// the report field is populated only in the active case, and nil
	// otherwise - both are valid outcomes, but if non-nil it must be active.
	if report.Chandrashtama != nil {
		assert.True(t, report.Chandrashtama.Active)
		assert.NoError(t, astronomy.ValidateChandrashtamaCalculation(report.Chandrashtama))
	}
}

func TestEngineDailyIncompleteAtPolarNight(t *testing.T) {
	e := newTestEngine()

	req := Request{
		Date:      time.Date(2026, 12, 21, 0, 0, 0, 0, time.UTC),
		Zone:      time.UTC,
		Latitude:  80.0,
		Longitude: 0.0,
	}

	report, err := e.Daily(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.True(t, report.Incomplete)
	assert.Nil(t, report.Tithi)
	assert.Nil(t, report.TamilDate)
}

func TestEngineDailyRejectsNilZone(t *testing.T) {
	e := newTestEngine()

	_, err := e.Daily(context.Background(), Request{
		Date:      time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC),
		Latitude:  13.0,
		Longitude: 80.0,
	})

	assert.Error(t, err)
}

func TestEngineDailyRejectsOutOfRangeLatitude(t *testing.T) {
	e := newTestEngine()

	_, err := e.Daily(context.Background(), Request{
		Date:      time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC),
		Zone:      time.UTC,
		Latitude:  91.0,
		Longitude: 80.0,
	})

	assert.Error(t, err)
}

func TestEngineDailyRejectsOutOfRangeLongitude(t *testing.T) {
	e := newTestEngine()

	_, err := e.Daily(context.Background(), Request{
		Date:      time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC),
		Zone:      time.UTC,
		Latitude:  13.0,
		Longitude: 200.0,
	})

	assert.Error(t, err)
}
