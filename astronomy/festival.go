package astronomy

import (
	"context"
	"fmt"

	"github.com/kaalam/panchangam/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TithiFestivalRule matches a festival to a specific Tithi, optionally
// restricted to a Tamil solar month. Month 0 matches any month.
type TithiFestivalRule struct {
	Name   string
	Type   string // "major", "minor", "regional"
	Month  int    // 0 = any Tamil month, 1-12 otherwise
	Tithi  int    // 1-30
	Paksha string // "Shukla" or "Krishna"; advisory only, not matched on
}

// NakshatraFestivalRule matches a festival to a specific Nakshatra,
// optionally restricted to a Tamil solar month. Month 0 matches any month.
type NakshatraFestivalRule struct {
	Name      string
	Type      string
	Month     int // 0 = any Tamil month
	Nakshatra int // 1-27
}

// FixedDateFestivalRule matches a festival to a fixed Gregorian month/day.
type FixedDateFestivalRule struct {
	Name  string
	Type  string
	Month int // 1-12
	Day   int // 1-31
}

// DefaultTithiFestivalRules are the built-in Tithi-based festival rules.
var DefaultTithiFestivalRules = []TithiFestivalRule{
	{Name: "Ekadashi", Type: "major", Month: 0, Tithi: 11, Paksha: "Shukla"},
	{Name: "Ekadashi", Type: "major", Month: 0, Tithi: 26, Paksha: "Krishna"},
	{Name: "Purnima", Type: "minor", Month: 0, Tithi: 15, Paksha: "Shukla"},
	{Name: "Amavasya", Type: "minor", Month: 0, Tithi: 30, Paksha: "Krishna"},
	{Name: "Vinayagar Chaturthi", Type: "major", Month: 5, Tithi: 4, Paksha: "Shukla"},
	{Name: "Deepavali", Type: "major", Month: 7, Tithi: 29, Paksha: "Krishna"},
	{Name: "Navami", Type: "minor", Month: 0, Tithi: 9, Paksha: "Shukla"},
}

// DefaultNakshatraFestivalRules are the built-in Nakshatra-based festival rules.
var DefaultNakshatraFestivalRules = []NakshatraFestivalRule{
	{Name: "Thiruvathirai", Type: "major", Month: 9, Nakshatra: 6},
	{Name: "Swati Festival", Type: "regional", Month: 0, Nakshatra: 15},
}

// DefaultFixedDateFestivalRules are the built-in fixed-date festival rules.
var DefaultFixedDateFestivalRules = []FixedDateFestivalRule{
	{Name: "Republic Day", Type: "government", Month: 1, Day: 26},
	{Name: "Independence Day", Type: "government", Month: 8, Day: 15},
	{Name: "Gandhi Jayanti", Type: "government", Month: 10, Day: 2},
	{Name: "Pongal", Type: "major", Month: 1, Day: 14},
}

// FestivalMatch is a festival matched against a specific civil date.
type FestivalMatch struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FestivalMatcher joins three independently injectable rule tables against
// a day's computed Tithi, Nakshatra and Tamil month to produce the list of
// festivals observed that day.
type FestivalMatcher struct {
	tithiRules     []TithiFestivalRule
	nakshatraRules []NakshatraFestivalRule
	fixedRules     []FixedDateFestivalRule
	observer       observability.ObserverInterface
}

// NewFestivalMatcher creates a FestivalMatcher from the given rule tables.
// Passing nil for any table falls back to that table's defaults.
func NewFestivalMatcher(tithiRules []TithiFestivalRule, nakshatraRules []NakshatraFestivalRule, fixedRules []FixedDateFestivalRule) *FestivalMatcher {
	if tithiRules == nil {
		tithiRules = DefaultTithiFestivalRules
	}
	if nakshatraRules == nil {
		nakshatraRules = DefaultNakshatraFestivalRules
	}
	if fixedRules == nil {
		fixedRules = DefaultFixedDateFestivalRules
	}

	return &FestivalMatcher{
		tithiRules:     tithiRules,
		nakshatraRules: nakshatraRules,
		fixedRules:     fixedRules,
		observer:       observability.Observer(),
	}
}

// Match returns the festivals observed on a civil day given its Tithi
// number, Nakshatra number, Tamil month index, and Gregorian month/day. The
// result is deduplicated by English name, preserving the first occurrence
// in the order Tithi-based, Nakshatra-based, then fixed-date rules.
func (fm *FestivalMatcher) Match(ctx context.Context, tithiNumber, nakshatraNumber, tamilMonthIndex, gregorianMonth, gregorianDay int) []FestivalMatch {
	_, span := fm.observer.CreateSpan(ctx, "FestivalMatcher.Match")
	defer span.End()

	span.SetAttributes(
		attribute.Int("tithi_number", tithiNumber),
		attribute.Int("nakshatra_number", nakshatraNumber),
		attribute.Int("tamil_month_index", tamilMonthIndex),
	)

	seen := make(map[string]bool)
	var matches []FestivalMatch

	for _, rule := range fm.tithiRules {
		if rule.Tithi != tithiNumber {
			continue
		}
		if rule.Month != 0 && rule.Month != tamilMonthIndex {
			continue
		}
		if seen[rule.Name] {
			continue
		}
		seen[rule.Name] = true
		matches = append(matches, FestivalMatch{Name: rule.Name, Type: rule.Type})
	}

	for _, rule := range fm.nakshatraRules {
		if rule.Nakshatra != nakshatraNumber {
			continue
		}
		if rule.Month != 0 && rule.Month != tamilMonthIndex {
			continue
		}
		if seen[rule.Name] {
			continue
		}
		seen[rule.Name] = true
		matches = append(matches, FestivalMatch{Name: rule.Name, Type: rule.Type})
	}

	for _, rule := range fm.fixedRules {
		if rule.Month != gregorianMonth || rule.Day != gregorianDay {
			continue
		}
		if seen[rule.Name] {
			continue
		}
		seen[rule.Name] = true
		matches = append(matches, FestivalMatch{Name: rule.Name, Type: rule.Type})
	}

	span.SetAttributes(attribute.Int("matched_count", len(matches)))
	span.AddEvent("Festival match completed", trace.WithAttributes(
		attribute.Int("matched_count", len(matches)),
	))

	return matches
}

// ValidateTithiFestivalRule checks internal consistency of a Tithi rule; the
// Paksha field is advisory and must agree with the Tithi number it names.
func ValidateTithiFestivalRule(rule TithiFestivalRule) error {
	if rule.Tithi < 1 || rule.Tithi > 30 {
		return fmt.Errorf("invalid tithi in rule %q: %d", rule.Name, rule.Tithi)
	}

	isShukla := rule.Tithi <= 15
	if rule.Paksha != "" {
		declaredShukla := rule.Paksha == "Shukla"
		if declaredShukla != isShukla {
			return fmt.Errorf("rule %q: paksha %s inconsistent with tithi %d", rule.Name, rule.Paksha, rule.Tithi)
		}
	}

	return nil
}
