package engine

import (
	"errors"
	"testing"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
)

// seasonDef attaches four explicit seasons to the gregorian fixture, with
// winter wrapping across the year boundary.
func seasonDef() *calendar.Definition {
	def := gregorianDef()
	def.Seasons = []calendar.Season{
		{Name: "Winter", StartMonth: 12, StartDay: 21, EndMonth: 3, EndDay: 19},
		{Name: "Spring", StartMonth: 3, StartDay: 20, EndMonth: 6, EndDay: 20},
		{Name: "Summer", StartMonth: 6, StartDay: 21, EndMonth: 9, EndDay: 21, SunriseHour: intPtr(5), SunsetHour: intPtr(21)},
		{Name: "Autumn", StartMonth: 9, StartDay: 22, EndMonth: 12, EndDay: 20},
	}
	return def
}

func TestSeasonAt_ExplicitSpans(t *testing.T) {
	e := mustEngine(t, seasonDef())

	tests := []struct {
		month, day int
		want       string
	}{
		{1, 15, "Winter"},  // wrapped head of winter
		{3, 19, "Winter"},  // last winter day
		{3, 20, "Spring"},  // first spring day
		{6, 21, "Summer"},
		{9, 21, "Summer"},
		{9, 22, "Autumn"},
		{12, 20, "Autumn"},
		{12, 21, "Winter"}, // wrapped tail of winter
		{12, 31, "Winter"},
	}
	for _, tt := range tests {
		season, err := e.SeasonAt(Date{Year: 1971, Month: tt.month, Day: tt.day})
		if err != nil {
			t.Fatalf("SeasonAt(%d-%d): %v", tt.month, tt.day, err)
		}
		if season == nil || season.Name != tt.want {
			t.Errorf("SeasonAt(%d-%d) = %+v, want %s", tt.month, tt.day, season, tt.want)
		}
	}
}

func TestSeasonAt_SunriseSunsetHints(t *testing.T) {
	e := mustEngine(t, seasonDef())

	season, err := e.SeasonAt(Date{Year: 1971, Month: 7, Day: 1})
	if err != nil {
		t.Fatal(err)
	}
	if season == nil || season.SunriseHour == nil || *season.SunriseHour != 5 {
		t.Errorf("summer sunrise = %+v, want 5", season)
	}
	if *season.SunsetHour != 21 {
		t.Errorf("summer sunset = %d, want 21", *season.SunsetHour)
	}

	season, _ = e.SeasonAt(Date{Year: 1971, Month: 1, Day: 1})
	if season == nil || season.SunriseHour != nil {
		t.Errorf("winter carries no daylight hints, got %+v", season)
	}
}

func TestSeasonAt_ImplicitEnds(t *testing.T) {
	def := gregorianDef()
	def.Seasons = []calendar.Season{
		{Name: "Bright", StartMonth: 4},
		{Name: "Dark", StartMonth: 10},
	}
	e := mustEngine(t, def)

	tests := []struct {
		month, day int
		want       string
	}{
		{4, 1, "Bright"},
		{9, 30, "Bright"}, // day before Dark starts
		{10, 1, "Dark"},
		{3, 31, "Dark"}, // wraps until the day before Bright
		{1, 1, "Dark"},
	}
	for _, tt := range tests {
		season, err := e.SeasonAt(Date{Year: 1971, Month: tt.month, Day: tt.day})
		if err != nil {
			t.Fatal(err)
		}
		if season == nil || season.Name != tt.want {
			t.Errorf("SeasonAt(%d-%d) = %+v, want %s", tt.month, tt.day, season, tt.want)
		}
	}
}

func TestSeasonAt_SingleSeasonCoversYear(t *testing.T) {
	def := gregorianDef()
	def.Seasons = []calendar.Season{{Name: "Always", StartMonth: 5, StartDay: 10}}
	e := mustEngine(t, def)

	for _, d := range []Date{
		{Year: 1971, Month: 1, Day: 1},
		{Year: 1971, Month: 5, Day: 10},
		{Year: 1971, Month: 5, Day: 9},
		{Year: 1971, Month: 12, Day: 31},
	} {
		season, err := e.SeasonAt(d)
		if err != nil {
			t.Fatal(err)
		}
		if season == nil || season.Name != "Always" {
			t.Errorf("SeasonAt(%+v) = %+v, want Always", d, season)
		}
	}
}

func TestSeasonAt_EndDayOverflowsIntoNextMonth(t *testing.T) {
	// endDay 35 in a 30-day April overflows five days into May.
	def := gregorianDef()
	def.Seasons = []calendar.Season{
		{Name: "Long", StartMonth: 4, StartDay: 1, EndMonth: 4, EndDay: 35},
		{Name: "Rest", StartMonth: 5, StartDay: 6, EndMonth: 3, EndDay: 31},
	}
	e := mustEngine(t, def)

	season, err := e.SeasonAt(Date{Year: 1971, Month: 5, Day: 5})
	if err != nil {
		t.Fatal(err)
	}
	if season == nil || season.Name != "Long" {
		t.Errorf("may 5 = %+v, want Long (overflowed span)", season)
	}

	season, _ = e.SeasonAt(Date{Year: 1971, Month: 5, Day: 6})
	if season == nil || season.Name != "Rest" {
		t.Errorf("may 6 = %+v, want Rest", season)
	}
}

func TestSeasonAt_NoSeasonsConfigured(t *testing.T) {
	e := mustEngine(t, gregorianDef())

	season, err := e.SeasonAt(Date{Year: 1971, Month: 1, Day: 1})
	if err != nil {
		t.Fatal(err)
	}
	if season != nil {
		t.Errorf("season = %+v, want nil for a calendar without seasons", season)
	}
}

func TestSeasonAt_InvalidDate(t *testing.T) {
	e := mustEngine(t, seasonDef())

	_, err := e.SeasonAt(Date{Year: 1971, Month: 2, Day: 30})
	var rangeErr *DateOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("error = %v, want DateOutOfRangeError", err)
	}
}

func TestSeasonAt_LeapYearShiftsLateSeasonDays(t *testing.T) {
	e := mustEngine(t, seasonDef())

	// The spans are recomputed per year, so the leap day does not push
	// late-year dates out of their season.
	season, err := e.SeasonAt(Date{Year: 1972, Month: 12, Day: 21})
	if err != nil {
		t.Fatal(err)
	}
	if season == nil || season.Name != "Winter" {
		t.Errorf("dec 21 of leap year = %+v, want Winter", season)
	}
	season, _ = e.SeasonAt(Date{Year: 1972, Month: 12, Day: 20})
	if season == nil || season.Name != "Autumn" {
		t.Errorf("dec 20 of leap year = %+v, want Autumn", season)
	}
}
