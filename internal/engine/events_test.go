package engine

import (
	"errors"
	"testing"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
)

func intPtr(v int) *int { return &v }

// eventDef builds the gregorian fixture with a given event list.
func eventDef(events ...calendar.Event) *calendar.Definition {
	def := gregorianDef()
	def.Events = events
	return def
}

func TestEvents_FixedRecurrence(t *testing.T) {
	e := mustEngine(t, eventDef(calendar.Event{
		ID:         "new-year",
		Name:       "New Year",
		Recurrence: calendar.Recurrence{Type: calendar.RecurrenceFixed, Month: 1, Day: 1},
	}))

	occ, err := e.OccurrencesOnDate(Date{Year: 1975, Month: 1, Day: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 1 || occ[0].EventID != "new-year" {
		t.Fatalf("occurrences = %+v, want one new-year", occ)
	}
	if occ[0].Visibility != calendar.VisibilityEveryone {
		t.Errorf("visibility = %q, want default everyone", occ[0].Visibility)
	}

	occ, _ = e.OccurrencesOnDate(Date{Year: 1975, Month: 1, Day: 2})
	if len(occ) != 0 {
		t.Errorf("occurrences on jan 2 = %+v, want none", occ)
	}
}

func TestEvents_LeapDayPolicies(t *testing.T) {
	rec := func(policy string) calendar.Recurrence {
		return calendar.Recurrence{Type: calendar.RecurrenceFixed, Month: 2, Day: 29, IfDayNotExists: policy}
	}

	tests := []struct {
		name      string
		policy    string
		wantMonth int
		wantDay   int
		wantYear  int
		occurs    bool
	}{
		{"lastDay clamps", calendar.DayPolicyLastDay, 2, 28, 1971, true},
		{"beforeDay lands before", calendar.DayPolicyBefore, 2, 28, 1971, true},
		{"afterDay wraps to next month", calendar.DayPolicyAfter, 3, 1, 1971, true},
		{"no policy skips the year", calendar.DayPolicyNone, 0, 0, 1971, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustEngine(t, eventDef(calendar.Event{
				ID: "leap-feast", Name: "Leap Feast", Recurrence: rec(tt.policy),
			}))

			occ, err := e.OccurrencesInRange("leap-feast", 1971, 1971)
			if err != nil {
				t.Fatal(err)
			}
			if !tt.occurs {
				if len(occ) != 0 {
					t.Fatalf("occurrences = %+v, want none", occ)
				}
				return
			}
			if len(occ) != 1 {
				t.Fatalf("occurrences = %+v, want one", occ)
			}
			if occ[0].Year != tt.wantYear || occ[0].Month != tt.wantMonth || occ[0].Day != tt.wantDay {
				t.Errorf("got %d-%d-%d, want %d-%d-%d",
					occ[0].Year, occ[0].Month, occ[0].Day, tt.wantYear, tt.wantMonth, tt.wantDay)
			}

			// In an actual leap year the literal day holds.
			occ, _ = e.OccurrencesInRange("leap-feast", 1972, 1972)
			if len(occ) != 1 || occ[0].Month != 2 || occ[0].Day != 29 {
				t.Errorf("leap year occurrence = %+v, want feb 29", occ)
			}
		})
	}
}

func TestEvents_AfterDaySpillsIntoNextYear(t *testing.T) {
	// Day 32 of December never exists; afterDay pushes it to jan 1 of the
	// following year.
	e := mustEngine(t, eventDef(calendar.Event{
		ID:   "year-end",
		Name: "Year End",
		Recurrence: calendar.Recurrence{
			Type: calendar.RecurrenceFixed, Month: 12, Day: 32,
			IfDayNotExists: calendar.DayPolicyAfter,
		},
	}))

	occ, err := e.OccurrencesOnDate(Date{Year: 1975, Month: 1, Day: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 1 || occ[0].Year != 1975 {
		t.Fatalf("occurrences = %+v, want year-end spilled from 1974", occ)
	}

	// Range queries attribute the occurrence to its landing year.
	occs, err := e.OccurrencesInRange("year-end", 1975, 1975)
	if err != nil {
		t.Fatal(err)
	}
	if len(occs) != 1 || occs[0].Year != 1975 || occs[0].Month != 1 || occs[0].Day != 1 {
		t.Errorf("range = %+v, want single 1975-01-01", occs)
	}
}

func TestEvents_IntervalRecurrence(t *testing.T) {
	e := mustEngine(t, eventDef(calendar.Event{
		ID:   "games",
		Name: "The Games",
		Recurrence: calendar.Recurrence{
			Type: calendar.RecurrenceInterval, Month: 6, Day: 1,
			IntervalYears: 4, AnchorYear: 1972,
		},
	}))

	occ, err := e.OccurrencesInRange("games", 1970, 1981)
	if err != nil {
		t.Fatal(err)
	}
	var years []int
	for _, oc := range occ {
		years = append(years, oc.Year)
	}
	want := []int{1972, 1976, 1980}
	if len(years) != len(want) {
		t.Fatalf("years = %v, want %v", years, want)
	}
	for i := range want {
		if years[i] != want[i] {
			t.Fatalf("years = %v, want %v", years, want)
		}
	}

	// Anchors in the future still fire on past years at the right cadence.
	occ, _ = e.OccurrencesInRange("games", 1964, 1964)
	if len(occ) != 1 {
		t.Errorf("1964 occurrences = %+v, want one", occ)
	}
}

func TestEvents_OrdinalRecurrence(t *testing.T) {
	// First Monday of January 1970: jan 1 is Thursday(4), so Monday(1)
	// first lands on jan 5.
	e := mustEngine(t, eventDef(calendar.Event{
		ID:   "first-monday",
		Name: "First Monday",
		Recurrence: calendar.Recurrence{
			Type: calendar.RecurrenceOrdinal, Month: 1, Weekday: 1, Occurrence: 1,
		},
	}))

	occ, err := e.OccurrencesInRange("first-monday", 1970, 1970)
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 1 || occ[0].Day != 5 {
		t.Fatalf("occurrences = %+v, want jan 5", occ)
	}
	if occ[0].Weekday != 1 {
		t.Errorf("weekday = %d, want 1", occ[0].Weekday)
	}
}

func TestEvents_OrdinalLast(t *testing.T) {
	// Last Sunday of January 1970: sundays fall on 4, 11, 18, 25.
	e := mustEngine(t, eventDef(calendar.Event{
		ID:   "last-sunday",
		Name: "Last Sunday",
		Recurrence: calendar.Recurrence{
			Type: calendar.RecurrenceOrdinal, Month: 1, Weekday: 0, Occurrence: -1,
		},
	}))

	occ, err := e.OccurrencesInRange("last-sunday", 1970, 1970)
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 1 || occ[0].Day != 25 {
		t.Fatalf("occurrences = %+v, want jan 25", occ)
	}
}

func TestEvents_OrdinalFifthOccurrenceMayNotExist(t *testing.T) {
	// January 1970 has only four Mondays after jan 5 (5, 12, 19, 26);
	// asking for the fifth yields nothing.
	e := mustEngine(t, eventDef(calendar.Event{
		ID:   "fifth-monday",
		Name: "Fifth Monday",
		Recurrence: calendar.Recurrence{
			Type: calendar.RecurrenceOrdinal, Month: 1, Weekday: 1, Occurrence: 5,
		},
	}))

	occ, err := e.OccurrencesInRange("fifth-monday", 1970, 1970)
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 0 {
		t.Errorf("occurrences = %+v, want none", occ)
	}
}

func TestEvents_OrdinalWithoutWeekdaysNeverOccurs(t *testing.T) {
	def := eventDef(calendar.Event{
		ID:   "phantom",
		Name: "Phantom",
		Recurrence: calendar.Recurrence{
			Type: calendar.RecurrenceOrdinal, Month: 1, Weekday: 0, Occurrence: 1,
		},
	})
	def.Weekdays = nil
	e := mustEngine(t, def)

	occ, err := e.OccurrencesInRange("phantom", 1970, 1975)
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 0 {
		t.Errorf("occurrences = %+v, want none on weekday-less calendar", occ)
	}
}

func TestEvents_ActiveWindow(t *testing.T) {
	e := mustEngine(t, eventDef(calendar.Event{
		ID:        "era-feast",
		Name:      "Era Feast",
		StartYear: intPtr(1972),
		EndYear:   intPtr(1974),
		Recurrence: calendar.Recurrence{
			Type: calendar.RecurrenceFixed, Month: 5, Day: 10,
		},
	}))

	occ, err := e.OccurrencesInRange("era-feast", 1970, 1980)
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 3 {
		t.Fatalf("occurrences = %+v, want 1972..1974", occ)
	}
	for i, year := range []int{1972, 1973, 1974} {
		if occ[i].Year != year {
			t.Errorf("occ[%d].Year = %d, want %d", i, occ[i].Year, year)
		}
	}
}

func TestEvents_Exceptions(t *testing.T) {
	e := mustEngine(t, eventDef(calendar.Event{
		ID:   "festival",
		Name: "Festival",
		Recurrence: calendar.Recurrence{
			Type: calendar.RecurrenceFixed, Month: 7, Day: 4,
		},
		Exceptions: []calendar.EventException{
			{Year: 1972, Action: "skip"},
			{Year: 1973, Action: "move", Month: 7, Day: 11},
			{Year: 1974, Action: "move", Month: 2, Day: 31}, // invalid target
		},
	}))

	occ, err := e.OccurrencesInRange("festival", 1971, 1975)
	if err != nil {
		t.Fatal(err)
	}
	byYear := map[int]Occurrence{}
	for _, oc := range occ {
		byYear[oc.Year] = oc
	}

	if _, ok := byYear[1972]; ok {
		t.Error("1972 should be skipped")
	}
	moved, ok := byYear[1973]
	if !ok || moved.Day != 11 || !moved.Moved {
		t.Errorf("1973 = %+v, want moved to jul 11", moved)
	}
	if _, ok := byYear[1974]; ok {
		t.Error("1974 move target is invalid, occurrence should drop")
	}
	plain, ok := byYear[1975]
	if !ok || plain.Day != 4 || plain.Moved {
		t.Errorf("1975 = %+v, want unmodified jul 4", plain)
	}
}

func TestEvents_OnDateMatchesRange(t *testing.T) {
	// Every occurrence a range query reports must also be visible through
	// the on-date query, policies and exceptions included.
	e := mustEngine(t, eventDef(
		calendar.Event{
			ID:   "leap-feast",
			Name: "Leap Feast",
			Recurrence: calendar.Recurrence{
				Type: calendar.RecurrenceFixed, Month: 2, Day: 29,
				IfDayNotExists: calendar.DayPolicyAfter,
			},
		},
		calendar.Event{
			ID:   "year-end",
			Name: "Year End",
			Recurrence: calendar.Recurrence{
				Type: calendar.RecurrenceFixed, Month: 12, Day: 40,
				IfDayNotExists: calendar.DayPolicyAfter,
			},
		},
	))

	for _, id := range []string{"leap-feast", "year-end"} {
		occ, err := e.OccurrencesInRange(id, 1970, 1976)
		if err != nil {
			t.Fatal(err)
		}
		for _, oc := range occ {
			onDate, err := e.OccurrencesOnDate(Date{Year: oc.Year, Month: oc.Month, Day: oc.Day})
			if err != nil {
				t.Fatal(err)
			}
			found := false
			for _, od := range onDate {
				if od.EventID == id {
					found = true
				}
			}
			if !found {
				t.Errorf("%s occurrence %d-%d-%d missing from on-date query", id, oc.Year, oc.Month, oc.Day)
			}
		}
	}
}

func TestEvents_UnknownEvent(t *testing.T) {
	e := mustEngine(t, eventDef())

	_, err := e.OccurrencesInRange("nope", 1970, 1971)
	var unknownErr *UnknownEventError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %v, want UnknownEventError", err)
	}
}

func TestEvents_InvalidDateRejected(t *testing.T) {
	e := mustEngine(t, eventDef())

	_, err := e.OccurrencesOnDate(Date{Year: 1970, Month: 13, Day: 1})
	var rangeErr *DateOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("error = %v, want DateOutOfRangeError", err)
	}
}

func TestEvents_GMOnlyVisibilityPreserved(t *testing.T) {
	e := mustEngine(t, eventDef(calendar.Event{
		ID:         "secret",
		Name:       "Secret Rite",
		Visibility: calendar.VisibilityGMOnly,
		Recurrence: calendar.Recurrence{Type: calendar.RecurrenceFixed, Month: 3, Day: 3},
	}))

	occ, err := e.OccurrencesOnDate(Date{Year: 1970, Month: 3, Day: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 1 || occ[0].Visibility != calendar.VisibilityGMOnly {
		t.Errorf("occurrences = %+v, want gm_only visibility", occ)
	}
}
