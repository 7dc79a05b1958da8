package format

import (
	"errors"
	"testing"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/engine"
)

func testDef() *calendar.Definition {
	return &calendar.Definition{
		ID: "fmt-test",
		Months: []calendar.Month{
			{Name: "January", Abbreviation: "Jan", Days: 31},
			{Name: "February", Abbreviation: "Feb", Days: 28},
		},
		Weekdays: []calendar.Weekday{
			{Name: "Sunday", Abbreviation: "Sun"},
			{Name: "Monday", Abbreviation: "Mon"},
		},
		Year: calendar.YearConfig{Epoch: 1970, Prefix: "AD ", Suffix: " CE"},
		Time: calendar.TimeUnits{HoursInDay: 24, MinutesInHour: 60, SecondsInMinute: 60},
		Formats: map[string]string{
			"short": "{day}/{month}/{year}",
			"long":  "{weekday.name}, {day.ordinal} of {month.name}, {year.prefix}{year}{year.suffix}",
			"time":  "{hour}:{minute}:{second}",
			"full":  "{format:long} {format:time}",
			"loopA": "{format:loopB}",
			"loopB": "{format:loopA}",
			"self":  "{format:self}",
		},
	}
}

func date() engine.Date {
	return engine.Date{
		Year: 1975, Month: 2, Day: 3, Weekday: 1,
		Time: &engine.TimeOfDay{Hour: 9, Minute: 5, Second: 0},
	}
}

func TestNamed_BasicTokens(t *testing.T) {
	r := New(testDef())

	got, err := r.Named("short", date())
	if err != nil {
		t.Fatal(err)
	}
	if got != "3/2/1975" {
		t.Errorf("short = %q, want 3/2/1975", got)
	}

	got, err = r.Named("long", date())
	if err != nil {
		t.Fatal(err)
	}
	want := "Monday, 3rd of February, AD 1975 CE"
	if got != want {
		t.Errorf("long = %q, want %q", got, want)
	}
}

func TestNamed_TimePadding(t *testing.T) {
	r := New(testDef())

	got, err := r.Named("time", date())
	if err != nil {
		t.Fatal(err)
	}
	if got != "09:05:00" {
		t.Errorf("time = %q, want 09:05:00", got)
	}
}

func TestNamed_MissingTimeRendersMidnight(t *testing.T) {
	r := New(testDef())

	d := date()
	d.Time = nil
	got, err := r.Named("time", d)
	if err != nil {
		t.Fatal(err)
	}
	if got != "00:00:00" {
		t.Errorf("time = %q, want 00:00:00", got)
	}
}

func TestNamed_EmbeddedFormats(t *testing.T) {
	r := New(testDef())

	got, err := r.Named("full", date())
	if err != nil {
		t.Fatal(err)
	}
	want := "Monday, 3rd of February, AD 1975 CE 09:05:00"
	if got != want {
		t.Errorf("full = %q, want %q", got, want)
	}
}

func TestNamed_CycleDetection(t *testing.T) {
	r := New(testDef())

	for _, name := range []string{"loopA", "self"} {
		_, err := r.Named(name, date())
		var cycleErr *CircularFormatError
		if !errors.As(err, &cycleErr) {
			t.Errorf("Named(%q) error = %v, want CircularFormatError", name, err)
		}
	}
}

func TestNamed_DiamondReferenceIsNotACycle(t *testing.T) {
	def := testDef()
	def.Formats["both"] = "{format:short} {format:short}"
	r := New(def)

	got, err := r.Named("both", date())
	if err != nil {
		t.Fatalf("repeated reference should not trip cycle detection: %v", err)
	}
	if got != "3/2/1975 3/2/1975" {
		t.Errorf("both = %q", got)
	}
}

func TestNamed_UnknownFormat(t *testing.T) {
	r := New(testDef())

	_, err := r.Named("nope", date())
	var unknownErr *UnknownFormatError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %v, want UnknownFormatError", err)
	}
}

func TestRender_UnknownTokenRendersLiterally(t *testing.T) {
	r := New(testDef())

	got, err := r.Render("{day} {bogus}", date())
	if err != nil {
		t.Fatal(err)
	}
	if got != "3 {bogus}" {
		t.Errorf("got %q, want literal bogus token", got)
	}
}

func TestRender_IntercalaryNames(t *testing.T) {
	r := New(testDef())

	d := engine.Date{Year: 1975, Month: 1, Day: 1, Intercalary: "Midwinter"}
	got, err := r.Render("{month.name} / {weekday.name} / {intercalary}", d)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Midwinter / Midwinter / Midwinter" {
		t.Errorf("got %q, want intercalary name for all three tokens", got)
	}
}

func TestRender_OrdinalSuffixes(t *testing.T) {
	r := New(testDef())

	tests := []struct {
		day  int
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"}, {31, "31st"},
	}
	for _, tt := range tests {
		d := engine.Date{Year: 1975, Month: 1, Day: tt.day}
		got, err := r.Render("{day.ordinal}", d)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("day %d = %q, want %q", tt.day, got, tt.want)
		}
	}
}

func TestRender_WidePadForLargeUnits(t *testing.T) {
	def := testDef()
	def.Time = calendar.TimeUnits{HoursInDay: 100, MinutesInHour: 100, SecondsInMinute: 100}
	r := New(def)

	d := engine.Date{Year: 1, Month: 1, Day: 1, Time: &engine.TimeOfDay{Hour: 7, Minute: 42, Second: 3}}
	got, err := r.Render("{hour}:{minute}:{second}", d)
	if err != nil {
		t.Fatal(err)
	}
	if got != "07:42:03" {
		t.Errorf("got %q, want 07:42:03 (two-digit pad for 100-unit clocks)", got)
	}
}
