package engine

import (
	"errors"
	"testing"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
)

// lunaDef attaches an earth-like moon to the gregorian fixture: a
// fractional 29.53059-day cycle of four single-day principal phases and
// four 6.3826475-day spans summing exactly to the cycle length.
func lunaDef() *calendar.Definition {
	def := gregorianDef()
	def.Moons = []calendar.Moon{{
		Name:         "Luna",
		CycleLength:  29.53059,
		FirstNewMoon: calendar.RefDate{Year: 1970, Month: 1, Day: 7},
		Phases: []calendar.MoonPhase{
			{Name: "New Moon", Length: 1, SingleDay: true},
			{Name: "Waxing Crescent", Length: 6.3826475},
			{Name: "First Quarter", Length: 1, SingleDay: true},
			{Name: "Waxing Gibbous", Length: 6.3826475},
			{Name: "Full Moon", Length: 1, SingleDay: true},
			{Name: "Waning Gibbous", Length: 6.3826475},
			{Name: "Last Quarter", Length: 1, SingleDay: true},
			{Name: "Waning Crescent", Length: 6.3826475},
		},
	}}
	return def
}

func TestPhaseAt_ReferenceDateIsNewMoon(t *testing.T) {
	e := mustEngine(t, lunaDef())
	moon := &e.Definition().Moons[0]

	info, err := e.PhaseAt(moon, Date{Year: 1970, Month: 1, Day: 7})
	if err != nil {
		t.Fatal(err)
	}
	if info.Phase != "New Moon" || info.PhaseIndex != 0 {
		t.Errorf("reference date phase = %+v, want New Moon", info)
	}
	if info.CycleDay != 0 {
		t.Errorf("CycleDay = %v, want 0", info.CycleDay)
	}
	if info.DayInPhase != 1 {
		t.Errorf("DayInPhase = %d, want 1", info.DayInPhase)
	}
}

func TestPhaseAt_SingleDayPhaseLastsOneDay(t *testing.T) {
	e := mustEngine(t, lunaDef())
	moon := &e.Definition().Moons[0]

	// The day after a single-day new moon must already be waxing.
	info, err := e.PhaseAt(moon, Date{Year: 1970, Month: 1, Day: 8})
	if err != nil {
		t.Fatal(err)
	}
	if info.Phase != "Waxing Crescent" {
		t.Errorf("day after new moon = %q, want Waxing Crescent", info.Phase)
	}
}

func TestPhaseAt_WalksAllPhases(t *testing.T) {
	e := mustEngine(t, lunaDef())
	moon := &e.Definition().Moons[0]

	// Over one full cycle starting at the reference, every phase appears
	// and phase indexes never move backwards.
	seen := map[string]bool{}
	lastIdx := -1
	for i := 0; i < 30; i++ {
		d := e.WorldTimeToDate(int64(6+i) * 86400) // jan 7 is day index 6
		info, err := e.PhaseAt(moon, d)
		if err != nil {
			t.Fatal(err)
		}
		seen[info.Phase] = true
		if info.PhaseIndex < lastIdx && i < 29 {
			t.Errorf("day %d: phase index fell from %d to %d", i, lastIdx, info.PhaseIndex)
		}
		if info.PhaseIndex >= lastIdx {
			lastIdx = info.PhaseIndex
		}
		if info.DaysUntilNext < 1 {
			t.Errorf("day %d: DaysUntilNext = %d, want >= 1", i, info.DaysUntilNext)
		}
	}
	for _, ph := range moon.Phases {
		if !seen[ph.Name] {
			t.Errorf("phase %q never appeared across a full cycle", ph.Name)
		}
	}
}

func TestPhaseAt_BeforeReferenceDate(t *testing.T) {
	e := mustEngine(t, lunaDef())
	moon := &e.Definition().Moons[0]

	// Dates before the first new moon still resolve: the cycle is reduced
	// modulo its length in both directions.
	info, err := e.PhaseAt(moon, Date{Year: 1969, Month: 6, Day: 1})
	if err != nil {
		t.Fatal(err)
	}
	if info.CycleDay < 0 || info.CycleDay >= moon.CycleLength {
		t.Errorf("CycleDay = %v, want within [0, %v)", info.CycleDay, moon.CycleLength)
	}
	if info.Phase == "" {
		t.Error("phase should resolve for pre-reference dates")
	}
}

func TestPhaseAt_FractionalCycleDoesNotDrift(t *testing.T) {
	e := mustEngine(t, lunaDef())
	moon := &e.Definition().Moons[0]

	// Many cycles later the fractional remainder must still be carried.
	// 1000 full cycles are 29530.59 days, so 29531 elapsed days land 0.41
	// days into a fresh cycle. A 29- or 30-day integer approximation would
	// be several days off by now.
	refNum, _ := e.DayNumber(Date{Year: 1970, Month: 1, Day: 7})
	far := e.WorldTimeToDate((refNum + 29531) * 86400)
	info, err := e.PhaseAt(moon, far)
	if err != nil {
		t.Fatal(err)
	}
	if info.CycleDay < 0.40 || info.CycleDay > 0.42 {
		t.Errorf("CycleDay after 29531 days = %v, want ~0.41 (fraction carried)", info.CycleDay)
	}
	if info.Phase != "New Moon" {
		t.Errorf("phase = %q, want New Moon", info.Phase)
	}
}

func TestPhaseAt_InvalidDate(t *testing.T) {
	e := mustEngine(t, lunaDef())
	moon := &e.Definition().Moons[0]

	_, err := e.PhaseAt(moon, Date{Year: 1970, Month: 2, Day: 30})
	var rangeErr *DateOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("error = %v, want DateOutOfRangeError", err)
	}
}

func TestMoonByName(t *testing.T) {
	e := mustEngine(t, lunaDef())

	if _, err := e.MoonByName("Luna"); err != nil {
		t.Errorf("MoonByName(Luna): %v", err)
	}

	_, err := e.MoonByName("Phobos")
	var unknownErr *UnknownMoonError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %v, want UnknownMoonError", err)
	}
}

func TestMoonPhases_AllMoons(t *testing.T) {
	def := lunaDef()
	def.Moons = append(def.Moons, calendar.Moon{
		Name:         "Minor",
		CycleLength:  10,
		FirstNewMoon: calendar.RefDate{Year: 1970, Month: 1, Day: 1},
		Phases: []calendar.MoonPhase{
			{Name: "Dark", Length: 5},
			{Name: "Bright", Length: 5},
		},
	})
	e := mustEngine(t, def)

	infos, err := e.MoonPhases(Date{Year: 1970, Month: 1, Day: 7})
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d moons, want 2", len(infos))
	}
	if infos[1].Moon != "Minor" || infos[1].Phase != "Bright" {
		t.Errorf("Minor on day 6 of cycle = %+v, want Bright", infos[1])
	}
}
