package engine

import (
	"math"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
)

// MoonPhaseInfo describes where a date falls within one moon's cycle.
type MoonPhaseInfo struct {
	Moon       string `json:"moon"`
	Phase      string `json:"phase"`
	PhaseIndex int    `json:"phaseIndex"`
	// DayInPhase is 1-based within the phase segment.
	DayInPhase int `json:"dayInPhase"`
	// DaysUntilNext counts whole days until the next phase begins.
	DaysUntilNext int    `json:"daysUntilNext"`
	Icon          string `json:"icon,omitempty"`
	// CycleDay is the fractional day offset into the cycle, carried at
	// double precision; truncating it is the dominant source of long-term
	// phase drift.
	CycleDay float64 `json:"cycleDay"`
}

// PhaseAt computes the phase of one moon on a date. Elapsed days are
// counted through the conversion core so leap and intercalary bookkeeping
// is honored, then reduced modulo the (possibly fractional) cycle length.
func (e *Engine) PhaseAt(moon *calendar.Moon, d Date) (MoonPhaseInfo, error) {
	dayNum, err := e.DayNumber(d.AtMidnight())
	if err != nil {
		return MoonPhaseInfo{}, err
	}

	ref := Date{Year: moon.FirstNewMoon.Year, Month: moon.FirstNewMoon.Month, Day: moon.FirstNewMoon.Day}
	refNum, err := e.DayNumber(ref)
	if err != nil {
		return MoonPhaseInfo{}, err
	}

	offset := math.Mod(float64(dayNum-refNum), moon.CycleLength)
	if offset < 0 {
		offset += moon.CycleLength
	}

	info := MoonPhaseInfo{Moon: moon.Name, CycleDay: offset}
	cum := 0.0
	for i, ph := range moon.Phases {
		length := ph.Length
		if ph.SingleDay {
			length = 1
		}
		end := cum + length
		if offset < end || i == len(moon.Phases)-1 {
			info.Phase = ph.Name
			info.PhaseIndex = i
			info.Icon = ph.Icon
			info.DayInPhase = int(offset-cum) + 1
			info.DaysUntilNext = int(math.Ceil(end - offset))
			if info.DaysUntilNext < 1 {
				info.DaysUntilNext = 1
			}
			return info, nil
		}
		cum = end
	}
	return info, nil
}

// MoonByName returns the moon with the given name.
func (e *Engine) MoonByName(name string) (*calendar.Moon, error) {
	for i := range e.def.Moons {
		if e.def.Moons[i].Name == name {
			return &e.def.Moons[i], nil
		}
	}
	return nil, &UnknownMoonError{Name: name}
}

// MoonPhases computes the phase of every moon on a date.
func (e *Engine) MoonPhases(d Date) ([]MoonPhaseInfo, error) {
	infos := make([]MoonPhaseInfo, 0, len(e.def.Moons))
	for i := range e.def.Moons {
		info, err := e.PhaseAt(&e.def.Moons[i], d)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
