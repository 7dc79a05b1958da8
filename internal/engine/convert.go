package engine

import (
	"fmt"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
)

// leapTailName labels the synthetic block holding leap extra days when the
// leap rule names no month. Those days sit after the final month.
const leapTailName = "Leap Days"

// segment is one contiguous run of days within a year: a month, an
// intercalary block, or the unnamed leap tail. Years are fully described by
// an ordered segment list; every conversion walks it.
type segment struct {
	month  int    // 1-based anchor month
	days   int
	name   string // intercalary/leap-tail name; "" for month segments
	counts bool   // whether these days advance the weekday cycle
}

// IsLeapYear reports whether the given year gains (or loses) leap days.
// Custom-rule validity is checked once in New, so this never fails.
func (e *Engine) IsLeapYear(year int) bool {
	switch e.def.Leap.Rule {
	case calendar.LeapGregorian:
		return year%4 == 0 && (year%100 != 0 || year%400 == 0)
	case calendar.LeapCustom:
		return euclidMod(year-e.def.Leap.Offset, e.def.Leap.Interval) == 0
	default:
		return false
	}
}

// MonthLength returns the effective day count of a month (1-based) in a
// year, including leap extra days when the leap rule names this month.
func (e *Engine) MonthLength(month, year int) (int, error) {
	if month < 1 || month > len(e.def.Months) {
		return 0, &DateOutOfRangeError{Year: year, Month: month, Reason: fmt.Sprintf("month must be in [1, %d]", len(e.def.Months))}
	}
	m := e.def.Months[month-1]
	days := m.Days
	if e.IsLeapYear(year) && e.def.Leap.Month == m.Name {
		days += e.def.Leap.ExtraDays
	}
	return days, nil
}

// YearLength returns the total day count of a year: base months, leap extra
// days, and every intercalary block active that year.
func (e *Engine) YearLength(year int) int {
	total := 0
	for _, s := range e.yearSegments(year) {
		total += s.days
	}
	return total
}

// yearSegments builds the ordered day-run list for one year. Intercalary
// blocks appear before/after their anchor month; leap years widen the named
// leap month or append the unnamed leap tail.
func (e *Engine) yearSegments(year int) []segment {
	leap := e.IsLeapYear(year)
	segs := make([]segment, 0, len(e.def.Months)+len(e.def.Intercalary)+1)

	for i, m := range e.def.Months {
		for _, ic := range e.def.Intercalary {
			if ic.Before == m.Name && ic.After == "" && (leap || !ic.LeapYearOnly) {
				segs = append(segs, segment{month: i + 1, days: ic.Days, name: ic.Name, counts: ic.CountsForWeekdays})
			}
		}

		days := m.Days
		if leap && e.def.Leap.Month == m.Name {
			days += e.def.Leap.ExtraDays
		}
		segs = append(segs, segment{month: i + 1, days: days, counts: true})

		for _, ic := range e.def.Intercalary {
			if ic.After == m.Name && (leap || !ic.LeapYearOnly) {
				segs = append(segs, segment{month: i + 1, days: ic.Days, name: ic.Name, counts: ic.CountsForWeekdays})
			}
		}
	}

	if leap && e.def.Leap.Month == "" && e.def.Leap.ExtraDays != 0 {
		last := len(e.def.Months)
		if e.def.Leap.ExtraDays > 0 {
			segs = append(segs, segment{month: last, days: e.def.Leap.ExtraDays, name: leapTailName, counts: true})
		} else {
			// A negative unnamed delta shortens the final month. The loader
			// of the calendar pack is responsible for keeping it >= 1 day.
			for i := len(segs) - 1; i >= 0; i-- {
				if segs[i].name == "" {
					segs[i].days += e.def.Leap.ExtraDays
					break
				}
			}
		}
	}

	return segs
}

// daysToYearStart returns the signed day count from the first day of the
// epoch year to the first day of the given year.
func (e *Engine) daysToYearStart(year int) int64 {
	epoch := e.def.EpochYear()
	var days int64
	switch {
	case year > epoch:
		for y := epoch; y < year; y++ {
			days += int64(e.YearLength(y))
		}
	case year < epoch:
		for y := year; y < epoch; y++ {
			days -= int64(e.YearLength(y))
		}
	}
	return days
}

// daysBetweenYearStarts returns the day span from the first day of year a
// to the first day of year b.
func (e *Engine) daysBetweenYearStarts(a, b int) int64 {
	return e.daysToYearStart(b) - e.daysToYearStart(a)
}

// effectiveCurrentYear resolves the year worldTime=0 maps to under the
// real-time-based interpretation: world-creation timestamp first (epoch +
// real-world year), then the configured current year, then the epoch itself
// (pure epoch math).
func (e *Engine) effectiveCurrentYear() int {
	if e.worldCreation != nil {
		return e.def.EpochYear() + e.worldCreation.Year()
	}
	if cy := e.def.CurrentYear(); cy != 0 {
		return cy
	}
	return e.def.EpochYear()
}

// interpretationShift returns the whole-day shift applied to raw world-time
// day counts. Zero under the epoch-based interpretation.
func (e *Engine) interpretationShift() int64 {
	if e.def.WorldTime.Interpretation != calendar.InterpretationRealTime {
		return 0
	}
	return e.daysBetweenYearStarts(e.def.EpochYear(), e.effectiveCurrentYear())
}

// WorldTimeToDate converts a world-time seconds counter into a structured
// date. Negative counters resolve to dates before the reference point.
func (e *Engine) WorldTimeToDate(t int64) Date {
	spd := e.def.Time.SecondsPerDay()
	days := floorDiv(t, spd)
	rem := t - days*spd // in [0, spd)

	secsPerHour := int64(e.def.Time.MinutesInHour) * int64(e.def.Time.SecondsInMinute)
	tod := &TimeOfDay{
		Hour:   int(rem / secsPerHour),
		Minute: int((rem % secsPerHour) / int64(e.def.Time.SecondsInMinute)),
		Second: int(rem % int64(e.def.Time.SecondsInMinute)),
	}

	days += e.interpretationShift()

	// Walk whole years from the epoch until the remaining count fits.
	year := e.def.EpochYear()
	for days < 0 {
		year--
		days += int64(e.YearLength(year))
	}
	for yl := int64(e.YearLength(year)); days >= yl; yl = int64(e.YearLength(year)) {
		days -= yl
		year++
	}

	// Walk the year's segments to the owning month or intercalary block.
	d := Date{Year: year, Time: tod}
	remaining := int(days)
	for _, s := range e.yearSegments(year) {
		if remaining < s.days {
			d.Month = s.month
			d.Day = remaining + 1
			d.Intercalary = s.name
			break
		}
		remaining -= s.days
	}
	d.Weekday = e.dateWeekday(d)
	return d
}

// DateToWorldTime converts a structured date back into world-time seconds.
// Exact inverse of WorldTimeToDate for every valid date. Out-of-range
// month, day, or time components fail with DateOutOfRangeError.
func (e *Engine) DateToWorldTime(d Date) (int64, error) {
	offset, err := e.dayOfYearIndex(d)
	if err != nil {
		return 0, err
	}

	days := e.daysToYearStart(d.Year) + int64(offset) - e.interpretationShift()
	secs := days * e.def.Time.SecondsPerDay()

	if d.Time != nil {
		tu := e.def.Time
		if d.Time.Hour < 0 || d.Time.Hour >= tu.HoursInDay ||
			d.Time.Minute < 0 || d.Time.Minute >= tu.MinutesInHour ||
			d.Time.Second < 0 || d.Time.Second >= tu.SecondsInMinute {
			return 0, &DateOutOfRangeError{Year: d.Year, Month: d.Month, Day: d.Day,
				Reason: fmt.Sprintf("time %d:%d:%d outside %d/%d/%d units",
					d.Time.Hour, d.Time.Minute, d.Time.Second,
					tu.HoursInDay, tu.MinutesInHour, tu.SecondsInMinute)}
		}
		secs += int64(d.Time.Hour)*int64(tu.MinutesInHour)*int64(tu.SecondsInMinute) +
			int64(d.Time.Minute)*int64(tu.SecondsInMinute) +
			int64(d.Time.Second)
	}
	return secs, nil
}

// dayOfYearIndex returns the 0-based day index of a date within its year,
// validating month/day bounds (including intercalary block membership).
func (e *Engine) dayOfYearIndex(d Date) (int, error) {
	if d.Month < 1 || d.Month > len(e.def.Months) {
		return 0, &DateOutOfRangeError{Year: d.Year, Month: d.Month, Day: d.Day,
			Reason: fmt.Sprintf("month must be in [1, %d]", len(e.def.Months))}
	}

	offset := 0
	for _, s := range e.yearSegments(d.Year) {
		if s.month == d.Month && s.name == d.Intercalary {
			if d.Day < 1 || d.Day > s.days {
				return 0, &DateOutOfRangeError{Year: d.Year, Month: d.Month, Day: d.Day,
					Reason: fmt.Sprintf("day must be in [1, %d]", s.days)}
			}
			return offset + d.Day - 1, nil
		}
		offset += s.days
	}
	// No matching segment: the named intercalary block does not exist this
	// year (e.g. leap-year-only block outside a leap year).
	return 0, &DateOutOfRangeError{Year: d.Year, Month: d.Month, Day: d.Day,
		Reason: fmt.Sprintf("no day block %q in year %d", d.Intercalary, d.Year)}
}

// DayNumber returns the signed whole-day index of a date counted from the
// first day of the epoch year. The moon calculator and other consumers use
// this instead of naive calendar subtraction so leap and intercalary
// adjustments are honored.
func (e *Engine) DayNumber(d Date) (int64, error) {
	offset, err := e.dayOfYearIndex(d)
	if err != nil {
		return 0, err
	}
	return e.daysToYearStart(d.Year) + int64(offset), nil
}

// DayOfYear returns the 1-based ordinal of a date within its year,
// counting intercalary days.
func (e *Engine) DayOfYear(d Date) (int, error) {
	idx, err := e.dayOfYearIndex(d)
	if err != nil {
		return 0, err
	}
	return idx + 1, nil
}
