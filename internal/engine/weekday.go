package engine

// CalculateWeekday returns the weekday index (0-based into the weekday
// cycle) of an ordinary month day. The result counts every elapsed day from
// the epoch except intercalary days whose countsForWeekdays flag is false;
// those are date-line placeholders that leave the cycle untouched.
func (e *Engine) CalculateWeekday(year, month, day int) (int, error) {
	d := Date{Year: year, Month: month, Day: day}
	if _, err := e.dayOfYearIndex(d); err != nil {
		return 0, err
	}
	return e.dateWeekday(d), nil
}

// dateWeekday computes the weekday for an already-validated date. Days
// inside a non-counting intercalary block share the weekday the cycle is
// paused on (the weekday of the next counting day).
func (e *Engine) dateWeekday(d Date) int {
	week := e.def.WeekLength()
	if week == 0 {
		return 0
	}

	counting := e.countingDaysToYearStart(d.Year) + int64(e.countingDaysBefore(d))
	w := int64(e.def.Year.StartDay) + counting + int64(e.weekdayOffset)
	return euclidMod(int(w%int64(week)), week)
}

// countingDaysToYearStart returns the signed number of weekday-advancing
// days from the epoch year's first day to the given year's first day.
func (e *Engine) countingDaysToYearStart(year int) int64 {
	epoch := e.def.EpochYear()
	var days int64
	switch {
	case year > epoch:
		for y := epoch; y < year; y++ {
			days += int64(e.countingDaysInYear(y))
		}
	case year < epoch:
		for y := year; y < epoch; y++ {
			days -= int64(e.countingDaysInYear(y))
		}
	}
	return days
}

// countingDaysInYear returns how many days of a year advance the weekday
// cycle.
func (e *Engine) countingDaysInYear(year int) int {
	total := 0
	for _, s := range e.yearSegments(year) {
		if s.counts {
			total += s.days
		}
	}
	return total
}

// countingDaysBefore returns the weekday-advancing days within the date's
// year strictly before the date itself.
func (e *Engine) countingDaysBefore(d Date) int {
	total := 0
	for _, s := range e.yearSegments(d.Year) {
		if s.month == d.Month && s.name == d.Intercalary {
			if s.counts {
				total += d.Day - 1
			}
			return total
		}
		if s.counts {
			total += s.days
		}
	}
	return total
}
