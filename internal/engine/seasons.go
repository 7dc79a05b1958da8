package engine

import (
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
)

// SeasonInfo describes the season active on a date.
type SeasonInfo struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	// SunriseHour / SunsetHour are daylight hints in calendar hours, when
	// the season declares them.
	SunriseHour *int   `json:"sunriseHour,omitempty"`
	SunsetHour  *int   `json:"sunsetHour,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
}

// SeasonAt returns the season whose span contains the date, or nil when no
// season matches. Spans wrap across year end when the end precedes the
// start, and an end day exceeding its month's length overflows into
// subsequent months by the excess (documented behavior, not an error).
func (e *Engine) SeasonAt(d Date) (*SeasonInfo, error) {
	doy, err := e.DayOfYear(d)
	if err != nil {
		return nil, err
	}
	if len(e.def.Seasons) == 0 {
		return nil, nil
	}

	yl := e.YearLength(d.Year)
	for i := range e.def.Seasons {
		s := &e.def.Seasons[i]
		start, end, ok := e.seasonSpan(i, d.Year, yl)
		if !ok {
			continue
		}

		var contains bool
		if start <= end {
			contains = doy >= start && doy <= end
		} else {
			// Wrapped span (e.g. winter: late months into early months).
			contains = doy >= start || doy <= end
		}
		if contains {
			return &SeasonInfo{
				Name:        s.Name,
				Index:       i,
				SunriseHour: s.SunriseHour,
				SunsetHour:  s.SunsetHour,
				Icon:        s.Icon,
				Color:       s.Color,
			}, nil
		}
	}
	return nil, nil
}

// seasonSpan computes a season's [start, end] day-of-year span for a year.
// A season without an explicit end runs until the day before the next
// season's start, cyclically in declaration order.
func (e *Engine) seasonSpan(i, year, yearLen int) (start, end int, ok bool) {
	s := &e.def.Seasons[i]

	start, ok = e.startDayOfYear(s, year)
	if !ok {
		return 0, 0, false
	}

	if s.EndMonth != 0 {
		monthStart, err := e.monthStartDayOfYear(s.EndMonth, year)
		if err != nil {
			return 0, 0, false
		}
		endDay := s.EndDay
		if endDay == 0 {
			endDay, _ = e.MonthLength(s.EndMonth, year)
		}
		// Day-of-year arithmetic lets an oversized end day overflow into
		// the following months naturally; wrap past year end.
		end = (monthStart+endDay-2)%yearLen + 1
		return start, end, true
	}

	// Implicit end: the day before the next season's start.
	next := &e.def.Seasons[(i+1)%len(e.def.Seasons)]
	nextStart, nok := e.startDayOfYear(next, year)
	if !nok || len(e.def.Seasons) == 1 {
		// A single season (or a broken neighbor) covers the whole year.
		end = (start-2+yearLen)%yearLen + 1
		return start, end, true
	}
	end = (nextStart-2+yearLen)%yearLen + 1
	return start, end, true
}

// startDayOfYear resolves a season's starting day-of-year. StartDay
// defaults to the 1st of the start month.
func (e *Engine) startDayOfYear(s *calendar.Season, year int) (int, bool) {
	monthStart, err := e.monthStartDayOfYear(s.StartMonth, year)
	if err != nil {
		return 0, false
	}
	day := s.StartDay
	if day == 0 {
		day = 1
	}
	return monthStart + day - 1, true
}

// monthStartDayOfYear returns the 1-based day-of-year of a month's first
// day, intercalary blocks included.
func (e *Engine) monthStartDayOfYear(month, year int) (int, error) {
	idx, err := e.dayOfYearIndex(Date{Year: year, Month: month, Day: 1})
	if err != nil {
		return 0, err
	}
	return idx + 1, nil
}
