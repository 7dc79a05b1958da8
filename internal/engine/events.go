package engine

import (
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
)

// Occurrence is one concrete date an event occupies.
type Occurrence struct {
	EventID     string `json:"eventId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Day         int    `json:"day"`
	Weekday     int    `json:"weekday"`
	Intercalary string `json:"intercalary,omitempty"`
	Visibility  string `json:"visibility"`
	// Moved marks occurrences relocated by a "move" exception.
	Moved bool `json:"moved,omitempty"`
}

// OccurrencesOnDate returns every event occurring on the given date.
// Malformed events (ordinal rules on a calendar without weekdays, rules
// naming nonexistent months) are treated as never-occurring rather than
// failing: recurrence evaluation runs unattended on every date query and
// must not abort a whole batch for one bad event.
func (e *Engine) OccurrencesOnDate(d Date) ([]Occurrence, error) {
	if _, err := e.dayOfYearIndex(d); err != nil {
		return nil, err
	}

	var out []Occurrence
	for i := range e.def.Events {
		ev := &e.def.Events[i]
		// An afterDay policy can spill an occurrence into the following
		// year, so the previous rule year is a candidate producer too.
		for ruleYear := d.Year - 1; ruleYear <= d.Year; ruleYear++ {
			oc, ok := e.occurrenceForYear(ev, ruleYear)
			if ok && oc.Year == d.Year && oc.Month == d.Month && oc.Day == d.Day && oc.Intercalary == d.Intercalary {
				out = append(out, oc)
				break
			}
		}
	}
	return out, nil
}

// OccurrencesInRange returns the dates one event occupies across an
// inclusive year range.
func (e *Engine) OccurrencesInRange(eventID string, fromYear, toYear int) ([]Occurrence, error) {
	var ev *calendar.Event
	for i := range e.def.Events {
		if e.def.Events[i].ID == eventID {
			ev = &e.def.Events[i]
			break
		}
	}
	if ev == nil {
		return nil, &UnknownEventError{ID: eventID}
	}

	var out []Occurrence
	for ruleYear := fromYear - 1; ruleYear <= toYear; ruleYear++ {
		oc, ok := e.occurrenceForYear(ev, ruleYear)
		if ok && oc.Year >= fromYear && oc.Year <= toYear {
			out = append(out, oc)
		}
	}
	return out, nil
}

// occurrenceForYear resolves an event's recurrence rule for one rule year
// to at most one concrete occurrence, then applies the active window and
// per-year exceptions.
func (e *Engine) occurrenceForYear(ev *calendar.Event, ruleYear int) (Occurrence, bool) {
	rec := &ev.Recurrence

	var (
		year, month, day int
		intercalary      string
		ok               bool
	)
	switch rec.Type {
	case calendar.RecurrenceFixed:
		year, month, day, ok = e.resolveFixed(ruleYear, rec.Month, rec.Day, rec.IfDayNotExists)
	case calendar.RecurrenceInterval:
		if rec.IntervalYears < 1 || euclidMod(ruleYear-rec.AnchorYear, rec.IntervalYears) != 0 {
			return Occurrence{}, false
		}
		year, month, day, ok = e.resolveFixed(ruleYear, rec.Month, rec.Day, rec.IfDayNotExists)
	case calendar.RecurrenceOrdinal:
		year = ruleYear
		month, day, intercalary, ok = e.resolveOrdinal(ruleYear, rec)
	default:
		return Occurrence{}, false
	}
	if !ok {
		return Occurrence{}, false
	}

	// Active window, tested against the occurrence's own year.
	if ev.StartYear != nil && year < *ev.StartYear {
		return Occurrence{}, false
	}
	if ev.EndYear != nil && year > *ev.EndYear {
		return Occurrence{}, false
	}

	moved := false
	for _, ex := range ev.Exceptions {
		if ex.Year != year {
			continue
		}
		switch ex.Action {
		case "skip":
			return Occurrence{}, false
		case "move":
			// A move bypasses the recurrence rule entirely for this year.
			if _, err := e.dayOfYearIndex(Date{Year: year, Month: ex.Month, Day: ex.Day}); err != nil {
				return Occurrence{}, false
			}
			month, day, intercalary, moved = ex.Month, ex.Day, "", true
		}
		break
	}

	visibility := ev.Visibility
	if visibility == "" {
		visibility = calendar.VisibilityEveryone
	}
	return Occurrence{
		EventID:     ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		Year:        year,
		Month:       month,
		Day:         day,
		Weekday:     e.dateWeekday(Date{Year: year, Month: month, Day: day, Intercalary: intercalary}),
		Intercalary: intercalary,
		Visibility:  visibility,
		Moved:       moved,
	}, true
}

// resolveFixed resolves a literal (month, day) for a year, applying the
// ifDayNotExists policy when the day does not exist that year.
func (e *Engine) resolveFixed(year, month, day int, policy string) (int, int, int, bool) {
	if month < 1 || month > len(e.def.Months) || day < 1 {
		return 0, 0, 0, false
	}
	ml, err := e.MonthLength(month, year)
	if err != nil {
		return 0, 0, 0, false
	}
	if day <= ml {
		return year, month, day, true
	}

	switch policy {
	case calendar.DayPolicyLastDay:
		return year, month, ml, true
	case calendar.DayPolicyBefore:
		// Last valid day strictly before the target.
		before := day - 1
		if before > ml {
			before = ml
		}
		return year, month, before, true
	case calendar.DayPolicyAfter:
		if month == len(e.def.Months) {
			return year + 1, 1, 1, true
		}
		return year, month + 1, 1, true
	default:
		return 0, 0, 0, false
	}
}

// resolveOrdinal finds the Nth (or, for occurrence -1, the last) day of the
// month falling on the rule's weekday. With includeIntercalary set, the
// search extends into weekday-counting intercalary blocks attached to the
// month; non-counting blocks never participate since their days carry no
// weekday of their own.
func (e *Engine) resolveOrdinal(year int, rec *calendar.Recurrence) (int, int, string, bool) {
	if e.def.WeekLength() == 0 {
		return 0, 0, "", false
	}
	if rec.Month < 1 || rec.Month > len(e.def.Months) {
		return 0, 0, "", false
	}

	type match struct {
		day  int
		name string
	}
	var matches []match
	for _, s := range e.yearSegments(year) {
		if s.month != rec.Month {
			continue
		}
		if s.name != "" && (!rec.IncludeIntercalary || !s.counts) {
			continue
		}
		for day := 1; day <= s.days; day++ {
			wd := e.dateWeekday(Date{Year: year, Month: rec.Month, Day: day, Intercalary: s.name})
			if wd == rec.Weekday {
				matches = append(matches, match{day: day, name: s.name})
			}
		}
	}

	var pick match
	switch {
	case rec.Occurrence == -1 && len(matches) > 0:
		pick = matches[len(matches)-1]
	case rec.Occurrence >= 1 && rec.Occurrence <= len(matches):
		pick = matches[rec.Occurrence-1]
	default:
		return 0, 0, "", false
	}
	return rec.Month, pick.day, pick.name, true
}
