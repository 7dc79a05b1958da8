// Package format renders structured dates through a calendar's named
// format strings. Templates use {token} placeholders ({year}, {month.name},
// {day.ordinal}, ...) and may reference other named formats with
// {format:NAME}; cross references are resolved with an explicit visited set
// and fail closed on cycles instead of recursing unbounded.
package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/valyala/fasttemplate"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/engine"
)

// UnknownFormatError is returned when a named format is not declared by the
// calendar definition.
type UnknownFormatError struct {
	Name string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown date format %q", e.Name)
}

// CircularFormatError is returned when named formats reference each other
// in a cycle.
type CircularFormatError struct {
	Name string
}

func (e *CircularFormatError) Error() string {
	return fmt.Sprintf("circular date format reference through %q", e.Name)
}

// Renderer formats dates for one flattened definition. The template cache
// is unbounded; definitions place a small practical ceiling on distinct
// format strings.
type Renderer struct {
	def *calendar.Definition

	mu    sync.RWMutex
	cache map[string]*fasttemplate.Template
}

// New creates a Renderer for a flattened definition.
func New(def *calendar.Definition) *Renderer {
	return &Renderer{def: def, cache: make(map[string]*fasttemplate.Template)}
}

// Named renders a date through the calendar's named format.
func (r *Renderer) Named(name string, d engine.Date) (string, error) {
	tmpl, ok := r.def.Formats[name]
	if !ok {
		return "", &UnknownFormatError{Name: name}
	}
	return r.render(tmpl, d, map[string]bool{name: true})
}

// Render renders a date through an ad-hoc template string.
func (r *Renderer) Render(tmpl string, d engine.Date) (string, error) {
	return r.render(tmpl, d, map[string]bool{})
}

func (r *Renderer) render(tmpl string, d engine.Date, visited map[string]bool) (string, error) {
	t, err := r.template(tmpl)
	if err != nil {
		return "", err
	}
	return t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		val, err := r.token(strings.TrimSpace(tag), d, visited)
		if err != nil {
			return 0, err
		}
		return io.WriteString(w, val)
	})
}

// template returns a parsed template, caching by source string.
func (r *Renderer) template(tmpl string) (*fasttemplate.Template, error) {
	r.mu.RLock()
	t, ok := r.cache[tmpl]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := fasttemplate.NewTemplate(tmpl, "{", "}")
	if err != nil {
		return nil, fmt.Errorf("parsing date format: %w", err)
	}

	r.mu.Lock()
	r.cache[tmpl] = t
	r.mu.Unlock()
	return t, nil
}

// token resolves one placeholder. Unknown tokens render as themselves so a
// typo in a community calendar pack degrades visibly instead of erroring
// every date query.
func (r *Renderer) token(tag string, d engine.Date, visited map[string]bool) (string, error) {
	if name, ok := strings.CutPrefix(tag, "format:"); ok {
		if visited[name] {
			return "", &CircularFormatError{Name: name}
		}
		tmpl, ok := r.def.Formats[name]
		if !ok {
			return "", &UnknownFormatError{Name: name}
		}
		visited[name] = true
		out, err := r.render(tmpl, d, visited)
		delete(visited, name)
		return out, err
	}

	switch tag {
	case "year":
		return strconv.Itoa(d.Year), nil
	case "year.prefix":
		return r.def.Year.Prefix, nil
	case "year.suffix":
		return r.def.Year.Suffix, nil
	case "month":
		return strconv.Itoa(d.Month), nil
	case "month.name":
		if d.Intercalary != "" {
			return d.Intercalary, nil
		}
		if d.Month >= 1 && d.Month <= len(r.def.Months) {
			return r.def.Months[d.Month-1].Name, nil
		}
	case "month.abbr":
		if d.Month >= 1 && d.Month <= len(r.def.Months) {
			return r.def.Months[d.Month-1].Abbreviation, nil
		}
	case "day":
		return strconv.Itoa(d.Day), nil
	case "day.ordinal":
		return ordinal(d.Day), nil
	case "weekday":
		return strconv.Itoa(d.Weekday), nil
	case "weekday.name":
		if d.Intercalary != "" {
			return d.Intercalary, nil
		}
		if d.Weekday >= 0 && d.Weekday < len(r.def.Weekdays) {
			return r.def.Weekdays[d.Weekday].Name, nil
		}
	case "weekday.abbr":
		if d.Weekday >= 0 && d.Weekday < len(r.def.Weekdays) {
			return r.def.Weekdays[d.Weekday].Abbreviation, nil
		}
	case "intercalary":
		return d.Intercalary, nil
	case "hour":
		return pad(clockHour(d), r.def.Time.HoursInDay), nil
	case "minute":
		return pad(clockMinute(d), r.def.Time.MinutesInHour), nil
	case "second":
		return pad(clockSecond(d), r.def.Time.SecondsInMinute), nil
	}
	return "{" + tag + "}", nil
}

func clockHour(d engine.Date) int {
	if d.Time == nil {
		return 0
	}
	return d.Time.Hour
}

func clockMinute(d engine.Date) int {
	if d.Time == nil {
		return 0
	}
	return d.Time.Minute
}

func clockSecond(d engine.Date) int {
	if d.Time == nil {
		return 0
	}
	return d.Time.Second
}

// pad zero-pads a clock component to the width of its unit's largest value
// (24-hour days pad to 2 digits, a 100-hour day to 2, a 1000-hour day to 3).
func pad(v, unitSize int) string {
	width := len(strconv.Itoa(unitSize - 1))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("%0*d", width, v)
}

// ordinal renders 1 -> "1st", 2 -> "2nd", 11 -> "11th", etc.
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
