// Package engine implements the calendar computations over one flattened
// calendar definition: bidirectional worldTime/date conversion, leap-year
// and intercalary-day bookkeeping, weekday calculation, moon phases, event
// recurrence, and season resolution.
//
// Every method is a pure function of the immutable definition the engine
// was built with; the engine holds no mutable state and is safe for
// concurrent use.
package engine

import (
	"time"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
)

// Engine answers calendar queries for a single flattened definition.
type Engine struct {
	def *calendar.Definition

	// worldCreation, when set, anchors the real-time-based interpretation:
	// the campaign's current year becomes epoch + the timestamp's real year.
	worldCreation *time.Time

	// weekdayOffset is the per-system compatibility offset applied after
	// the principled weekday computation. An escape hatch for integrations
	// whose historical weekday alignment disagrees with the epoch anchor,
	// not a correctness mechanism.
	weekdayOffset int
}

// Option configures optional engine behavior.
type Option func(*Engine)

// WithWorldCreationTime supplies the host's world-creation timestamp,
// shifting the real-time-based interpretation's reference point.
func WithWorldCreationTime(ts time.Time) Option {
	return func(e *Engine) {
		t := ts
		e.worldCreation = &t
	}
}

// WithWeekdayOffset installs a signed compatibility offset added to every
// computed weekday index.
func WithWeekdayOffset(offset int) Option {
	return func(e *Engine) {
		e.weekdayOffset = offset
	}
}

// New builds an engine over a flattened definition. The definition must not
// be mutated afterwards. Returns InvalidLeapRuleError for malformed custom
// leap rules so later calls never have to re-check.
func New(def *calendar.Definition, opts ...Option) (*Engine, error) {
	if def.Leap.Rule == calendar.LeapCustom && def.Leap.Interval < 1 {
		return nil, &InvalidLeapRuleError{Interval: def.Leap.Interval}
	}
	e := &Engine{def: def}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Definition returns the flattened definition the engine computes over.
func (e *Engine) Definition() *calendar.Definition {
	return e.def
}

// TimeOfDay is a sub-day instant in the calendar's own time units.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// Date is a structured calendar date. A freely copied value type; the
// engine creates a fresh one on every conversion.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-based
	Day   int `json:"day"`   // 1-based within the month or intercalary block
	// Weekday is the derived index into the weekday cycle. Recomputed from
	// (year, month, day) internally, never trusted as caller input.
	Weekday int `json:"weekday"`
	// Intercalary names the intercalary block this day belongs to. Empty
	// for ordinary month days; when set, Day indexes into the block and
	// Month is the block's anchor month.
	Intercalary string     `json:"intercalary,omitempty"`
	Time        *TimeOfDay `json:"time,omitempty"`
}

// AtMidnight returns a copy of d with no sub-day component.
func (d Date) AtMidnight() Date {
	d.Time = nil
	return d
}

// euclidMod normalizes a mod b into [0, b). b must be positive.
func euclidMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// floorDiv divides rounding toward negative infinity, so negative world
// times walk backward symmetrically.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
