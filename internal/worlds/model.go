// Package worlds manages per-world calendar state: which calendar and
// variant a world uses, its world-time counter, and the host-integration
// knobs (world-creation timestamp, per-system weekday compatibility
// offsets). It exposes the full engine query surface over the REST API.
package worlds

import (
	"time"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/engine"
)

// World is one game world with its own clock and calendar selection.
type World struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// CalendarKey is the active selection: "calendarID" or
	// "calendarID(variantID)". A bare ID resolves to the calendar's
	// default variant when one is declared.
	CalendarKey string `json:"calendar_key"`

	// System identifies the host game system (e.g. "pf2e"). Selects the
	// entry of WeekdayOffsets applied to weekday computation.
	System string `json:"system,omitempty"`

	// WorldTime is the monotonic seconds counter the engine converts.
	WorldTime int64 `json:"world_time"`

	// CreatedTimestamp is the host's world-creation time. When present it
	// anchors the real-time-based world-time interpretation.
	CreatedTimestamp *time.Time `json:"created_timestamp,omitempty"`

	// WeekdayOffsets maps system IDs to signed weekday compatibility
	// offsets. A deliberate escape hatch for integrations whose expected
	// weekdays disagree with the epoch anchoring, not a correctness fix.
	WeekdayOffsets map[string]int `json:"weekday_offsets,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WeekdayOffset returns the compatibility offset for the world's system.
func (w *World) WeekdayOffset() int {
	if w.WeekdayOffsets == nil {
		return 0
	}
	return w.WeekdayOffsets[w.System]
}

// CreateWorldInput is the validated input for creating a world.
type CreateWorldInput struct {
	Name             string         `json:"name"`
	CalendarKey      string         `json:"calendar_key"`
	System           string         `json:"system"`
	CreatedTimestamp *time.Time     `json:"created_timestamp"`
	WeekdayOffsets   map[string]int `json:"weekday_offsets"`
}

// DateResponse pairs a world-time value with its structured date and a
// rendered display string.
type DateResponse struct {
	WorldTime int64       `json:"world_time"`
	Date      engine.Date `json:"date"`
	// Formatted is the date rendered through the calendar's "long" format
	// when the pack declares one; empty otherwise.
	Formatted string `json:"formatted,omitempty"`
}

// YearInfo summarizes one year of the active calendar.
type YearInfo struct {
	Year         int   `json:"year"`
	IsLeapYear   bool  `json:"is_leap_year"`
	YearLength   int   `json:"year_length"`
	MonthLengths []int `json:"month_lengths"`
}
