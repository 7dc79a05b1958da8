package engine

import "fmt"

// DateOutOfRangeError is returned when a month/day/time input falls outside
// the calendar's legal bounds for the given year. The engine never silently
// clamps; callers wanting lenient fallback substitute their own value.
type DateOutOfRangeError struct {
	Year   int
	Month  int
	Day    int
	Reason string
}

func (e *DateOutOfRangeError) Error() string {
	return fmt.Sprintf("date %d-%d-%d out of range: %s", e.Year, e.Month, e.Day, e.Reason)
}

// InvalidLeapRuleError is returned for malformed custom leap rules
// (interval < 1).
type InvalidLeapRuleError struct {
	Interval int
}

func (e *InvalidLeapRuleError) Error() string {
	return fmt.Sprintf("invalid leap rule: interval %d must be >= 1", e.Interval)
}

// UnknownEventError is returned when an event ID is not present in the
// flattened definition.
type UnknownEventError struct {
	ID string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %q", e.ID)
}

// UnknownMoonError is returned when a moon name is not present in the
// flattened definition.
type UnknownMoonError struct {
	Name string
}

func (e *UnknownMoonError) Error() string {
	return fmt.Sprintf("unknown moon %q", e.Name)
}
