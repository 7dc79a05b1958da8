// Package calendar defines the declarative calendar definition model:
// months, weekday cycle, leap-year rule, intercalary day blocks, regional
// variants, moons, seasons, and recurring events. Definitions are loaded
// once (JSON or YAML), flattened through the variant resolver, and treated
// as immutable by every downstream consumer.
package calendar

// Leap-year rule constants.
const (
	// LeapNone disables leap years entirely.
	LeapNone = "none"
	// LeapGregorian applies the conventional 4/100/400 rule.
	LeapGregorian = "gregorian"
	// LeapCustom applies ((year - offset) mod interval) == 0.
	LeapCustom = "custom"
)

// World-time interpretation constants.
const (
	// InterpretationEpoch maps worldTime=0 directly to the epoch year.
	InterpretationEpoch = "epoch-based"
	// InterpretationRealTime maps worldTime=0 to the current year, shifting
	// the raw day count by the span between epoch and current year.
	InterpretationRealTime = "real-time-based"
)

// Event visibility constants.
const (
	VisibilityEveryone = "everyone"
	VisibilityGMOnly   = "gm_only"
)

// Definition is the top-level declarative calendar. Immutable once
// flattened; all engine math consumes exactly one flattened Definition.
type Definition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Months      []Month       `json:"months" yaml:"months"`
	Weekdays    []Weekday     `json:"weekdays" yaml:"weekdays"`
	Year        YearConfig    `json:"year" yaml:"year"`
	Leap        LeapRule      `json:"leapYear" yaml:"leapYear"`
	Intercalary []Intercalary `json:"intercalary,omitempty" yaml:"intercalary,omitempty"`
	Time        TimeUnits     `json:"time" yaml:"time"`
	WorldTime   WorldTimeConfig `json:"worldTime" yaml:"worldTime"`

	Variants []Variant `json:"variants,omitempty" yaml:"variants,omitempty"`
	Moons    []Moon    `json:"moons,omitempty" yaml:"moons,omitempty"`
	Seasons  []Season  `json:"seasons,omitempty" yaml:"seasons,omitempty"`
	Events   []Event   `json:"events,omitempty" yaml:"events,omitempty"`

	// Formats maps format names to template strings rendered by the
	// formatting layer. Engine math never reads these.
	Formats map[string]string `json:"dateFormats,omitempty" yaml:"dateFormats,omitempty"`
}

// Month is a named period with a fixed base day count. A day count of 1 is
// legal; degenerate single-month calendars are supported.
type Month struct {
	Name         string `json:"name" yaml:"name"`
	Abbreviation string `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
	Days         int    `json:"days" yaml:"days"`

	// Extra captures unknown wire fields at decode so community calendar
	// packs with extension data round-trip. Never consulted by the engine.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Weekday is a named day in the repeating cycle. Cycle length is simply
// len(Definition.Weekdays) and need not be 7.
type Weekday struct {
	Name         string `json:"name" yaml:"name"`
	Abbreviation string `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
}

// YearConfig anchors the calendar's year numbering.
type YearConfig struct {
	// Epoch is the year corresponding to the worldTime reference point.
	Epoch int `json:"epoch" yaml:"epoch"`
	// CurrentYear is the campaign's present year, used by the
	// real-time-based interpretation when no creation timestamp is known.
	CurrentYear int `json:"currentYear" yaml:"currentYear"`
	// StartDay is the weekday index the epoch's first day falls on.
	StartDay int    `json:"startDay" yaml:"startDay"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix   string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// LeapRule describes when years gain (or lose) days.
type LeapRule struct {
	// Rule is one of LeapNone, LeapGregorian, LeapCustom.
	Rule string `json:"rule" yaml:"rule"`
	// Interval applies to custom rules: leap every N years. Must be >= 1.
	Interval int `json:"interval,omitempty" yaml:"interval,omitempty"`
	// Offset shifts the year before the modulus test, enabling rules like
	// "every 8 years starting at 4708".
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`
	// ExtraDays is the signed day delta applied in leap years.
	ExtraDays int `json:"extraDays,omitempty" yaml:"extraDays,omitempty"`
	// Month names the month receiving ExtraDays. Empty means the delta is
	// appended to the end of the year instead of widening a month.
	Month string `json:"month,omitempty" yaml:"month,omitempty"`
}

// Intercalary is a block of days inserted outside the month sequence,
// anchored before or after a named month.
type Intercalary struct {
	Name string `json:"name" yaml:"name"`
	// After / Before name the anchor month. Exactly one should be set;
	// if both are, After wins.
	After  string `json:"after,omitempty" yaml:"after,omitempty"`
	Before string `json:"before,omitempty" yaml:"before,omitempty"`
	Days   int    `json:"days" yaml:"days"`
	// LeapYearOnly restricts the block to leap years.
	LeapYearOnly bool `json:"leapYearOnly,omitempty" yaml:"leapYearOnly,omitempty"`
	// CountsForWeekdays controls whether these days advance the weekday
	// cycle. When false the block is a date-line placeholder.
	CountsForWeekdays bool   `json:"countsForWeekdays,omitempty" yaml:"countsForWeekdays,omitempty"`
	Description       string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TimeUnits defines the sub-day unit system. All three must be >= 1;
// nothing in the engine assumes 24/60/60.
type TimeUnits struct {
	HoursInDay      int `json:"hoursInDay" yaml:"hoursInDay"`
	MinutesInHour   int `json:"minutesInHour" yaml:"minutesInHour"`
	SecondsInMinute int `json:"secondsInMinute" yaml:"secondsInMinute"`
}

// SecondsPerDay returns the length of one day in seconds.
func (t TimeUnits) SecondsPerDay() int64 {
	return int64(t.HoursInDay) * int64(t.MinutesInHour) * int64(t.SecondsInMinute)
}

// WorldTimeConfig governs how worldTime=0 maps to a calendar year.
type WorldTimeConfig struct {
	// Interpretation is InterpretationEpoch or InterpretationRealTime.
	Interpretation string `json:"interpretation" yaml:"interpretation"`
	// EpochYear overrides YearConfig.Epoch for world-time math when set.
	EpochYear int `json:"epochYear,omitempty" yaml:"epochYear,omitempty"`
	// CurrentYear overrides YearConfig.CurrentYear for world-time math.
	CurrentYear int `json:"currentYear,omitempty" yaml:"currentYear,omitempty"`
}

// Variant is a named partial override of the base definition (regional
// or era naming differences). Exactly one variant -- or the bare base --
// is active at a time.
type Variant struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Default marks the variant selected when a bare base calendar ID is
	// requested. At most one variant should carry it.
	Default   bool             `json:"default,omitempty" yaml:"default,omitempty"`
	Overrides VariantOverrides `json:"overrides" yaml:"overrides"`
}

// VariantOverrides carries the overridable fields of a variant. Named
// sub-records (months, weekdays) merge by name rather than replacing the
// whole array, so a variant can rename one month without redefining all
// twelve. Moons and seasons replace wholesale; formats merge by key.
type VariantOverrides struct {
	Year     *YearOverride              `json:"year,omitempty" yaml:"year,omitempty"`
	Leap     *LeapRule                  `json:"leapYear,omitempty" yaml:"leapYear,omitempty"`
	Months   map[string]MonthOverride   `json:"months,omitempty" yaml:"months,omitempty"`
	Weekdays map[string]WeekdayOverride `json:"weekdays,omitempty" yaml:"weekdays,omitempty"`
	Moons    []Moon                     `json:"moons,omitempty" yaml:"moons,omitempty"`
	Seasons  []Season                   `json:"seasons,omitempty" yaml:"seasons,omitempty"`
	Formats  map[string]string          `json:"dateFormats,omitempty" yaml:"dateFormats,omitempty"`

	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// YearOverride overrides individual YearConfig fields. Nil fields keep the
// base value.
type YearOverride struct {
	Epoch       *int    `json:"epoch,omitempty" yaml:"epoch,omitempty"`
	CurrentYear *int    `json:"currentYear,omitempty" yaml:"currentYear,omitempty"`
	StartDay    *int    `json:"startDay,omitempty" yaml:"startDay,omitempty"`
	Prefix      *string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix      *string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// MonthOverride overrides fields of the base month with the matching name.
type MonthOverride struct {
	Name         *string `json:"name,omitempty" yaml:"name,omitempty"`
	Abbreviation *string `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
	Days         *int    `json:"days,omitempty" yaml:"days,omitempty"`
}

// WeekdayOverride overrides fields of the base weekday with the matching name.
type WeekdayOverride struct {
	Name         *string `json:"name,omitempty" yaml:"name,omitempty"`
	Abbreviation *string `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
}

// RefDate is a bare calendar date used as a reference point (e.g. a moon's
// first new moon).
type RefDate struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
}

// Moon is a celestial body with a cyclical phase model. CycleLength may be
// fractional (e.g. 29.53059); the invariant is that phase lengths sum to it.
type Moon struct {
	Name string `json:"name" yaml:"name"`
	// CycleLength is the full phase cycle in days.
	CycleLength float64 `json:"cycleLength" yaml:"cycleLength"`
	// FirstNewMoon anchors day zero of the cycle.
	FirstNewMoon RefDate     `json:"firstNewMoon" yaml:"firstNewMoon"`
	Phases       []MoonPhase `json:"phases" yaml:"phases"`
	Color        string      `json:"color,omitempty" yaml:"color,omitempty"`
}

// MoonPhase is one segment of a moon's cycle.
type MoonPhase struct {
	Name string `json:"name" yaml:"name"`
	// Length is the nominal segment length in days.
	Length float64 `json:"length" yaml:"length"`
	// SingleDay phases occupy exactly one day regardless of Length.
	SingleDay bool   `json:"singleDay,omitempty" yaml:"singleDay,omitempty"`
	Icon      string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Season is a named span of the year. StartDay defaults to 1. A zero
// EndMonth means the season runs until the next season's start. EndDay may
// exceed the end month's length; the span overflows into subsequent months
// by the excess (documented behavior, not an error).
type Season struct {
	Name       string `json:"name" yaml:"name"`
	StartMonth int    `json:"startMonth" yaml:"startMonth"`
	StartDay   int    `json:"startDay,omitempty" yaml:"startDay,omitempty"`
	EndMonth   int    `json:"endMonth,omitempty" yaml:"endMonth,omitempty"`
	EndDay     int    `json:"endDay,omitempty" yaml:"endDay,omitempty"`
	// SunriseHour / SunsetHour are optional daylight hints in calendar hours.
	SunriseHour *int   `json:"sunriseHour,omitempty" yaml:"sunriseHour,omitempty"`
	SunsetHour  *int   `json:"sunsetHour,omitempty" yaml:"sunsetHour,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Recurrence rule type constants.
const (
	RecurrenceFixed    = "fixed"
	RecurrenceOrdinal  = "ordinal"
	RecurrenceInterval = "interval"
)

// Policies for fixed/interval rules whose literal day does not exist in a
// given year (e.g. Feb 29 outside leap years).
const (
	// DayPolicyNone means the event simply does not occur that year.
	DayPolicyNone = ""
	// DayPolicyLastDay clamps to the month's last day.
	DayPolicyLastDay = "lastDay"
	// DayPolicyBefore resolves to the last valid day strictly before the target.
	DayPolicyBefore = "beforeDay"
	// DayPolicyAfter resolves to the first day of the next month.
	DayPolicyAfter = "afterDay"
)

// Event is a recurring calendar entry.
type Event struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Recurrence  Recurrence `json:"recurrence" yaml:"recurrence"`
	// StartYear / EndYear bound the active window; nil means unbounded.
	StartYear  *int             `json:"startYear,omitempty" yaml:"startYear,omitempty"`
	EndYear    *int             `json:"endYear,omitempty" yaml:"endYear,omitempty"`
	Exceptions []EventException `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
	Visibility string           `json:"visibility,omitempty" yaml:"visibility,omitempty"`
}

// Recurrence is the policy determining which date(s) an event occupies.
type Recurrence struct {
	// Type is RecurrenceFixed, RecurrenceOrdinal, or RecurrenceInterval.
	Type  string `json:"type" yaml:"type"`
	Month int    `json:"month" yaml:"month"`
	// Day is the literal day for fixed/interval rules.
	Day int `json:"day,omitempty" yaml:"day,omitempty"`
	// Weekday and Occurrence drive ordinal rules: the Nth (1-4) weekday of
	// the month, or the last when Occurrence is -1.
	Weekday    int `json:"weekday,omitempty" yaml:"weekday,omitempty"`
	Occurrence int `json:"occurrence,omitempty" yaml:"occurrence,omitempty"`
	// IncludeIntercalary extends ordinal searches into weekday-counting
	// intercalary blocks attached to the month.
	IncludeIntercalary bool `json:"includeIntercalary,omitempty" yaml:"includeIntercalary,omitempty"`
	// IntervalYears / AnchorYear drive interval rules: the event occurs when
	// (year - AnchorYear) mod IntervalYears == 0.
	IntervalYears int `json:"intervalYears,omitempty" yaml:"intervalYears,omitempty"`
	AnchorYear    int `json:"anchorYear,omitempty" yaml:"anchorYear,omitempty"`
	// IfDayNotExists is one of the DayPolicy constants.
	IfDayNotExists string `json:"ifDayNotExists,omitempty" yaml:"ifDayNotExists,omitempty"`
}

// EventException adjusts a single year's occurrence.
type EventException struct {
	Year int `json:"year" yaml:"year"`
	// Action is "skip" or "move".
	Action string `json:"action" yaml:"action"`
	// Month/Day are the explicit relocation target for "move".
	Month int `json:"month,omitempty" yaml:"month,omitempty"`
	Day   int `json:"day,omitempty" yaml:"day,omitempty"`
}

// MonthByName returns the index (0-based) of the month with the given name,
// or -1 if absent.
func (d *Definition) MonthByName(name string) int {
	for i, m := range d.Months {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// WeekLength returns the weekday cycle length.
func (d *Definition) WeekLength() int {
	return len(d.Weekdays)
}

// EpochYear returns the year worldTime math anchors on: the world-time
// override when set, otherwise the year config's epoch.
func (d *Definition) EpochYear() int {
	if d.WorldTime.EpochYear != 0 {
		return d.WorldTime.EpochYear
	}
	return d.Year.Epoch
}

// CurrentYear returns the present campaign year for real-time-based math:
// the world-time override when set, otherwise the year config's value.
func (d *Definition) CurrentYear() int {
	if d.WorldTime.CurrentYear != 0 {
		return d.WorldTime.CurrentYear
	}
	return d.Year.CurrentYear
}
