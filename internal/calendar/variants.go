package calendar

import (
	"fmt"
	"strings"
)

// UnknownVariantError is returned when a requested variant key does not
// exist on the base definition.
type UnknownVariantError struct {
	CalendarID string
	Variant    string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("calendar %q has no variant %q", e.CalendarID, e.Variant)
}

// ParseKey splits a calendar selection key of the form "id" or
// "id(variant)" into its parts.
func ParseKey(key string) (calendarID, variant string) {
	open := strings.IndexByte(key, '(')
	if open < 0 || !strings.HasSuffix(key, ")") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}

// Key builds a selection key from a calendar ID and variant ID.
func Key(calendarID, variant string) string {
	if variant == "" {
		return calendarID
	}
	return calendarID + "(" + variant + ")"
}

// Variant returns the variant with the given ID, or nil.
func (d *Definition) Variant(id string) *Variant {
	for i := range d.Variants {
		if d.Variants[i].ID == id {
			return &d.Variants[i]
		}
	}
	return nil
}

// DefaultVariant returns the variant marked default, or nil.
func (d *Definition) DefaultVariant() *Variant {
	for i := range d.Variants {
		if d.Variants[i].Default {
			return &d.Variants[i]
		}
	}
	return nil
}

// Flatten resolves a base definition plus a variant selection into one
// concrete definition. An empty variantID selects the default variant when
// one is declared -- the bare base is never directly addressable in that
// case. The result is a deep copy; the base is never mutated.
func Flatten(base *Definition, variantID string) (*Definition, error) {
	var v *Variant
	if variantID == "" {
		v = base.DefaultVariant()
	} else {
		v = base.Variant(variantID)
		if v == nil {
			return nil, &UnknownVariantError{CalendarID: base.ID, Variant: variantID}
		}
	}

	flat := base.clone()
	if v == nil {
		return flat, nil
	}

	flat.ID = Key(base.ID, v.ID)
	if v.Name != "" {
		flat.Name = v.Name
	}
	applyOverrides(flat, &v.Overrides)
	return flat, nil
}

// applyOverrides merges variant overrides onto a (freshly cloned) definition.
// Named sub-records merge by base name; moons and seasons replace wholesale;
// formats merge key by key.
func applyOverrides(d *Definition, o *VariantOverrides) {
	if o.Year != nil {
		y := &d.Year
		if o.Year.Epoch != nil {
			y.Epoch = *o.Year.Epoch
		}
		if o.Year.CurrentYear != nil {
			y.CurrentYear = *o.Year.CurrentYear
		}
		if o.Year.StartDay != nil {
			y.StartDay = *o.Year.StartDay
		}
		if o.Year.Prefix != nil {
			y.Prefix = *o.Year.Prefix
		}
		if o.Year.Suffix != nil {
			y.Suffix = *o.Year.Suffix
		}
	}
	if o.Leap != nil {
		d.Leap = *o.Leap
	}
	for name, mo := range o.Months {
		i := d.MonthByName(name)
		if i < 0 {
			continue
		}
		m := &d.Months[i]
		if mo.Name != nil {
			m.Name = *mo.Name
		}
		if mo.Abbreviation != nil {
			m.Abbreviation = *mo.Abbreviation
		}
		if mo.Days != nil {
			m.Days = *mo.Days
		}
	}
	for name, wo := range o.Weekdays {
		for i := range d.Weekdays {
			if d.Weekdays[i].Name != name {
				continue
			}
			if wo.Name != nil {
				d.Weekdays[i].Name = *wo.Name
			}
			if wo.Abbreviation != nil {
				d.Weekdays[i].Abbreviation = *wo.Abbreviation
			}
			break
		}
	}
	if o.Moons != nil {
		d.Moons = append([]Moon(nil), o.Moons...)
	}
	if o.Seasons != nil {
		d.Seasons = append([]Season(nil), o.Seasons...)
	}
	if len(o.Formats) > 0 {
		if d.Formats == nil {
			d.Formats = make(map[string]string, len(o.Formats))
		}
		for k, fv := range o.Formats {
			d.Formats[k] = fv
		}
	}
}

// clone deep-copies a definition so flattening never aliases base slices.
func (d *Definition) clone() *Definition {
	out := *d
	out.Months = append([]Month(nil), d.Months...)
	for i := range out.Months {
		out.Months[i].Extra = copyMap(d.Months[i].Extra)
	}
	out.Weekdays = append([]Weekday(nil), d.Weekdays...)
	out.Intercalary = append([]Intercalary(nil), d.Intercalary...)
	out.Moons = append([]Moon(nil), d.Moons...)
	for i := range out.Moons {
		out.Moons[i].Phases = append([]MoonPhase(nil), d.Moons[i].Phases...)
	}
	out.Seasons = append([]Season(nil), d.Seasons...)
	out.Events = append([]Event(nil), d.Events...)
	for i := range out.Events {
		out.Events[i].Exceptions = append([]EventException(nil), d.Events[i].Exceptions...)
	}
	out.Variants = nil // a flattened definition has no further variants
	out.Formats = copyStringMap(d.Formats)
	return &out
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
