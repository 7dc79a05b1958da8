package calendar

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func baseDef() *Definition {
	return &Definition{
		ID:   "golarion",
		Name: "Golarion",
		Months: []Month{
			{Name: "Abadius", Days: 31},
			{Name: "Calistril", Days: 28},
		},
		Weekdays: []Weekday{{Name: "Moonday"}, {Name: "Toilday"}},
		Year:     YearConfig{Epoch: 2700, CurrentYear: 4725, Suffix: " AR"},
		Time:     TimeUnits{HoursInDay: 24, MinutesInHour: 60, SecondsInMinute: 60},
		Moons:    []Moon{{Name: "Somal", CycleLength: 29.5}},
		Formats:  map[string]string{"short": "{day}/{month}", "long": "{day} {month.name}"},
		Variants: []Variant{
			{
				ID:      "absalom-reckoning",
				Name:    "Absalom Reckoning",
				Default: true,
			},
			{
				ID:   "imperial-calendar",
				Name: "Imperial Calendar",
				Overrides: VariantOverrides{
					Year:   &YearOverride{Suffix: strPtr(" IC"), CurrentYear: intPtr(7925)},
					Months: map[string]MonthOverride{"Abadius": {Name: strPtr("Asmodeus")}},
					Formats: map[string]string{
						"short": "{day}.{month}",
					},
				},
			},
		},
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		key, wantID, wantVariant string
	}{
		{"golarion", "golarion", ""},
		{"golarion(imperial-calendar)", "golarion", "imperial-calendar"},
		{"golarion(", "golarion(", ""}, // malformed key stays whole
		{"", "", ""},
	}
	for _, tt := range tests {
		id, variant := ParseKey(tt.key)
		if id != tt.wantID || variant != tt.wantVariant {
			t.Errorf("ParseKey(%q) = (%q, %q), want (%q, %q)", tt.key, id, variant, tt.wantID, tt.wantVariant)
		}
	}
}

func TestKey_RoundTrip(t *testing.T) {
	key := Key("golarion", "imperial-calendar")
	id, variant := ParseKey(key)
	if id != "golarion" || variant != "imperial-calendar" {
		t.Errorf("round trip = (%q, %q)", id, variant)
	}
	if Key("golarion", "") != "golarion" {
		t.Errorf("bare key = %q, want golarion", Key("golarion", ""))
	}
}

func TestFlatten_EmptySelectsDefaultVariant(t *testing.T) {
	base := baseDef()

	flat, err := Flatten(base, "")
	if err != nil {
		t.Fatal(err)
	}
	if flat.ID != "golarion(absalom-reckoning)" {
		t.Errorf("ID = %q, want golarion(absalom-reckoning)", flat.ID)
	}
	if flat.Name != "Absalom Reckoning" {
		t.Errorf("Name = %q", flat.Name)
	}
	if len(flat.Variants) != 0 {
		t.Error("flattened definition must not carry variants")
	}
}

func TestFlatten_NoDefaultKeepsBase(t *testing.T) {
	base := baseDef()
	base.Variants[0].Default = false

	flat, err := Flatten(base, "")
	if err != nil {
		t.Fatal(err)
	}
	if flat.ID != "golarion" || flat.Name != "Golarion" {
		t.Errorf("flat = %q/%q, want bare base", flat.ID, flat.Name)
	}
}

func TestFlatten_OverridesMergeByName(t *testing.T) {
	base := baseDef()

	flat, err := Flatten(base, "imperial-calendar")
	if err != nil {
		t.Fatal(err)
	}

	if flat.Months[0].Name != "Asmodeus" {
		t.Errorf("month 0 = %q, want Asmodeus", flat.Months[0].Name)
	}
	// Untouched records survive the merge.
	if flat.Months[1].Name != "Calistril" || flat.Months[1].Days != 28 {
		t.Errorf("month 1 = %+v, want unchanged Calistril", flat.Months[1])
	}
	if flat.Year.Suffix != " IC" || flat.Year.CurrentYear != 7925 {
		t.Errorf("year = %+v, want IC suffix and 7925", flat.Year)
	}
	// Year fields without an override keep their base values.
	if flat.Year.Epoch != 2700 {
		t.Errorf("epoch = %d, want 2700", flat.Year.Epoch)
	}
	// Formats merge key by key.
	if flat.Formats["short"] != "{day}.{month}" {
		t.Errorf("short format = %q", flat.Formats["short"])
	}
	if flat.Formats["long"] != "{day} {month.name}" {
		t.Errorf("long format = %q, want base value", flat.Formats["long"])
	}
}

func TestFlatten_UnknownVariant(t *testing.T) {
	_, err := Flatten(baseDef(), "nope")
	var unknownErr *UnknownVariantError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %v, want UnknownVariantError", err)
	}
	if unknownErr.CalendarID != "golarion" || unknownErr.Variant != "nope" {
		t.Errorf("error fields = %+v", unknownErr)
	}
}

func TestFlatten_DoesNotMutateBase(t *testing.T) {
	base := baseDef()

	flat, err := Flatten(base, "imperial-calendar")
	if err != nil {
		t.Fatal(err)
	}
	flat.Months[1].Days = 99
	flat.Formats["short"] = "mutated"
	flat.Moons[0].Name = "mutated"

	if base.Months[0].Name != "Abadius" {
		t.Errorf("base month renamed to %q", base.Months[0].Name)
	}
	if base.Months[1].Days != 28 {
		t.Error("base month days mutated through flattened copy")
	}
	if base.Formats["short"] != "{day}/{month}" {
		t.Error("base formats mutated through flattened copy")
	}
	if base.Moons[0].Name != "Somal" {
		t.Error("base moons mutated through flattened copy")
	}
}

func TestFlatten_MoonsReplaceWholesale(t *testing.T) {
	base := baseDef()
	base.Variants[1].Overrides.Moons = []Moon{{Name: "Other", CycleLength: 10}}

	flat, err := Flatten(base, "imperial-calendar")
	if err != nil {
		t.Fatal(err)
	}
	if len(flat.Moons) != 1 || flat.Moons[0].Name != "Other" {
		t.Errorf("moons = %+v, want wholesale replacement", flat.Moons)
	}
}
