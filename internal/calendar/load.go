package calendar

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Builtin calendar packs shipped with the engine. Community packs are
// loaded from CALENDAR_DIR at startup and layered on top.
//
//go:embed builtin/*.json
var builtinFS embed.FS

// Decode parses a calendar definition from JSON or YAML, chosen by the
// file name's extension (".yaml"/".yml" selects YAML, anything else JSON).
// Only decode-level sanity is enforced here; the wire format is assumed to
// be validated by the producing tool, per the engine's contract.
func Decode(data []byte, name string) (*Definition, error) {
	var def Definition
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
	}
	if err := def.sanity(); err != nil {
		return nil, fmt.Errorf("calendar %s: %w", name, err)
	}
	return &def, nil
}

// sanity applies the handful of structural checks without which no engine
// math is possible. Schema-level validation is a data-entry concern and
// deliberately not done here.
func (d *Definition) sanity() error {
	if d.ID == "" {
		return fmt.Errorf("missing id")
	}
	if len(d.Months) == 0 {
		return fmt.Errorf("at least one month is required")
	}
	for _, m := range d.Months {
		if m.Days < 1 {
			return fmt.Errorf("month %q: day count must be >= 1", m.Name)
		}
	}
	// Unset time units default to 24/60/60 so packs that omit the block work.
	if d.Time == (TimeUnits{}) {
		d.Time = TimeUnits{HoursInDay: 24, MinutesInHour: 60, SecondsInMinute: 60}
	}
	if d.Time.HoursInDay < 1 || d.Time.MinutesInHour < 1 || d.Time.SecondsInMinute < 1 {
		return fmt.Errorf("time units must all be >= 1")
	}
	return nil
}

// LoadFile reads and decodes a single calendar definition file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading calendar file: %w", err)
	}
	return Decode(data, path)
}

// LoadDir loads every *.json, *.yaml and *.yml calendar definition in a
// directory (non-recursive), sorted by file name for stable ordering.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading calendar dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]*Definition, 0, len(names))
	for _, name := range names {
		def, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Builtin returns the embedded calendar packs.
func Builtin() ([]*Definition, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("reading builtin calendars: %w", err)
	}

	defs := make([]*Definition, 0, len(entries))
	for _, e := range entries {
		data, err := builtinFS.ReadFile("builtin/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading builtin calendar %s: %w", e.Name(), err)
		}
		def, err := Decode(data, e.Name())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}
