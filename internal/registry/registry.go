// Package registry holds every loaded calendar definition and hands out
// flattened (base + variant) definitions by selection key. Flattened
// definitions are immutable and cached; the active selection is published
// by replacing a single pointer, never by mutating in place, so concurrent
// readers always observe one fully-resolved definition.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
)

// UnknownCalendarError is returned when a selection key names a calendar ID
// that was never loaded.
type UnknownCalendarError struct {
	ID string
}

func (e *UnknownCalendarError) Error() string {
	return fmt.Sprintf("unknown calendar %q", e.ID)
}

// Summary is a registry listing entry.
type Summary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Variants    []string `json:"variants,omitempty"`
	// Default names the variant selected for the bare ID, if any.
	Default string `json:"default,omitempty"`
}

// Registry is the in-memory calendar collection.
type Registry struct {
	mu        sync.RWMutex
	defs      map[string]*calendar.Definition
	flattened map[string]*calendar.Definition

	active atomic.Pointer[calendar.Definition]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		defs:      make(map[string]*calendar.Definition),
		flattened: make(map[string]*calendar.Definition),
	}
}

// Add registers a base definition, replacing any previous one with the same
// ID and dropping its stale flattened entries.
func (r *Registry) Add(def *calendar.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.ID] = def
	for key := range r.flattened {
		if id, _ := calendar.ParseKey(key); id == def.ID {
			delete(r.flattened, key)
		}
	}
}

// LoadBuiltin registers the embedded calendar packs.
func (r *Registry) LoadBuiltin() error {
	defs, err := calendar.Builtin()
	if err != nil {
		return err
	}
	for _, def := range defs {
		r.Add(def)
	}
	return nil
}

// LoadDir registers every calendar definition file in a directory, layered
// over whatever is already loaded.
func (r *Registry) LoadDir(dir string) error {
	defs, err := calendar.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, def := range defs {
		r.Add(def)
	}
	return nil
}

// Resolve returns the flattened definition for a selection key ("id" or
// "id(variant)"). Results are cached; the same key always yields the same
// immutable definition pointer.
func (r *Registry) Resolve(key string) (*calendar.Definition, error) {
	r.mu.RLock()
	if flat, ok := r.flattened[key]; ok {
		r.mu.RUnlock()
		return flat, nil
	}
	r.mu.RUnlock()

	id, variant := calendar.ParseKey(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if flat, ok := r.flattened[key]; ok {
		return flat, nil
	}
	base, ok := r.defs[id]
	if !ok {
		return nil, &UnknownCalendarError{ID: id}
	}
	flat, err := calendar.Flatten(base, variant)
	if err != nil {
		return nil, err
	}
	r.flattened[key] = flat
	return flat, nil
}

// SetActive resolves a selection key and publishes it as the active
// definition in one pointer swap.
func (r *Registry) SetActive(key string) (*calendar.Definition, error) {
	flat, err := r.Resolve(key)
	if err != nil {
		return nil, err
	}
	r.active.Store(flat)
	return flat, nil
}

// Active returns the currently published flattened definition, or nil when
// none has been selected yet.
func (r *Registry) Active() *calendar.Definition {
	return r.active.Load()
}

// List returns a stable summary of every loaded base calendar.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.defs))
	for _, def := range r.defs {
		s := Summary{ID: def.ID, Name: def.Name, Description: def.Description}
		for _, v := range def.Variants {
			s.Variants = append(s.Variants, v.ID)
			if v.Default {
				s.Default = v.ID
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
