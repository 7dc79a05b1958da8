package worlds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/apperror"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/calendar"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/engine"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/format"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/registry"
)

// WorldService defines business logic for world calendar state.
type WorldService interface {
	// World CRUD.
	CreateWorld(ctx context.Context, input CreateWorldInput) (*World, error)
	GetWorld(ctx context.Context, id string) (*World, error)
	ListWorlds(ctx context.Context) ([]World, error)
	DeleteWorld(ctx context.Context, id string) error

	// Calendar selection.
	SelectCalendar(ctx context.Context, id, calendarKey string) (*World, error)

	// Clock.
	SetWorldTime(ctx context.Context, id string, t int64) (*DateResponse, error)
	AdvanceWorldTime(ctx context.Context, id string, seconds int64, days int) (*DateResponse, error)

	// Queries, all pure over the world's flattened definition.
	CurrentDate(ctx context.Context, id string) (*DateResponse, error)
	ConvertWorldTime(ctx context.Context, id string, t int64) (*DateResponse, error)
	ConvertDate(ctx context.Context, id string, d engine.Date) (int64, error)
	Weekday(ctx context.Context, id string, year, month, day int) (int, error)
	YearInfo(ctx context.Context, id string, year int) (*YearInfo, error)
	MoonPhases(ctx context.Context, id string, d *engine.Date) ([]engine.MoonPhaseInfo, error)
	EventsOnDate(ctx context.Context, id string, d engine.Date) ([]engine.Occurrence, error)
	EventOccurrences(ctx context.Context, id, eventID string, fromYear, toYear int) ([]engine.Occurrence, error)
	SeasonAt(ctx context.Context, id string, d *engine.Date) (*engine.SeasonInfo, error)
}

// worldEngine bundles the fully-resolved machinery for one world selection.
// Immutable once built; replaced wholesale when the selection changes so
// concurrent readers never see a torn combination.
type worldEngine struct {
	selection string // calendar key + system, the cache validity key
	def       *calendar.Definition
	eng       *engine.Engine
	ren       *format.Renderer
}

// worldService is the default WorldService implementation.
type worldService struct {
	repo WorldRepository
	reg  *registry.Registry

	mu      sync.RWMutex
	engines map[string]*worldEngine // by world ID

	// warnedNoSeason tracks which calendars we already logged a missing
	// season for, so unattended date queries don't flood the log. Owned
	// here rather than as package state so tests can run in parallel.
	warnMu         sync.Mutex
	warnedNoSeason map[string]bool
}

// NewWorldService creates a WorldService backed by the given repository and
// calendar registry.
func NewWorldService(repo WorldRepository, reg *registry.Registry) WorldService {
	return &worldService{
		repo:           repo,
		reg:            reg,
		engines:        make(map[string]*worldEngine),
		warnedNoSeason: make(map[string]bool),
	}
}

// CreateWorld creates a world and verifies its calendar selection resolves.
func (s *worldService) CreateWorld(ctx context.Context, input CreateWorldInput) (*World, error) {
	if input.Name == "" {
		return nil, apperror.NewValidation("world name is required")
	}
	if input.CalendarKey == "" {
		input.CalendarKey = "gregorian"
	}
	if _, err := s.reg.Resolve(input.CalendarKey); err != nil {
		return nil, mapEngineErr(err)
	}

	w := &World{
		ID:               uuid.NewString(),
		Name:             input.Name,
		CalendarKey:      input.CalendarKey,
		System:           input.System,
		CreatedTimestamp: input.CreatedTimestamp,
		WeekdayOffsets:   input.WeekdayOffsets,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create world: %w", err)
	}
	return w, nil
}

// GetWorld returns a world by ID.
func (s *worldService) GetWorld(ctx context.Context, id string) (*World, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get world: %w", err)
	}
	if w == nil {
		return nil, apperror.NewNotFound("world not found")
	}
	return w, nil
}

// ListWorlds returns all worlds.
func (s *worldService) ListWorlds(ctx context.Context) ([]World, error) {
	return s.repo.List(ctx)
}

// DeleteWorld removes a world and its cached engine.
func (s *worldService) DeleteWorld(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.engines, id)
	s.mu.Unlock()
	return nil
}

// SelectCalendar switches a world's active calendar/variant. The cached
// engine is dropped so the next query republishes a freshly flattened
// definition.
func (s *worldService) SelectCalendar(ctx context.Context, id, calendarKey string) (*World, error) {
	w, err := s.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.reg.Resolve(calendarKey); err != nil {
		return nil, mapEngineErr(err)
	}

	w.CalendarKey = calendarKey
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update world: %w", err)
	}

	s.mu.Lock()
	delete(s.engines, id)
	s.mu.Unlock()
	return w, nil
}

// SetWorldTime sets the world clock to an absolute seconds value.
func (s *worldService) SetWorldTime(ctx context.Context, id string, t int64) (*DateResponse, error) {
	w, err := s.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	w.WorldTime = t
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update world: %w", err)
	}
	return s.dateResponse(w)
}

// AdvanceWorldTime moves the world clock by seconds and/or whole days.
func (s *worldService) AdvanceWorldTime(ctx context.Context, id string, seconds int64, days int) (*DateResponse, error) {
	w, err := s.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	we, err := s.engineFor(w)
	if err != nil {
		return nil, err
	}

	w.WorldTime += seconds + int64(days)*we.def.Time.SecondsPerDay()
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update world: %w", err)
	}
	return s.dateResponse(w)
}

// CurrentDate returns the structured date for the world's present clock.
func (s *worldService) CurrentDate(ctx context.Context, id string) (*DateResponse, error) {
	w, err := s.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.dateResponse(w)
}

// ConvertWorldTime converts an arbitrary seconds value for the world's
// calendar without touching the world clock.
func (s *worldService) ConvertWorldTime(ctx context.Context, id string, t int64) (*DateResponse, error) {
	w, err := s.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	we, err := s.engineFor(w)
	if err != nil {
		return nil, err
	}
	return s.renderDate(we, t), nil
}

// ConvertDate converts a structured date to world-time seconds.
func (s *worldService) ConvertDate(ctx context.Context, id string, d engine.Date) (int64, error) {
	we, err := s.engineForID(ctx, id)
	if err != nil {
		return 0, err
	}
	t, err := we.eng.DateToWorldTime(d)
	if err != nil {
		return 0, mapEngineErr(err)
	}
	return t, nil
}

// Weekday computes the weekday index of a date.
func (s *worldService) Weekday(ctx context.Context, id string, year, month, day int) (int, error) {
	we, err := s.engineForID(ctx, id)
	if err != nil {
		return 0, err
	}
	wd, err := we.eng.CalculateWeekday(year, month, day)
	if err != nil {
		return 0, mapEngineErr(err)
	}
	return wd, nil
}

// YearInfo summarizes leap status and lengths for one year.
func (s *worldService) YearInfo(ctx context.Context, id string, year int) (*YearInfo, error) {
	we, err := s.engineForID(ctx, id)
	if err != nil {
		return nil, err
	}

	info := &YearInfo{
		Year:       year,
		IsLeapYear: we.eng.IsLeapYear(year),
		YearLength: we.eng.YearLength(year),
	}
	for m := 1; m <= len(we.def.Months); m++ {
		ml, err := we.eng.MonthLength(m, year)
		if err != nil {
			return nil, mapEngineErr(err)
		}
		info.MonthLengths = append(info.MonthLengths, ml)
	}
	return info, nil
}

// MoonPhases computes every moon's phase on a date (or the current date
// when d is nil).
func (s *worldService) MoonPhases(ctx context.Context, id string, d *engine.Date) ([]engine.MoonPhaseInfo, error) {
	w, err := s.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	we, err := s.engineFor(w)
	if err != nil {
		return nil, err
	}

	date := we.eng.WorldTimeToDate(w.WorldTime)
	if d != nil {
		date = *d
	}
	infos, err := we.eng.MoonPhases(date)
	if err != nil {
		return nil, mapEngineErr(err)
	}
	return infos, nil
}

// EventsOnDate returns all events occurring on a date.
func (s *worldService) EventsOnDate(ctx context.Context, id string, d engine.Date) ([]engine.Occurrence, error) {
	we, err := s.engineForID(ctx, id)
	if err != nil {
		return nil, err
	}
	occ, err := we.eng.OccurrencesOnDate(d)
	if err != nil {
		return nil, mapEngineErr(err)
	}
	if occ == nil {
		occ = []engine.Occurrence{}
	}
	return occ, nil
}

// EventOccurrences returns one event's dates across a year range.
func (s *worldService) EventOccurrences(ctx context.Context, id, eventID string, fromYear, toYear int) ([]engine.Occurrence, error) {
	we, err := s.engineForID(ctx, id)
	if err != nil {
		return nil, err
	}
	occ, err := we.eng.OccurrencesInRange(eventID, fromYear, toYear)
	if err != nil {
		return nil, mapEngineErr(err)
	}
	if occ == nil {
		occ = []engine.Occurrence{}
	}
	return occ, nil
}

// SeasonAt resolves the season on a date (or the current date when d is
// nil). A calendar without a matching season yields nil, logged once per
// calendar rather than on every query.
func (s *worldService) SeasonAt(ctx context.Context, id string, d *engine.Date) (*engine.SeasonInfo, error) {
	w, err := s.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	we, err := s.engineFor(w)
	if err != nil {
		return nil, err
	}

	date := we.eng.WorldTimeToDate(w.WorldTime)
	if d != nil {
		date = *d
	}
	season, err := we.eng.SeasonAt(date)
	if err != nil {
		return nil, mapEngineErr(err)
	}
	if season == nil {
		s.warnNoSeasonOnce(we.def.ID)
	}
	return season, nil
}

// warnNoSeasonOnce logs the first missing-season hit per calendar.
func (s *worldService) warnNoSeasonOnce(calendarID string) {
	s.warnMu.Lock()
	defer s.warnMu.Unlock()
	if s.warnedNoSeason[calendarID] {
		return
	}
	s.warnedNoSeason[calendarID] = true
	slog.Warn("no season matched date", slog.String("calendar", calendarID))
}

// engineForID loads a world and returns its resolved engine bundle.
func (s *worldService) engineForID(ctx context.Context, id string) (*worldEngine, error) {
	w, err := s.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engineFor(w)
}

// engineFor returns the cached engine bundle for a world, rebuilding it
// when the selection (calendar key, system, creation timestamp) changed.
// The bundle is immutable and replaced, never mutated.
func (s *worldService) engineFor(w *World) (*worldEngine, error) {
	selection := w.CalendarKey + "|" + w.System
	if w.CreatedTimestamp != nil {
		selection += "|" + w.CreatedTimestamp.UTC().String()
	}

	s.mu.RLock()
	we, ok := s.engines[w.ID]
	s.mu.RUnlock()
	if ok && we.selection == selection {
		return we, nil
	}

	def, err := s.reg.Resolve(w.CalendarKey)
	if err != nil {
		return nil, mapEngineErr(err)
	}

	opts := []engine.Option{engine.WithWeekdayOffset(w.WeekdayOffset())}
	if w.CreatedTimestamp != nil {
		opts = append(opts, engine.WithWorldCreationTime(*w.CreatedTimestamp))
	}
	eng, err := engine.New(def, opts...)
	if err != nil {
		return nil, mapEngineErr(err)
	}

	we = &worldEngine{
		selection: selection,
		def:       def,
		eng:       eng,
		ren:       format.New(def),
	}
	s.mu.Lock()
	s.engines[w.ID] = we
	s.mu.Unlock()
	return we, nil
}

// dateResponse builds the standard world-time payload for a world's clock.
func (s *worldService) dateResponse(w *World) (*DateResponse, error) {
	we, err := s.engineFor(w)
	if err != nil {
		return nil, err
	}
	return s.renderDate(we, w.WorldTime), nil
}

// renderDate converts a seconds value and attaches the "long" rendering
// when the calendar declares one. Formatting problems degrade to an empty
// string; they must not fail a date query.
func (s *worldService) renderDate(we *worldEngine, t int64) *DateResponse {
	d := we.eng.WorldTimeToDate(t)
	resp := &DateResponse{WorldTime: t, Date: d}
	if _, ok := we.def.Formats["long"]; ok {
		if out, err := we.ren.Named("long", d); err == nil {
			resp.Formatted = out
		} else {
			slog.Warn("date format failed",
				slog.String("calendar", we.def.ID),
				slog.Any("error", err),
			)
		}
	}
	return resp
}

// mapEngineErr converts engine/calendar/registry error taxonomy into
// client-facing apperrors. Unknown errors stay internal.
func mapEngineErr(err error) error {
	var (
		oor *engine.DateOutOfRangeError
		ilr *engine.InvalidLeapRuleError
		uev *engine.UnknownEventError
		umo *engine.UnknownMoonError
		uva *calendar.UnknownVariantError
		uca *registry.UnknownCalendarError
	)
	switch {
	case errors.As(err, &oor):
		return apperror.NewTyped(http.StatusUnprocessableEntity, "date_out_of_range", oor.Error())
	case errors.As(err, &ilr):
		return apperror.NewTyped(http.StatusUnprocessableEntity, "invalid_leap_rule", ilr.Error())
	case errors.As(err, &uev):
		return apperror.NewNotFound(uev.Error())
	case errors.As(err, &umo):
		return apperror.NewNotFound(umo.Error())
	case errors.As(err, &uva):
		return apperror.NewTyped(http.StatusNotFound, "unknown_variant", uva.Error())
	case errors.As(err, &uca):
		return apperror.NewTyped(http.StatusNotFound, "unknown_calendar", uca.Error())
	default:
		return apperror.NewInternal(err)
	}
}
