package worlds

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/apperror"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/engine"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/registry"
)

// Handler serves the versioned REST API for world calendars. Handlers are
// thin: bind request, call service, render JSON. No business logic lives
// here.
type Handler struct {
	service WorldService
	reg     *registry.Registry
}

// NewHandler creates a new worlds handler.
func NewHandler(service WorldService, reg *registry.Registry) *Handler {
	return &Handler{service: service, reg: reg}
}

// --- Worlds CRUD ---

// createWorldRequest is the POST /worlds payload.
type createWorldRequest struct {
	Name             string         `json:"name"`
	CalendarKey      string         `json:"calendarKey"`
	System           string         `json:"system"`
	CreatedTimestamp *int64         `json:"createdTimestamp"`
	WeekdayOffsets   map[string]int `json:"weekdayOffsets"`
}

// CreateWorld creates a world (POST /api/v1/worlds).
func (h *Handler) CreateWorld(c echo.Context) error {
	var req createWorldRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	input := CreateWorldInput{
		Name:           req.Name,
		CalendarKey:    req.CalendarKey,
		System:         req.System,
		WeekdayOffsets: req.WeekdayOffsets,
	}
	if req.CreatedTimestamp != nil {
		ts := time.Unix(*req.CreatedTimestamp, 0).UTC()
		input.CreatedTimestamp = &ts
	}

	w, err := h.service.CreateWorld(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, w)
}

// ListWorlds returns all worlds (GET /api/v1/worlds).
func (h *Handler) ListWorlds(c echo.Context) error {
	worlds, err := h.service.ListWorlds(c.Request().Context())
	if err != nil {
		return err
	}
	if worlds == nil {
		worlds = []World{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  worlds,
		"total": len(worlds),
	})
}

// GetWorld returns one world (GET /api/v1/worlds/:id).
func (h *Handler) GetWorld(c echo.Context) error {
	w, err := h.service.GetWorld(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

// DeleteWorld removes a world (DELETE /api/v1/worlds/:id).
func (h *Handler) DeleteWorld(c echo.Context) error {
	if err := h.service.DeleteWorld(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Calendar selection ---

// selectCalendarRequest is the PUT /worlds/:id/calendar payload.
type selectCalendarRequest struct {
	CalendarKey string `json:"calendarKey"`
}

// SelectCalendar switches a world's calendar (PUT /api/v1/worlds/:id/calendar).
// The key accepts "id" or "id(variant)".
func (h *Handler) SelectCalendar(c echo.Context) error {
	var req selectCalendarRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if req.CalendarKey == "" {
		return apperror.NewValidation("calendarKey is required")
	}

	w, err := h.service.SelectCalendar(c.Request().Context(), c.Param("id"), req.CalendarKey)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

// --- Clock ---

// CurrentDate returns the world's current date (GET /api/v1/worlds/:id/date).
func (h *Handler) CurrentDate(c echo.Context) error {
	resp, err := h.service.CurrentDate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// setTimeRequest is the PUT /worlds/:id/time payload.
type setTimeRequest struct {
	WorldTime int64 `json:"worldTime"`
}

// SetTime sets the world clock (PUT /api/v1/worlds/:id/time).
func (h *Handler) SetTime(c echo.Context) error {
	var req setTimeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	resp, err := h.service.SetWorldTime(c.Request().Context(), c.Param("id"), req.WorldTime)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// advanceTimeRequest is the POST /worlds/:id/time/advance payload. Seconds
// and days combine.
type advanceTimeRequest struct {
	Seconds int64 `json:"seconds"`
	Days    int   `json:"days"`
}

// AdvanceTime moves the world clock (POST /api/v1/worlds/:id/time/advance).
func (h *Handler) AdvanceTime(c echo.Context) error {
	var req advanceTimeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	resp, err := h.service.AdvanceWorldTime(c.Request().Context(), c.Param("id"), req.Seconds, req.Days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// --- Conversion ---

// ConvertToDate converts worldTime seconds to a structured date
// (GET /api/v1/worlds/:id/convert?t=...).
func (h *Handler) ConvertToDate(c echo.Context) error {
	t, err := strconv.ParseInt(c.QueryParam("t"), 10, 64)
	if err != nil {
		return apperror.NewBadRequest("query parameter t must be an integer")
	}

	resp, err := h.service.ConvertWorldTime(c.Request().Context(), c.Param("id"), t)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// convertDateRequest is the POST /worlds/:id/convert payload.
type convertDateRequest struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Day         int    `json:"day"`
	Intercalary string `json:"intercalary,omitempty"`

	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// ConvertToTime converts a structured date to worldTime seconds
// (POST /api/v1/worlds/:id/convert).
func (h *Handler) ConvertToTime(c echo.Context) error {
	var req convertDateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	d := engine.Date{
		Year:        req.Year,
		Month:       req.Month,
		Day:         req.Day,
		Intercalary: req.Intercalary,
		Time: &engine.TimeOfDay{
			Hour:   req.Hour,
			Minute: req.Minute,
			Second: req.Second,
		},
	}
	t, err := h.service.ConvertDate(c.Request().Context(), c.Param("id"), d)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"worldTime": t})
}

// --- Queries ---

// Weekday computes the weekday of a date (GET /api/v1/worlds/:id/weekday?y&m&d).
func (h *Handler) Weekday(c echo.Context) error {
	y, m, d, err := dateParams(c)
	if err != nil {
		return err
	}

	wd, err := h.service.Weekday(c.Request().Context(), c.Param("id"), y, m, d)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"weekday": wd})
}

// YearInfo summarizes a year (GET /api/v1/worlds/:id/year/:year).
func (h *Handler) YearInfo(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return apperror.NewBadRequest("year must be an integer")
	}

	info, err := h.service.YearInfo(c.Request().Context(), c.Param("id"), year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// MoonPhases lists every moon's phase on a date, defaulting to the current
// date when no y/m/d is given (GET /api/v1/worlds/:id/moons?y&m&d).
func (h *Handler) MoonPhases(c echo.Context) error {
	d, err := optionalDateParams(c)
	if err != nil {
		return err
	}

	infos, err := h.service.MoonPhases(c.Request().Context(), c.Param("id"), d)
	if err != nil {
		return err
	}
	if infos == nil {
		infos = []engine.MoonPhaseInfo{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  infos,
		"total": len(infos),
	})
}

// EventsOnDate lists events occurring on a date (GET /api/v1/worlds/:id/events?y&m&d).
func (h *Handler) EventsOnDate(c echo.Context) error {
	y, m, d, err := dateParams(c)
	if err != nil {
		return err
	}

	occ, err := h.service.EventsOnDate(c.Request().Context(), c.Param("id"), engine.Date{Year: y, Month: m, Day: d})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  occ,
		"total": len(occ),
	})
}

// EventOccurrences lists one event's dates across a year range
// (GET /api/v1/worlds/:id/events/:eventID?from&to).
func (h *Handler) EventOccurrences(c echo.Context) error {
	from, err := strconv.Atoi(c.QueryParam("from"))
	if err != nil {
		return apperror.NewBadRequest("query parameter from must be an integer")
	}
	to, err := strconv.Atoi(c.QueryParam("to"))
	if err != nil {
		return apperror.NewBadRequest("query parameter to must be an integer")
	}
	if to < from {
		return apperror.NewValidation("to must not be before from")
	}

	occ, err := h.service.EventOccurrences(c.Request().Context(), c.Param("id"), c.Param("eventID"), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  occ,
		"total": len(occ),
	})
}

// Season resolves the season on a date, defaulting to the current date
// (GET /api/v1/worlds/:id/season?y&m&d). A calendar without a matching
// season returns {"season": null}.
func (h *Handler) Season(c echo.Context) error {
	d, err := optionalDateParams(c)
	if err != nil {
		return err
	}

	season, err := h.service.SeasonAt(c.Request().Context(), c.Param("id"), d)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"season": season})
}

// --- Registry ---

// ListCalendars lists all loaded calendars and their variants
// (GET /api/v1/calendars).
func (h *Handler) ListCalendars(c echo.Context) error {
	summaries := h.reg.List()
	return c.JSON(http.StatusOK, map[string]any{
		"data":  summaries,
		"total": len(summaries),
	})
}

// dateParams parses the required y/m/d query parameters.
func dateParams(c echo.Context) (year, month, day int, err error) {
	year, err = strconv.Atoi(c.QueryParam("y"))
	if err != nil {
		return 0, 0, 0, apperror.NewBadRequest("query parameter y must be an integer")
	}
	month, err = strconv.Atoi(c.QueryParam("m"))
	if err != nil {
		return 0, 0, 0, apperror.NewBadRequest("query parameter m must be an integer")
	}
	day, err = strconv.Atoi(c.QueryParam("d"))
	if err != nil {
		return 0, 0, 0, apperror.NewBadRequest("query parameter d must be an integer")
	}
	return year, month, day, nil
}

// optionalDateParams parses y/m/d when present; all-absent means "current
// date" and returns nil.
func optionalDateParams(c echo.Context) (*engine.Date, error) {
	if c.QueryParam("y") == "" && c.QueryParam("m") == "" && c.QueryParam("d") == "" {
		return nil, nil
	}
	y, m, d, err := dateParams(c)
	if err != nil {
		return nil, err
	}
	return &engine.Date{Year: y, Month: m, Day: d}, nil
}
