package worlds

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes adds all world calendar endpoints to the versioned API
// group. Auth and rate limiting are applied by the caller on the group.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/calendars", h.ListCalendars)

	g.GET("/worlds", h.ListWorlds)
	g.POST("/worlds", h.CreateWorld)
	g.GET("/worlds/:id", h.GetWorld)
	g.DELETE("/worlds/:id", h.DeleteWorld)

	g.PUT("/worlds/:id/calendar", h.SelectCalendar)

	g.GET("/worlds/:id/date", h.CurrentDate)
	g.PUT("/worlds/:id/time", h.SetTime)
	g.POST("/worlds/:id/time/advance", h.AdvanceTime)

	g.GET("/worlds/:id/convert", h.ConvertToDate)
	g.POST("/worlds/:id/convert", h.ConvertToTime)

	g.GET("/worlds/:id/weekday", h.Weekday)
	g.GET("/worlds/:id/year/:year", h.YearInfo)
	g.GET("/worlds/:id/moons", h.MoonPhases)
	g.GET("/worlds/:id/events", h.EventsOnDate)
	g.GET("/worlds/:id/events/:eventID", h.EventOccurrences)
	g.GET("/worlds/:id/season", h.Season)
}
