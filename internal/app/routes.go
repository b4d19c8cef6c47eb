package app

import (
	"github.com/gorilla/mux"

	"github.com/agendo/agendo/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Calendars
	r.HandleFunc("/api/calendar", deps.CalendarHandler.CreateCalendar).Methods("POST")
	r.HandleFunc("/api/calendar", deps.CalendarHandler.GetCalendars).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/name", deps.CalendarHandler.RenameCalendar).Methods("PUT")
	r.HandleFunc("/api/calendar/{name}/timezone", deps.CalendarHandler.ChangeTimezone).Methods("PUT")

	// Events
	r.HandleFunc("/api/calendar/{name}/event", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/{name}/series", deps.CalendarHandler.CreateSeries).Methods("POST")
	r.HandleFunc("/api/calendar/{name}/event", deps.CalendarHandler.UpdateEvents).Methods("PUT")
	r.HandleFunc("/api/calendar/{name}/event", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/busy", deps.CalendarHandler.GetBusy).Methods("GET")
	r.HandleFunc("/api/calendar/{name}/export", deps.ExportHandler.Download).Methods("GET")

	// Copies
	r.HandleFunc("/api/copy/event", deps.CalendarHandler.CopyEvent).Methods("POST")
	r.HandleFunc("/api/copy/day", deps.CalendarHandler.CopyDay).Methods("POST")
	r.HandleFunc("/api/copy/range", deps.CalendarHandler.CopyRange).Methods("POST")

	// Activity
	r.HandleFunc("/api/activity", deps.ActivityHandler.GetRecent).Methods("GET")
}
