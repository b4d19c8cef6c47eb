package registry

import (
	"encoding/json"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/gorilla/mux"

	"github.com/agendo/agendo/internal/rest"
	"github.com/agendo/agendo/pkg/event"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

type CalendarDTO struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type EventDTO struct {
	Subject     string `json:"subject"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Public      bool   `json:"public"`
	SeriesID    string `json:"seriesId,omitempty"`
}

func calendarToDTO(info CalendarInfo) CalendarDTO {
	return CalendarDTO{Name: info.Name, Timezone: info.Timezone}
}

func eventToDTO(e event.Event) EventDTO {
	dto := EventDTO{
		Subject: e.Subject,
		Start:   e.Start.String(),
		End:     e.End.String(),
		Public:  e.Public,
	}
	if e.Description.Valid {
		dto.Description = e.Description.String
	}
	if e.Location.Valid {
		dto.Location = e.Location.String
	}
	if e.SeriesID.Valid {
		dto.SeriesID = e.SeriesID.UUID.String()
	}
	return dto
}

func eventsToDTOs(events []event.Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	return dtos
}

func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.service.CreateCalendar(r.Context(), req.Name, req.Timezone)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(calendarToDTO(info)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetCalendars(w http.ResponseWriter, r *http.Request) {
	infos := h.service.ListCalendars(r.Context())
	dtos := make([]CalendarDTO, 0, len(infos))
	for _, info := range infos {
		dtos = append(dtos, calendarToDTO(info))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) RenameCalendar(w http.ResponseWriter, r *http.Request) {
	oldName := mux.Vars(r)["name"]
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.service.RenameCalendar(r.Context(), oldName, req.Name)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(calendarToDTO(info)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) ChangeTimezone(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var req struct {
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.service.ChangeTimezone(r.Context(), name, req.Timezone)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(calendarToDTO(info)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	var req struct {
		Subject     string `json:"subject"`
		Start       string `json:"start"`
		End         string `json:"end"`
		Description string `json:"description"`
		Location    string `json:"location"`
		Public      *bool  `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, err := event.ParseDateTime(req.Start)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	var end civil.DateTime
	if req.End != "" {
		if end, err = event.ParseDateTime(req.End); err != nil {
			rest.WriteError(w, err)
			return
		}
	}

	// Events are public unless the payload says otherwise.
	public := true
	if req.Public != nil {
		public = *req.Public
	}

	created, err := h.service.CreateEvent(r.Context(), calendarName, EventInput{
		Subject:     req.Subject,
		Start:       start,
		End:         end,
		Description: req.Description,
		Location:    req.Location,
		Public:      public,
	})
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	var req struct {
		Subject     string   `json:"subject"`
		Start       string   `json:"start"`
		End         string   `json:"end"`
		Weekdays    []string `json:"weekdays"`
		Occurrences int      `json:"occurrences"`
		Until       string   `json:"until"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, err := event.ParseDateTime(req.Start)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	var end civil.DateTime
	if req.End != "" {
		if end, err = event.ParseDateTime(req.End); err != nil {
			rest.WriteError(w, err)
			return
		}
	}
	weekdays, err := event.ParseWeekdays(req.Weekdays)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	var until civil.Date
	if req.Until != "" {
		if until, err = event.ParseDate(req.Until); err != nil {
			rest.WriteError(w, err)
			return
		}
	}

	created, err := h.service.CreateSeries(r.Context(), calendarName, SeriesInput{
		Subject:     req.Subject,
		Start:       start,
		End:         end,
		Weekdays:    weekdays,
		Occurrences: req.Occurrences,
		Until:       until,
	})
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventsToDTOs(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateEvents(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	var req struct {
		Subject  string `json:"subject"`
		Start    string `json:"start"`
		Property string `json:"property"`
		Value    string `json:"value"`
		Scope    string `json:"scope"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, err := event.ParseDateTime(req.Start)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	if err := h.service.EditEvents(r.Context(), calendarName, req.Subject, start, req.Property, req.Value, req.Scope); err != nil {
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	query := r.URL.Query()

	var events []event.Event
	var err error
	switch {
	case query.Get("subject") != "":
		var start, end civil.DateTime
		if start, err = event.ParseDateTime(query.Get("start")); err != nil {
			rest.WriteError(w, err)
			return
		}
		if endString := query.Get("end"); endString != "" {
			if end, err = event.ParseDateTime(endString); err != nil {
				rest.WriteError(w, err)
				return
			}
		}
		events, err = h.service.FindEvents(r.Context(), calendarName, query.Get("subject"), start, end)
	case query.Get("date") != "":
		var d civil.Date
		if d, err = event.ParseDate(query.Get("date")); err != nil {
			rest.WriteError(w, err)
			return
		}
		events, err = h.service.EventsOnDate(r.Context(), calendarName, d)
	case query.Get("from") != "" || query.Get("to") != "":
		var from, to civil.DateTime
		if from, err = event.ParseDateTime(query.Get("from")); err != nil {
			rest.WriteError(w, err)
			return
		}
		if to, err = event.ParseDateTime(query.Get("to")); err != nil {
			rest.WriteError(w, err)
			return
		}
		events, err = h.service.EventsInRange(r.Context(), calendarName, from, to)
	default:
		rest.BadRequest(w, "Missing query parameters", "provide subject&start, date, or from&to")
		return
	}
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventsToDTOs(events)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetBusy(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]

	at, err := event.ParseDateTime(r.URL.Query().Get("at"))
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	busy, err := h.service.IsBusyAt(r.Context(), calendarName, at)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := struct {
		Busy bool `json:"busy"`
	}{Busy: busy}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) CopyEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From        string `json:"from"`
		To          string `json:"to"`
		Subject     string `json:"subject"`
		Start       string `json:"start"`
		TargetStart string `json:"targetStart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, err := event.ParseDateTime(req.Start)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	targetStart, err := event.ParseDateTime(req.TargetStart)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	copied, err := h.service.CopyEvent(r.Context(), req.From, req.To, req.Subject, start, targetStart)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(copied)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

type copiedResponse struct {
	Copied int `json:"copied"`
}

func (h *Handler) CopyDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From       string `json:"from"`
		To         string `json:"to"`
		Date       string `json:"date"`
		TargetDate string `json:"targetDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := event.ParseDate(req.Date)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	targetDate, err := event.ParseDate(req.TargetDate)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	copied, err := h.service.CopyDay(r.Context(), req.From, req.To, d, targetDate)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(copiedResponse{Copied: copied}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) CopyRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From            string `json:"from"`
		To              string `json:"to"`
		StartDate       string `json:"startDate"`
		EndDate         string `json:"endDate"`
		TargetStartDate string `json:"targetStartDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	startDate, err := event.ParseDate(req.StartDate)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	endDate, err := event.ParseDate(req.EndDate)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	targetStartDate, err := event.ParseDate(req.TargetStartDate)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	copied, err := h.service.CopyRange(r.Context(), req.From, req.To, startDate, endDate, targetStartDate)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(copiedResponse{Copied: copied}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
