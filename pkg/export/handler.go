package export

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/agendo/agendo/internal/rest"
)

// SnapshotSource provides the calendar view a download renders from.
type SnapshotSource interface {
	ExportSnapshot(ctx context.Context, calendarName string) (Snapshot, error)
}

type Handler struct {
	source SnapshotSource
	csv    *CSVRenderer
	ics    *ICSRenderer
}

func NewHandler(source SnapshotSource, csv *CSVRenderer, ics *ICSRenderer) *Handler {
	return &Handler{source: source, csv: csv, ics: ics}
}

// Download serves a calendar as an attachment in the format implied by
// the requested file name's extension.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	calendarName := mux.Vars(r)["name"]
	filename := r.URL.Query().Get("file")
	if filename == "" {
		rest.BadRequest(w, "Missing file parameter", "'file' must name the download, e.g. work.ics")
		return
	}

	format, err := FormatForFilename(filename)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	snapshot, err := h.source.ExportSnapshot(r.Context(), calendarName)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	var content string
	switch format {
	case FormatCSV:
		content, err = h.csv.Render(snapshot)
	case FormatICS:
		content, err = h.ics.Render(snapshot)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(content)); err != nil {
		log.Errorf("failed to write export response: %v", err)
	}
}
