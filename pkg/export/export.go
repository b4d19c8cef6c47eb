package export

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/agendo/agendo/pkg/event"
)

// Format identifies a supported export rendering.
type Format string

const (
	FormatCSV Format = "csv"
	FormatICS Format = "ics"
)

// Snapshot is the immutable view of one calendar handed to a renderer.
type Snapshot struct {
	Name     string
	Location *time.Location
	Hours    event.WorkingHours
	Events   []event.Event
}

// FormatForFilename picks the format from the requested file name's
// extension; ".ical" is an alias for ".ics".
func FormatForFilename(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".ics", ".ical":
		return FormatICS, nil
	}
	return "", event.Invalidf("unsupported export extension, use .csv, .ics or .ical")
}

// ContentType returns the MIME type served for files of this format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	}
	return "application/octet-stream"
}
