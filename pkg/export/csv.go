package export

import (
	"bytes"
	"encoding/csv"
	"time"

	"cloud.google.com/go/civil"
	log "github.com/sirupsen/logrus"

	"github.com/agendo/agendo/pkg/event"
)

// CSVRenderer renders snapshots in the spreadsheet-import layout: a fixed
// header row and one row per event.
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

var csvHeader = []string{
	"Subject", "Start Date", "Start Time", "End Date", "End Time",
	"All Day Event", "Description", "Location", "Private",
}

func (r *CSVRenderer) Render(snapshot Snapshot) (string, error) {
	rows := make([][]string, 0, len(snapshot.Events)+1)
	rows = append(rows, csvHeader)
	for _, e := range snapshot.Events {
		rows = append(rows, eventRow(e, snapshot.Hours))
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}

// eventRow renders one event. All-day events leave both time columns
// empty; Private is the inverse of the public flag.
func eventRow(e event.Event, hours event.WorkingHours) []string {
	allDay := e.IsAllDay(hours)
	startTime, endTime := "", ""
	if !allDay {
		startTime = csvTime(e.Start.Time)
		endTime = csvTime(e.End.Time)
	}
	return []string{
		e.Subject,
		csvDate(e.Start.Date),
		startTime,
		csvDate(e.End.Date),
		endTime,
		csvBool(allDay),
		e.Description.String,
		e.Location.String,
		csvBool(!e.Public),
	}
}

func csvDate(d civil.Date) string {
	return d.In(time.UTC).Format("01/02/2006")
}

func csvTime(t civil.Time) string {
	return time.Date(2000, time.January, 1, t.Hour, t.Minute, t.Second, 0, time.UTC).Format("03:04 PM")
}

func csvBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
