package export

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/utils"
	"github.com/agendo/agendo/pkg/event"
)

// ICSRenderer renders snapshots as iCalendar documents. Timed events are
// emitted as UTC instants resolved through the calendar's zone; all-day
// events as DATE values with an exclusive end. The clock is injected so
// DTSTAMP values are reproducible in tests.
type ICSRenderer struct {
	clock utils.Clock
}

func NewICSRenderer(clock utils.Clock) *ICSRenderer {
	return &ICSRenderer{clock: clock}
}

func (r *ICSRenderer) Render(snapshot Snapshot) (string, error) {
	cal := ics.NewCalendar()
	cal.SetProductId("-//Agendo//EN")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	now := r.clock.Now().UTC()
	for _, e := range snapshot.Events {
		v := cal.AddEvent(eventUID(snapshot.Name, e))
		v.SetDtStampTime(now)

		if e.IsAllDay(snapshot.Hours) {
			v.SetAllDayStartAt(e.Start.Date.In(time.UTC))
			// DTEND is exclusive for DATE values.
			v.SetAllDayEndAt(e.End.Date.AddDays(1).In(time.UTC))
		} else {
			v.SetStartAt(e.Start.In(snapshot.Location).UTC())
			v.SetEndAt(e.End.In(snapshot.Location).UTC())
		}

		v.SetSummary(escapeText(e.Subject))
		if e.Public {
			v.SetProperty(ics.ComponentProperty(ics.PropertyClass), "PUBLIC")
		} else {
			v.SetProperty(ics.ComponentProperty(ics.PropertyClass), "PRIVATE")
		}
		if e.Description.Valid {
			v.SetDescription(escapeText(e.Description.String))
		}
		if e.Location.Valid {
			v.SetLocation(escapeText(e.Location.String))
		}
	}
	return cal.Serialize(), nil
}

// eventUID derives a stable identifier from the calendar name and the
// occurrence identity, so repeated exports of the same calendar agree.
func eventUID(calendarName string, e event.Event) string {
	seed := calendarName + "|" + e.Subject + "|" + e.Start.String() + "|" + e.End.String()
	return uuid.NewMD5(uuid.NameSpaceURL, []byte(seed)).String() + "@agendo"
}

var icsTextEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	",", `\,`,
	";", `\;`,
)

// escapeText applies TEXT-value escaping; the serializer folds long lines
// but does not escape.
func escapeText(s string) string {
	return icsTextEscaper.Replace(s)
}
