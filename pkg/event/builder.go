package event

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Builder accumulates event fields and produces validated immutable Events.
// Every edit and copy path goes through From so that a changed field always
// yields a fully re-validated value.
type Builder struct {
	hours       WorkingHours
	subject     string
	start       civil.DateTime
	end         civil.DateTime
	description NullString
	location    NullString
	public      bool
	seriesID    uuid.NullUUID
}

// NewBuilder returns a builder for a public event with no fields set,
// defaulting against the given working hours.
func NewBuilder(hours WorkingHours) *Builder {
	return &Builder{hours: hours, public: true}
}

// From pre-populates the builder with every field of an existing event.
func (b *Builder) From(e Event) *Builder {
	b.subject = e.Subject
	b.start = e.Start
	b.end = e.End
	b.description = e.Description
	b.location = e.Location
	b.public = e.Public
	b.seriesID = e.SeriesID
	return b
}

func (b *Builder) Subject(subject string) *Builder {
	b.subject = subject
	return b
}

func (b *Builder) Start(start civil.DateTime) *Builder {
	b.start = start
	return b
}

func (b *Builder) End(end civil.DateTime) *Builder {
	b.end = end
	return b
}

// Description sets the description; an empty string clears it.
func (b *Builder) Description(description string) *Builder {
	b.description = NullString{String: description, Valid: description != ""}
	return b
}

// Location sets the location; an empty string clears it.
func (b *Builder) Location(location string) *Builder {
	b.location = NullString{String: location, Valid: location != ""}
	return b
}

func (b *Builder) Public(public bool) *Builder {
	b.public = public
	return b
}

func (b *Builder) SeriesID(id uuid.UUID) *Builder {
	b.seriesID = uuid.NullUUID{UUID: id, Valid: true}
	return b
}

// AllDay sets start and end to the working-day bounds on the given date.
func (b *Builder) AllDay(date civil.Date) *Builder {
	b.start = civil.DateTime{Date: date, Time: b.hours.Start}
	b.end = civil.DateTime{Date: date, Time: b.hours.End}
	return b
}

// Build validates and returns the accumulated event. An unset end defaults
// to the working-day end on the start's date; the start is left as given.
func (b *Builder) Build() (Event, error) {
	if strings.TrimSpace(b.subject) == "" {
		return Event{}, Invalidf("event subject must not be blank")
	}
	if b.start == (civil.DateTime{}) {
		return Event{}, Invalidf("event start date and time are required")
	}
	end := b.end
	if end == (civil.DateTime{}) {
		end = civil.DateTime{Date: b.start.Date, Time: b.hours.End}
	}
	if end.Before(b.start) {
		return Event{}, Invalidf("event end must not be before start")
	}
	return Event{
		Subject:     b.subject,
		Start:       b.start,
		End:         end,
		Description: b.description,
		Location:    b.location,
		Public:      b.public,
		SeriesID:    b.seriesID,
	}, nil
}
