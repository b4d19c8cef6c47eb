package event_bus

import "cloud.google.com/go/civil"

// Payload types carried on the bus. Publishers pass the dotted event type
// names at the call site; subscribers pick the payloads they understand.

type CalendarCreated struct {
	Name     string
	Timezone string
}

type CalendarRenamed struct {
	OldName string
	NewName string
}

type CalendarTimezoneChanged struct {
	Name     string
	Timezone string
}

type EventCreated struct {
	Calendar string
	Subject  string
	Start    civil.DateTime
	End      civil.DateTime
}

type SeriesCreated struct {
	Calendar    string
	Subject     string
	Occurrences int
}

type EventsEdited struct {
	Calendar string
	Subject  string
	Property string
	Scope    string
}

type EventsCopied struct {
	From  string
	To    string
	Count int
}
