package event

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	dateTimeMinutesLen = len("2006-01-02T15:04")
	timeMinutesLen     = len("15:04")
)

// ParseDateTime parses a wall-clock date-time in the form
// YYYY-MM-DDTHH:MM or YYYY-MM-DDTHH:MM:SS.
func ParseDateTime(s string) (civil.DateTime, error) {
	if len(s) == dateTimeMinutesLen {
		s += ":00"
	}
	dt, err := civil.ParseDateTime(s)
	if err != nil || !dt.IsValid() {
		return civil.DateTime{}, Invalidf("invalid date-time %q, expected YYYY-MM-DDTHH:MM[:SS]", s)
	}
	return dt, nil
}

// ParseDate parses a calendar date in the form YYYY-MM-DD.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return civil.Date{}, Invalidf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseTimeOfDay parses a time of day in the form HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (civil.Time, error) {
	if len(s) == timeMinutesLen {
		s += ":00"
	}
	t, err := civil.ParseTime(s)
	if err != nil || !t.IsValid() {
		return civil.Time{}, Invalidf("invalid time of day %q, expected HH:MM[:SS]", s)
	}
	return t, nil
}

var weekdayTokens = map[string]time.Weekday{
	"m": time.Monday, "mon": time.Monday, "monday": time.Monday,
	"t": time.Tuesday, "tue": time.Tuesday, "tuesday": time.Tuesday,
	"w": time.Wednesday, "wed": time.Wednesday, "wednesday": time.Wednesday,
	"r": time.Thursday, "thu": time.Thursday, "thursday": time.Thursday,
	"f": time.Friday, "fri": time.Friday, "friday": time.Friday,
	"s": time.Saturday, "sat": time.Saturday, "saturday": time.Saturday,
	"u": time.Sunday, "sun": time.Sunday, "sunday": time.Sunday,
}

// ParseWeekdays resolves weekday tokens (full names, three-letter
// abbreviations, or the single letters M T W R F S U) into a weekday set.
// Duplicates collapse; an unknown token is an invalid operation.
func ParseWeekdays(tokens []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool, len(tokens))
	days := make([]time.Weekday, 0, len(tokens))
	for _, token := range tokens {
		day, ok := weekdayTokens[strings.ToLower(strings.TrimSpace(token))]
		if !ok {
			return nil, Invalidf("unknown weekday %q", token)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	return days, nil
}

// CompareDateTime orders two wall-clock date-times.
func CompareDateTime(a, b civil.DateTime) int {
	if a.Before(b) {
		return -1
	}
	if b.Before(a) {
		return 1
	}
	return 0
}

// ProjectInstant reinterprets a wall-clock value from one zone as the same
// absolute instant expressed in another zone's wall clock.
func ProjectInstant(dt civil.DateTime, from, to *time.Location) civil.DateTime {
	return civil.DateTimeOf(dt.In(from).In(to))
}
