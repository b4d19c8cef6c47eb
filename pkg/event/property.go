package event

import "strings"

// Property identifies an editable event field.
type Property string

const (
	PropertySubject     Property = "subject"
	PropertyStart       Property = "start"
	PropertyEnd         Property = "end"
	PropertyDescription Property = "description"
	PropertyLocation    Property = "location"
	PropertyVisibility  Property = "visibility"
)

// ParseProperty resolves a user-supplied property token. Tokens are
// case-insensitive; "status" is an accepted alias for visibility.
func ParseProperty(token string) (Property, error) {
	switch p := Property(strings.ToLower(strings.TrimSpace(token))); p {
	case PropertySubject, PropertyStart, PropertyEnd,
		PropertyDescription, PropertyLocation, PropertyVisibility:
		return p, nil
	case "status":
		return PropertyVisibility, nil
	default:
		return "", Invalidf("unknown property %q", token)
	}
}

// Apply returns a copy of e with one property replaced by the given value,
// re-validated through the builder. Date-time values use the
// YYYY-MM-DDTHH:MM[:SS] form; visibility is "public" or anything else for
// private.
func Apply(e Event, p Property, value string, hours WorkingHours) (Event, error) {
	b := NewBuilder(hours).From(e)
	switch p {
	case PropertySubject:
		b.Subject(value)
	case PropertyStart:
		start, err := ParseDateTime(value)
		if err != nil {
			return Event{}, err
		}
		b.Start(start)
	case PropertyEnd:
		end, err := ParseDateTime(value)
		if err != nil {
			return Event{}, err
		}
		b.End(end)
	case PropertyDescription:
		b.Description(value)
	case PropertyLocation:
		b.Location(value)
	case PropertyVisibility:
		b.Public(strings.EqualFold(value, "public"))
	default:
		return Event{}, Invalidf("unknown property %q", string(p))
	}
	return b.Build()
}
