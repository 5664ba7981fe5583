package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
)

// Floating is the location of timestamps that were written without a UTC
// offset, e.g. "2024-03-25T09:00:00". Their wall clock is local to some
// airport that the timestamp itself does not name.
var Floating = time.FixedZone("floating", 0)

const floatingLayout = "2006-01-02T15:04:05.999999999"

var floatingLayouts = []string{
	floatingLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// Timestamp is a date-time that accepts both RFC 3339 values and floating
// local values, and marshals back to the form it was parsed from.
type Timestamp struct {
	time.Time
}

// FloatingTimestamp builds a timestamp without a UTC offset
func FloatingTimestamp(year int, month time.Month, day, hour, min, sec int) Timestamp {
	return Timestamp{time.Date(year, month, day, hour, min, sec, 0, Floating)}
}

// ParseTimestamp parses an RFC 3339 or floating date-time
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return Timestamp{t}, nil
	}
	for _, layout := range floatingLayouts {
		if t, err := time.ParseInLocation(layout, value, Floating); err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q: expected ISO 8601 date-time", value)
}

// IsFloating reports whether the timestamp carries no UTC offset
func (t Timestamp) IsFloating() bool {
	return t.Location() == Floating
}

// Resolve returns the absolute time of t. Floating timestamps are read as
// wall-clock time in loc; timestamps with an offset ignore loc.
func (t Timestamp) Resolve(loc *time.Location) time.Time {
	if !t.IsFloating() {
		return t.Time
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// String formats the timestamp the way it is marshalled
func (t Timestamp) String() string {
	if t.IsFloating() {
		return t.Format(floatingLayout)
	}
	return t.Format(time.RFC3339Nano)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// JSONSchema describes Timestamp as a date-time string
func (Timestamp) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:   "string",
		Format: "date-time",
	}
}
