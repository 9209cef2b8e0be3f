package types

import (
	"encoding/json"
	"time"
)

// Timestamp is an ISO-8601 instant as stored in the session file.
// Older files carry local times without a zone; text that matches none of
// the known layouts is kept verbatim so a reload never loses it.
type Timestamp struct {
	Time time.Time
	raw  string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now()}
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s with the known layouts. Unparseable input is
// retained as-is.
func ParseTimestamp(s string) Timestamp {
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return Timestamp{Time: t}
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t}
		}
	}
	return Timestamp{raw: s}
}

// IsZero reports whether neither a time nor raw text is set.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero() && t.raw == ""
}

func (t Timestamp) String() string {
	if t.raw != "" || t.Time.IsZero() {
		return t.raw
	}
	return t.Time.Format(time.RFC3339Nano)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*t = Timestamp{}
		return nil
	}
	*t = ParseTimestamp(*s)
	return nil
}
