package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LocalTimeLayout is the zone-less layout the storefront backend emits.
const LocalTimeLayout = "2006-01-02T15:04:05"

var localTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	LocalTimeLayout,
	time.RFC3339Nano,
	"2006-01-02",
}

// LocalTime is a date-time without zone information, interpreted in UTC.
type LocalTime struct {
	time.Time
}

func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

// ParseLocalTime accepts the backend layout, an optional fraction, RFC3339 or a bare date.
func ParseLocalTime(value string) (LocalTime, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return LocalTime{}, nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return LocalTime{Time: t}, nil
		}
	}
	return LocalTime{}, fmt.Errorf("invalid local time %q", value)
}

func (t LocalTime) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Time.Format(LocalTimeLayout)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(LocalTimeLayout))
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return t.unmarshalParts(trimmed)
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("local time must be a string: %w", err)
	}
	parsed, err := ParseLocalTime(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// unmarshalParts accepts the [year, month, day, hour, minute, second, nanos] array form.
func (t *LocalTime) unmarshalParts(data []byte) error {
	var parts []int
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("local time array must hold integers: %w", err)
	}
	if len(parts) < 3 {
		return fmt.Errorf("local time array needs at least year, month and day")
	}
	fields := make([]int, 7)
	copy(fields, parts)
	t.Time = time.Date(fields[0], time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], fields[6], time.UTC)
	return nil
}
