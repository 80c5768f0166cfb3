package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DisplayLayout is the canonical display format for post timestamps.
const DisplayLayout = "2006-01-02 15:04:05"

// sqliteLayouts are the textual forms CURRENT_TIMESTAMP may take in the
// embedded backend, tried in order when the driver hands us a string.
var sqliteLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
}

// Timestamp wraps a created_at value scanned from either backend. The
// postgres driver yields time.Time; the sqlite driver yields the stored
// text. When the stored value does not parse as a timestamp, the raw
// string is kept and displayed unchanged rather than surfacing an
// error.
type Timestamp struct {
	t      time.Time
	raw    string
	parsed bool
}

// NewTimestamp builds a parsed Timestamp, mainly for tests and seeding.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t, parsed: true}
}

// Scan implements sql.Scanner.
func (ts *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts = Timestamp{}
		return nil
	case time.Time:
		*ts = Timestamp{t: v, parsed: true}
		return nil
	case []byte:
		*ts = parseRaw(string(v))
		return nil
	case string:
		*ts = parseRaw(v)
		return nil
	default:
		return fmt.Errorf("models: cannot scan %T into Timestamp", src)
	}
}

// Value implements driver.Valuer so parsed timestamps round-trip.
func (ts Timestamp) Value() (driver.Value, error) {
	if ts.parsed {
		return ts.t, nil
	}
	return ts.raw, nil
}

func parseRaw(s string) Timestamp {
	for _, layout := range sqliteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t: t, parsed: true}
		}
	}
	// Unparseable values fall through as-is; Display shows the raw text.
	return Timestamp{raw: s}
}

// Display returns the timestamp as "YYYY-MM-DD HH:MM:SS", or the raw
// stored string when the value never parsed.
func (ts Timestamp) Display() string {
	if ts.parsed {
		return ts.t.Format(DisplayLayout)
	}
	return ts.raw
}

// Time returns the parsed time and whether parsing succeeded.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.t, ts.parsed
}

func (ts Timestamp) String() string { return ts.Display() }
