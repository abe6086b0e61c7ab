package postgres

import (
	"fmt"
	"time"
)

// timeLayouts covers the text forms DATE and TIMESTAMP columns come back
// in across the postgres and sqlite drivers.
var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// scanTime scans DATE and TIMESTAMP columns, accepting either a
// driver-native time.Time or its text form. A failed parse surfaces as a
// scan error instead of a zero time.
type scanTime struct {
	Time  time.Time
	Valid bool
}

func (s *scanTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		s.Time, s.Valid = time.Time{}, false
		return nil
	case time.Time:
		s.Time, s.Valid = v.UTC(), true
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into a time value", src)
}

func (s *scanTime) parse(raw string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			s.Time, s.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as a time value", raw)
}
