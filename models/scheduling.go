package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Scheduling says when a post is published: right away, or at a fixed time.
// The zero value is Immediate.
type Scheduling struct {
	at *time.Time
}

// Immediate publishes the post when it is created.
func Immediate() Scheduling {
	return Scheduling{}
}

// ScheduledAt defers publication to t.
func ScheduledAt(t time.Time) Scheduling {
	t = t.UTC()
	return Scheduling{at: &t}
}

// IsScheduled reports whether publication is deferred.
func (s Scheduling) IsScheduled() bool {
	return s.at != nil
}

// At returns the publication time for scheduled posts.
func (s Scheduling) At() (time.Time, bool) {
	if s.at == nil {
		return time.Time{}, false
	}
	return *s.at, true
}

// Value stores the schedule as a nullable timestamp column.
func (s Scheduling) Value() (driver.Value, error) {
	if s.at == nil {
		return nil, nil
	}
	return *s.at, nil
}

// Scan reads a nullable timestamp column.
func (s *Scheduling) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		s.at = nil
	case time.Time:
		t := v.UTC()
		s.at = &t
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("scheduling: unsupported column type %T", src)
	}
	return nil
}

func (s *Scheduling) parse(v string) error {
	if v == "" {
		s.at = nil
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			s.at = &t
			return nil
		}
	}
	return fmt.Errorf("scheduling: cannot parse %q", v)
}

// GormDataType maps the schedule onto the dialect's timestamp type.
func (Scheduling) GormDataType() string {
	return "time"
}
