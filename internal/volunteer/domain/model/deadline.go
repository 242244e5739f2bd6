package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const dateLayout = "2006-01-02"

var deadlineLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", dateLayout}

// Deadline is the closing date of an opportunity. It is stored as a BSON
// date so that sorting is chronological.
type Deadline struct {
	time.Time
}

// NewDeadline wraps t, normalized to UTC millisecond precision.
func NewDeadline(t time.Time) Deadline {
	return Deadline{Time: t.UTC().Truncate(time.Millisecond)}
}

// ParseDeadline accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func ParseDeadline(s string) (Deadline, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Deadline{}, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDeadline(t), nil
		}
	}
	return Deadline{}, fmt.Errorf("deadLine %q is not a date", s)
}

// MarshalJSON writes RFC3339, or null for an unset deadline.
func (d Deadline) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts a date string or null.
func (d *Deadline) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Deadline{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("deadLine must be a string: %w", err)
	}
	v, err := ParseDeadline(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalBSONValue stores a BSON date, or null for an unset deadline.
func (d Deadline) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.IsZero() {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(d.UTC())
}

// UnmarshalBSONValue accepts BSON dates and date strings.
func (d *Deadline) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.DateTime:
		*d = NewDeadline(rv.Time())
	case bsontype.String:
		v, err := ParseDeadline(rv.StringValue())
		if err != nil {
			return err
		}
		*d = v
	case bsontype.Null, bsontype.Undefined:
		*d = Deadline{}
	default:
		return fmt.Errorf("cannot decode deadLine from BSON %s", t)
	}
	return nil
}
