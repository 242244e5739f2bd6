package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// SlotCount is the number of volunteers an opportunity still accepts.
// Records written by older clients store it as a string, so decoding
// accepts numbers and numeric strings alike. It is always written as an int.
type SlotCount int

// MaxSlotCount is the largest count that fits the stored int32.
const MaxSlotCount = math.MaxInt32

func slotsInRange(n int64) (SlotCount, error) {
	if n > MaxSlotCount || n < math.MinInt32 {
		return 0, fmt.Errorf("numberOfVolunteer %d is out of range", n)
	}
	return SlotCount(n), nil
}

// ParseSlotCount converts a loosely typed value into a slot count.
func ParseSlotCount(v interface{}) (SlotCount, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return slotsInRange(int64(n))
	case int32:
		return SlotCount(n), nil
	case int64:
		return slotsInRange(n)
	case float64:
		return slotsFromFloat(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, nil
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return slotsInRange(i)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("numberOfVolunteer is not a number: %q", n)
		}
		return slotsFromFloat(f)
	}
	return 0, fmt.Errorf("numberOfVolunteer has unsupported type %T", v)
}

func slotsFromFloat(f float64) (SlotCount, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("numberOfVolunteer must be a whole number, got %v", f)
	}
	if f > MaxSlotCount || f < math.MinInt32 {
		return 0, fmt.Errorf("numberOfVolunteer %v is out of range", f)
	}
	return SlotCount(f), nil
}

// Int returns the count as an int.
func (s SlotCount) Int() int { return int(s) }

// MarshalJSON writes the count as a JSON number.
func (s SlotCount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (s *SlotCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseSlotCount(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalBSONValue stores the count as an int32 and refuses counts that do not fit.
func (s SlotCount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if _, err := slotsInRange(int64(s)); err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(int32(s))
}

// UnmarshalBSONValue accepts int32, int64, double, string and null.
func (s *SlotCount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	var (
		v   SlotCount
		err error
	)
	switch t {
	case bsontype.Int32:
		v = SlotCount(rv.Int32())
	case bsontype.Int64:
		v, err = slotsInRange(rv.Int64())
	case bsontype.Double:
		v, err = ParseSlotCount(rv.Double())
	case bsontype.String:
		v, err = ParseSlotCount(rv.StringValue())
	case bsontype.Null, bsontype.Undefined:
		v = 0
	default:
		return fmt.Errorf("cannot decode numberOfVolunteer from BSON %s", t)
	}
	if err != nil {
		return err
	}
	*s = v
	return nil
}
