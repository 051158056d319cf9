package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the scalar type a field decodes to.
type Kind string

const (
	KindInt    Kind = "int"    // int64
	KindFloat  Kind = "float"  // float64
	KindString Kind = "string" // string
	KindBool   Kind = "bool"   // bool
	KindTime   Kind = "time"   // time.Time
	KindUUID   Kind = "uuid"   // uuid.UUID
	KindBytes  Kind = "bytes"  // []byte
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindInt, KindFloat, KindString, KindBool, KindTime, KindUUID, KindBytes}

// timeLayouts are tried in order when a time arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseKind validates a kind name. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k.Valid() {
		return k, nil
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Convert converts a driver value to k's Go type. NULL (nil) stays nil.
func (k Kind) Convert(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch k {
	case KindInt:
		return toInt(raw)
	case KindFloat:
		return toFloat(raw)
	case KindString:
		return toString(raw)
	case KindBool:
		return toBool(raw)
	case KindTime:
		return toTime(raw)
	case KindUUID:
		return toUUID(raw)
	case KindBytes:
		return toBytes(raw)
	default:
		return nil, fmt.Errorf("unknown kind %q", k)
	}
}

func toInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%v is not an integer", v)
		}
		// float64(MaxInt64) rounds up to 2^63, which is out of range.
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, fmt.Errorf("%v overflows int64", v)
		}
		return int64(v), nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case []byte:
		return parseInt(string(v))
	case string:
		return parseInt(v)
	default:
		return nil, fmt.Errorf("cannot convert %T to int", raw)
	}
}

func parseInt(s string) (any, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse int %q: %w", s, err)
	}
	return n, nil
}

func toFloat(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return parseFloat(string(v))
	case string:
		return parseFloat(v)
	}
	n, err := toInt(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %T to float", raw)
	}
	return float64(n.(int64)), nil
}

func parseFloat(s string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("parse float %q: %w", s, err)
	}
	return f, nil
}

func toString(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case uuid.UUID:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to string", raw)
	}
}

func toBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case []byte:
		return parseBool(string(v))
	case string:
		return parseBool(v)
	}
	n, err := toInt(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %T to bool", raw)
	}
	return n.(int64) != 0, nil
}

func parseBool(s string) (any, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parse bool %q: %w", s, err)
	}
	return b, nil
}

func toTime(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	case int64:
		return time.Unix(v, 0).UTC(), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to time", raw)
	}
}

func parseTime(s string) (any, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("parse time %q: unrecognized layout", s)
}

func toUUID(raw any) (any, error) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case []byte:
		if len(v) == 16 {
			id, err := uuid.FromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("parse uuid: %w", err)
			}
			return id, nil
		}
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return nil, fmt.Errorf("parse uuid: %w", err)
		}
		return id, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("parse uuid: %w", err)
		}
		return id, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to uuid", raw)
	}
}

func toBytes(raw any) (any, error) {
	switch v := raw.(type) {
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to bytes", raw)
	}
}
