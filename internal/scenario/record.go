// Package scenario reads simulation input: an ordered list of records, each
// either an entity definition (has a "type" key) or a command (has an
// "action" key). Records are kept as loose maps so that a missing or
// mistyped key becomes a per-record error instead of failing the whole file.
package scenario

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind says whether a record defines an entity or issues a command.
type Kind string

const (
	KindDefinition Kind = "definition"
	KindCommand    Kind = "command"
	KindUnknown    Kind = "unknown"
)

// Record is one raw input entry.
type Record struct {
	Index  int // 1-based position in the input
	Fields map[string]any
}

// Kind classifies the record. A record carrying "action" is a command even if
// it also carries "type".
func (r Record) Kind() Kind {
	if _, ok := r.Fields["action"]; ok {
		return KindCommand
	}
	if _, ok := r.Fields["type"]; ok {
		return KindDefinition
	}
	return KindUnknown
}

// String renders the record as compact JSON with sorted keys.
func (r Record) String() string {
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return fmt.Sprintf("%v", r.Fields)
	}
	return string(data)
}

// Has reports whether the key is present.
func (r Record) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// ID reads a required identifier. Numeric identifiers are accepted and
// rendered as decimal text so that 7 and "7" name the same entity.
func (r Record) ID(key string) (string, error) {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return "", missingField(r, key)
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", missingField(r, key)
		}
		return t, nil
	case json.Number:
		return t.String(), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	}
	return "", invalidValue(r, key, fmt.Errorf("%w: identifier of type %T", ErrInvalidValue, v))
}

// OptionalID reads an identifier that may be absent.
func (r Record) OptionalID(key string) (string, bool, error) {
	if !r.Has(key) {
		return "", false, nil
	}
	id, err := r.ID(key)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// Str reads a required string value.
func (r Record) Str(key string) (string, error) {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return "", missingField(r, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidValue(r, key, fmt.Errorf("%w: want string, got %T", ErrInvalidValue, v))
	}
	return s, nil
}

// OptionalStr reads a string value that may be absent or null.
func (r Record) OptionalStr(key string) (string, error) {
	if v, ok := r.Fields[key]; !ok || v == nil {
		return "", nil
	}
	return r.Str(key)
}

// Float reads a required number.
func (r Record) Float(key string) (float64, error) {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return 0, missingField(r, key)
	}
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, invalidValue(r, key, fmt.Errorf("%w: %w", ErrInvalidValue, err))
		}
		f = parsed
	case float64:
		f = t
	case int64:
		f = float64(t)
	case int:
		f = float64(t)
	default:
		return 0, invalidValue(r, key, fmt.Errorf("%w: want number, got %T", ErrInvalidValue, v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalidValue(r, key, fmt.Errorf("%w: %v", ErrInvalidValue, f))
	}
	return f, nil
}

// OptionalFloat reads a number that may be absent.
func (r Record) OptionalFloat(key string) (*float64, error) {
	if !r.Has(key) {
		return nil, nil
	}
	f, err := r.Float(key)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Count reads a required non-negative integer.
func (r Record) Count(key string) (int, error) {
	f, err := r.Float(key)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, invalidValue(r, key, fmt.Errorf("%w: want non-negative integer, got %v", ErrInvalidValue, f))
	}
	return int(f), nil
}
