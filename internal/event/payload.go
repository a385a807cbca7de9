package event

import (
	"encoding/json"
	"math"
)

// Payload is a decoded JSON webhook body. All accessors fail soft: a missing
// or mistyped segment anywhere on the path yields the zero value and false.
type Payload map[string]any

func (p Payload) lookup(path ...string) (any, bool) {
	if len(path) == 0 || p == nil {
		return nil, false
	}
	var cur any = map[string]any(p)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Payload:
		return m, true
	}
	return nil, false
}

// Has reports whether the path exists, even if its value is null.
func (p Payload) Has(path ...string) bool {
	_, ok := p.lookup(path...)
	return ok
}

func (p Payload) String(path ...string) (string, bool) {
	v, ok := p.lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringOr returns the string at path, or fallback when absent.
func (p Payload) StringOr(fallback string, path ...string) string {
	if s, ok := p.String(path...); ok {
		return s
	}
	return fallback
}

func (p Payload) Bool(path ...string) (bool, bool) {
	v, ok := p.lookup(path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Int accepts the numeric shapes a JSON decoder produces (float64,
// json.Number) as well as native integers. Fractional values are rejected.
func (p Payload) Int(path ...string) (int64, bool) {
	v, ok := p.lookup(path...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func (p Payload) Map(path ...string) (Payload, bool) {
	v, ok := p.lookup(path...)
	if !ok {
		return nil, false
	}
	m, ok := asMap(v)
	if !ok {
		return nil, false
	}
	return Payload(m), true
}

// Slice returns the array at path. Elements that are objects can be read
// with Payload.Maps.
func (p Payload) Slice(path ...string) ([]any, bool) {
	v, ok := p.lookup(path...)
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// Maps returns the object elements of the array at path, skipping anything
// that is not an object.
func (p Payload) Maps(path ...string) []Payload {
	items, ok := p.Slice(path...)
	if !ok {
		return nil
	}
	out := make([]Payload, 0, len(items))
	for _, item := range items {
		if m, ok := asMap(item); ok {
			out = append(out, Payload(m))
		}
	}
	return out
}
