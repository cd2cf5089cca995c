// Package metadata provides a closed, JSON-serializable value type used for
// link metadata and side-channel data recovered during resolution.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is a string, number, bool, null, array or object. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Value
	obj  map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps f.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int wraps i as a number.
func Int(i int64) Value { return Value{kind: KindNumber, num: float64(i)} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Array wraps the given elements.
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: append([]Value(nil), items...)}
}

// Object wraps a copy of m.
func Object(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindObject, obj: cp}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the wrapped string when v is a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the wrapped number when v is a number.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the wrapped bool when v is a bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsArray returns a copy of the elements when v is an array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return append([]Value(nil), v.arr...), true
}

// AsObject returns a copy of the fields when v is an object.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	cp := make(map[string]Value, len(v.obj))
	for k, f := range v.obj {
		cp[k] = f
	}
	return cp, true
}

// String renders v for display. Strings are returned verbatim, containers as JSON.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray, KindObject:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("<%s>", v.kind)
		}
		return string(data)
	default:
		return ""
	}
}

// Equal reports whether v and other hold the same variant and contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, f := range v.obj {
			o, ok := other.obj[k]
			if !ok || !f.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a decoded JSON value (or a plain Go scalar, slice or map) into a Value.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Value{kind: KindArray, arr: items}, nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			fields[k] = v
		}
		return Value{kind: KindObject, obj: fields}, nil
	case map[string]string:
		return Object(FromStrings(t)), nil
	default:
		return Value{}, fmt.Errorf("unsupported metadata type %T", raw)
	}
}

// FromStrings lifts a string map into a Value map.
func FromStrings(m map[string]string) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, s := range m {
		out[k] = String(s)
	}
	return out
}

// ToStrings flattens a Value map for display-oriented consumers.
func ToStrings(m map[string]Value) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

// Clone returns a shallow copy of m. A nil map clones to an empty one.
func Clone(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
