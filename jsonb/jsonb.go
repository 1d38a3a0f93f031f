// Package jsonb decodes PostgreSQL's on-disk binary representation of
// jsonb values into a tree of native Go values.
//
// The decoder is a pure function of its input: it performs no I/O, holds
// no process-wide state, and is safe to call concurrently on independent
// buffers. It never mutates or retains the input buffer.
package jsonb

import (
	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// DefaultMaxDepth bounds recursion depth to guard against adversarial
// input (spec §5). Decode uses this value; DecodeWithMaxDepth lets
// callers (tests, the CLI) pick a different one.
const DefaultMaxDepth = 1000

// Kind identifies which alternative of the Value tagged union is held.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindInt
	KindFloat
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a decoded jsonb value: a tagged union over null, bool, string,
// number (int or float), array, and object (spec §3). The zero Value is
// KindNull.
//
// Once returned from Decode, a Value is fully independent of the input
// buffer: all strings are copied out.
type Value struct {
	kind Kind

	b   bool
	s   string
	i   int64
	f   float64
	dec decimal.Decimal
	hasDec bool

	arr []Value
	obj map[string]Value
}

func newNullValue() Value { return Value{kind: KindNull} }

func newBoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func newStringValue(s string) Value { return Value{kind: KindString, s: s} }

func newIntValueDec(i int64, dec decimal.Decimal) Value {
	return Value{kind: KindInt, i: i, dec: dec, hasDec: true}
}

func newFloatValueDec(f float64, dec decimal.Decimal) Value {
	return Value{kind: KindFloat, f: f, dec: dec, hasDec: true}
}

// newFloatValue constructs a float Value with no exact decimal backing,
// used for NaN (which shopspring/decimal cannot represent).
func newFloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

func newArrayValue(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

func newObjectValue(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindObject, obj: m}
}

// Kind reports which alternative this Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether this Value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean value and whether v holds one.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Str returns the string value and whether v holds one.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Int returns the integer value and whether v holds an exact integer.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the value as a float64. Integers are converted; NaN is
// returned for the decoded PostgreSQL numeric NaN.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Decimal returns the exact decimal backing of a numeric Value, when one
// was produced by the numeric decoder (it is absent for NaN).
func (v Value) Decimal() (decimal.Decimal, bool) { return v.dec, v.hasDec }

// Array returns the element slice and whether v holds an array.
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == KindArray }

// Object returns the key/value map and whether v holds an object.
func (v Value) Object() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// Decode parses a jsonb byte buffer and returns the decoded value (spec
// §4.6). It rejects buffers shorter than 4 bytes. Recursion depth is
// bounded by DefaultMaxDepth; use DecodeWithMaxDepth to change that.
func Decode(data []byte) (Value, error) {
	return DecodeWithMaxDepth(data, DefaultMaxDepth)
}

// DecodeWithMaxDepth is Decode with an explicit recursion depth cap.
func DecodeWithMaxDepth(data []byte, maxDepth int) (Value, error) {
	if len(data) < 4 {
		return Value{}, wrap(ErrTruncated, 0, "buffer of %d bytes is shorter than a JContainer header", len(data))
	}
	return decodeRoot(data, maxDepth)
}

// toInterface converts the decoded tree to a plain interface{} tree, for
// marshaling and for interop with code that wants dynamically-typed
// values.
func (v Value) toInterface() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.toInterface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.toInterface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders the decoded tree as JSON text, the way the
// teacher's own binary-JSON decoder re-marshals its decoded tree with
// goccy/go-json before handing it back to callers.
func (v Value) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(v.toInterface())
}
