// Package jsonval implements a minimal recursive-descent parser for the
// JSON subset used by netlist documents.
//
// The grammar covers strings, unsigned integers, arrays, and objects with
// ordered string keys. It deliberately omits everything a netlist document
// never contains: booleans, null, floating point, and escape-sequence
// decoding. Parsing consumes exactly one value from the front of the
// stream; a [Parser] can be called repeatedly to read concatenated values.
//
// The parser is tolerant by default: repeated and trailing separators are
// skipped, and duplicate object keys overwrite (last wins). Both behaviors
// can be tightened via [Options].
package jsonval

// Kind identifies the variant stored in a [Value].
type Kind int

const (
	// KindString is a double-quoted string value.
	KindString Kind = iota
	// KindInt is an unsigned decimal integer value.
	KindInt
	// KindArray is an ordered sequence of values.
	KindArray
	// KindObject is an ordered mapping of string keys to values.
	KindObject
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is one node of a parsed document tree. A Value owns its children
// exclusively: the tree has no sharing and no cycles. Values are immutable
// once the parser returns them.
type Value struct {
	kind Kind
	str  string
	num  int
	arr  []*Value
	keys []string
	obj  map[string]*Value
}

// Kind returns the variant stored in the value.
func (v *Value) Kind() Kind { return v.kind }

// Str returns the string payload. It is only meaningful for KindString.
func (v *Value) Str() string { return v.str }

// Int returns the integer payload. It is only meaningful for KindInt.
func (v *Value) Int() int { return v.num }

// Len returns the number of elements (KindArray) or keys (KindObject).
// It returns 0 for scalar values.
func (v *Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.keys)
	default:
		return 0
	}
}

// At returns the i-th element of an array value.
// It panics if the value is not an array or the index is out of range,
// mirroring slice indexing.
func (v *Value) At(i int) *Value { return v.arr[i] }

// Keys returns the object keys in document order. Duplicate keys keep the
// position of their first occurrence. The returned slice must not be
// modified.
func (v *Value) Keys() []string { return v.keys }

// Get returns the value stored under key and whether the key exists.
// It returns nil, false for non-object values.
func (v *Value) Get(key string) (*Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	val, ok := v.obj[key]
	return val, ok
}

// Has reports whether an object value contains the given key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}
