package vm

import (
	"strconv"
)

// Value is anything an expression can evaluate to.
//
// The variants are:
//   - Int, Str, Bool, Nil: native payloads, boxed on demand
//   - ClassRef: the raw text of a class literal, used as a class name
//   - *Closure: an evaluated block literal
//   - *Object: an object instance
//
// Natives are never unboxed implicitly; only methods that read the "value"
// attribute of a boxed instance see the payload.
type Value interface {
	isValue()
}

// Int is a native integer.
type Int int64

// Str is a native string.
type Str string

// Bool is a native boolean.
type Bool bool

// Nil is the native absent value.
type Nil struct{}

// ClassRef names a class. It is produced by class literals.
type ClassRef string

func (Int) isValue()      {}
func (Str) isValue()      {}
func (Bool) isValue()     {}
func (Nil) isValue()      {}
func (ClassRef) isValue() {}
func (*Closure) isValue() {}
func (*Object) isValue()  {}

// Well-known attribute keys.
const (
	valueAttr = "value"
	blockAttr = "block"
)

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsNative reports whether v is an unboxed payload.
func IsNative(v Value) bool {
	switch v.(type) {
	case Int, Str, Bool, Nil:
		return true
	}
	return false
}

// valuesEqual compares two values by native equality. Objects and closures
// compare by identity.
func valuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// payloadText renders a native payload as text. Non-native values render
// as the empty string.
func payloadText(v Value) string {
	switch p := v.(type) {
	case Str:
		return string(p)
	case Int:
		return strconv.FormatInt(int64(p), 10)
	case Bool:
		if p {
			return "true"
		}
		return "false"
	case Nil:
		return "nil"
	}
	return ""
}
