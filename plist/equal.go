package plist

import (
	"bytes"
	"cmp"
	"math"
	"slices"
	"strings"
)

// Equal reports whether a and b are the same variant with recursively equal
// payloads. Dictionaries and sets compare without regard to order; arrays
// compare element by element. NaN equals NaN.
func Equal(a, b *Value) bool {
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if a.IsNull() {
		return true
	}

	switch a.kind {
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInteger:
		return a.intVal == b.intVal
	case KindReal, KindDate:
		return realEqual(a.realVal, b.realVal)
	case KindString:
		return a.strVal == b.strVal
	case KindData:
		return bytes.Equal(a.bytesVal, b.bytesVal)
	case KindUID:
		return bytes.Equal(uidMagnitude(a.bytesVal), uidMagnitude(b.bytesVal))
	case KindArray:
		if len(a.listVal) != len(b.listVal) {
			return false
		}
		for i := range a.listVal {
			if !Equal(a.listVal[i], b.listVal[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(a.dictVal) != len(b.dictVal) {
			return false
		}
		for _, e := range a.dictVal {
			other := b.Get(e.Key)
			if other == nil || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	case KindSet:
		if len(a.listVal) != len(b.listVal) {
			return false
		}
		for _, x := range a.listVal {
			if !slices.ContainsFunc(b.listVal, func(y *Value) bool { return Equal(x, y) }) {
				return false
			}
		}
		return true
	}
	return false
}

// Equal is shorthand for Equal(v, other).
func (v *Value) Equal(other *Value) bool {
	return Equal(v, other)
}

func realEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

// uidMagnitude strips leading zero bytes, keeping at least one byte.
func uidMagnitude(b []byte) []byte {
	for len(b) > 1 && b[0] == 0 {
		b = b[1:]
	}
	return b
}

// ============================================================
// Ordering
// ============================================================

type orderFamily uint8

const (
	familyNone orderFamily = iota
	familyBool
	familyNumber
	familyString
	familyUID
)

func familyOf(v *Value) orderFamily {
	switch v.Kind() {
	case KindBool:
		return familyBool
	case KindInteger, KindReal:
		return familyNumber
	case KindString:
		return familyString
	case KindUID:
		return familyUID
	default:
		return familyNone
	}
}

// Orderable reports whether v can be a member of a sorted set. Only
// booleans, numbers, strings and unique identifiers are orderable.
func (v *Value) Orderable() bool {
	return familyOf(v) != familyNone
}

// Compare orders two orderable values. Integers and reals compare
// numerically with each other; every other pairing must share a variant.
// Values without a common order yield ErrIncomparableSetElement.
func Compare(a, b *Value) (int, error) {
	fa, fb := familyOf(a), familyOf(b)
	if fa == familyNone || fa != fb {
		return 0, newError(ErrIncomparableSetElement, -1, "cannot order %s against %s", a.Kind(), b.Kind())
	}

	switch fa {
	case familyBool:
		switch {
		case a.boolVal == b.boolVal:
			return 0, nil
		case b.boolVal:
			return -1, nil
		default:
			return 1, nil
		}
	case familyNumber:
		if a.kind == KindInteger && b.kind == KindInteger {
			return cmp.Compare(a.intVal, b.intVal), nil
		}
		return cmp.Compare(numeric(a), numeric(b)), nil
	case familyString:
		return strings.Compare(a.strVal, b.strVal), nil
	default:
		ma, mb := uidMagnitude(a.bytesVal), uidMagnitude(b.bytesVal)
		if c := cmp.Compare(len(ma), len(mb)); c != 0 {
			return c, nil
		}
		return bytes.Compare(ma, mb), nil
	}
}

func numeric(v *Value) float64 {
	if v.kind == KindInteger {
		return float64(v.intVal)
	}
	return v.realVal
}

// sortValues returns a sorted copy of values, or an error when any member is
// not orderable against the first.
func sortValues(values []*Value) ([]*Value, error) {
	if len(values) == 0 {
		return values, nil
	}
	family := familyOf(values[0])
	for _, v := range values {
		if f := familyOf(v); f == familyNone || f != family {
			return nil, newError(ErrIncomparableSetElement, -1, "cannot order %s against %s", v.Kind(), values[0].Kind())
		}
	}
	out := slices.Clone(values)
	slices.SortStableFunc(out, func(a, b *Value) int {
		c, _ := Compare(a, b)
		return c
	})
	return out, nil
}
