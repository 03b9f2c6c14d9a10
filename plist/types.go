package plist

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Kind represents property list value types.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindReal
	KindString
	KindDate
	KindData
	KindArray
	KindDict
	KindSet
	KindUID // Keyed-archive object reference, 1 to 16 bytes
)

// String returns the type name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindData:
		return "data"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindSet:
		return "set"
	case KindUID:
		return "uid"
	default:
		return "unknown"
	}
}

// Value represents a property list value.
//
// Values are immutable once constructed: constructors copy their inputs and
// accessors hand out slices that callers must not modify. A nil *Value
// behaves as null.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	realVal  float64 // Real, and Date seconds since Epoch
	strVal   string
	bytesVal []byte // Data, and UID big-endian magnitude

	// Container values
	listVal []*Value // Array and Set
	dictVal []DictEntry
	sorted  bool // Set only
}

// DictEntry represents a key-value pair in a dictionary.
type DictEntry struct {
	Key   string
	Value *Value
}

// Entry creates a DictEntry for use in Dict construction.
func Entry(key string, value *Value) DictEntry {
	return DictEntry{Key: key, Value: value}
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInteger, intVal: v}
}

// Real creates a floating point value. NaN and both infinities are allowed.
func Real(v float64) *Value {
	return &Value{kind: KindReal, realVal: v}
}

// Str creates a string value. Each byte of v that is not part of valid
// UTF-8 is replaced by U+FFFD, the same substitution the writers make.
func Str(v string) *Value {
	return &Value{kind: KindString, strVal: validString(v)}
}

func validString(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return string([]rune(s))
}

// Date creates a date from seconds relative to Epoch.
func Date(seconds float64) *Value {
	return &Value{kind: KindDate, realVal: seconds}
}

// DateFromTime creates a date from a time.Time.
func DateFromTime(t time.Time) *Value {
	return Date(secondsFromTime(t))
}

// Data creates a data value holding a copy of b.
func Data(b []byte) *Value {
	return &Value{kind: KindData, bytesVal: append([]byte{}, b...)}
}

// UID creates a unique identifier from a big-endian magnitude. An empty
// magnitude is stored as a single zero byte.
func UID(magnitude []byte) *Value {
	if len(magnitude) == 0 {
		magnitude = []byte{0}
	}
	return &Value{kind: KindUID, bytesVal: append([]byte{}, magnitude...)}
}

// UIDFromUint64 creates a unique identifier using the narrowest of 1, 2, 4
// or 8 bytes.
func UIDFromUint64(n uint64) *Value {
	return &Value{kind: KindUID, bytesVal: appendUint(nil, n, uintWidth(n))}
}

// Array creates an array value. Nil elements become null.
func Array(values ...*Value) *Value {
	return &Value{kind: KindArray, listVal: nonNil(values)}
}

// Dict creates a dictionary value.
//
// Entries with a nil value are ignored. Keys get the same UTF-8 repair as
// Str. A repeated key keeps the position of its first occurrence and the
// value of its last.
func Dict(entries ...DictEntry) *Value {
	out := make([]DictEntry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.Value == nil {
			continue
		}
		e.Key = validString(e.Key)
		if i, ok := index[e.Key]; ok {
			out[i].Value = e.Value
			continue
		}
		index[e.Key] = len(out)
		out = append(out, e)
	}
	return &Value{kind: KindDict, dictVal: out}
}

// Set creates a set that keeps insertion order. Value-equal duplicates are
// dropped.
func Set(values ...*Value) *Value {
	return &Value{kind: KindSet, listVal: distinct(nonNil(values))}
}

// SortedSet creates a set whose members are kept in ascending order. Every
// member must be orderable against every other one, otherwise the error
// wraps ErrIncomparableSetElement.
func SortedSet(values ...*Value) (*Value, error) {
	members, err := sortValues(distinct(nonNil(values)))
	if err != nil {
		return nil, err
	}
	return &Value{kind: KindSet, listVal: members, sorted: true}, nil
}

// newSet builds a set as read from a document, without reordering.
func newSet(sorted bool, values []*Value) *Value {
	return &Value{kind: KindSet, listVal: distinct(values), sorted: sorted}
}

func nonNil(values []*Value) []*Value {
	out := make([]*Value, len(values))
	for i, v := range values {
		if v == nil {
			v = Null()
		}
		out[i] = v
	}
	return out
}

func distinct(values []*Value) []*Value {
	out := values[:0:0]
	for _, v := range values {
		dup := false
		for _, seen := range out {
			if Equal(seen, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value type.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

func (v *Value) expect(k Kind) error {
	if v == nil {
		return fmt.Errorf("plist: nil value")
	}
	if v.kind != k {
		return fmt.Errorf("plist: expected %s, got %s", k, v.kind)
	}
	return nil
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if err := v.expect(KindBool); err != nil {
		return false, err
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if err := v.expect(KindInteger); err != nil {
		return 0, err
	}
	return v.intVal, nil
}

// AsReal returns the floating point value.
func (v *Value) AsReal() (float64, error) {
	if err := v.expect(KindReal); err != nil {
		return 0, err
	}
	return v.realVal, nil
}

// AsString returns the string value.
func (v *Value) AsString() (string, error) {
	if err := v.expect(KindString); err != nil {
		return "", err
	}
	return v.strVal, nil
}

// AsDate returns the date as seconds relative to Epoch.
func (v *Value) AsDate() (float64, error) {
	if err := v.expect(KindDate); err != nil {
		return 0, err
	}
	return v.realVal, nil
}

// AsTime returns the date as a UTC time.Time.
func (v *Value) AsTime() (time.Time, error) {
	if err := v.expect(KindDate); err != nil {
		return time.Time{}, err
	}
	return timeFromSeconds(v.realVal), nil
}

// AsData returns the data bytes. The slice must not be modified.
func (v *Value) AsData() ([]byte, error) {
	if err := v.expect(KindData); err != nil {
		return nil, err
	}
	return v.bytesVal, nil
}

// AsUID returns the identifier bytes as stored. The slice must not be modified.
func (v *Value) AsUID() ([]byte, error) {
	if err := v.expect(KindUID); err != nil {
		return nil, err
	}
	return v.bytesVal, nil
}

// AsUIDUint64 returns the identifier as an integer when its magnitude fits.
func (v *Value) AsUIDUint64() (uint64, error) {
	if err := v.expect(KindUID); err != nil {
		return 0, err
	}
	mag := uidMagnitude(v.bytesVal)
	if len(mag) > 8 {
		return 0, fmt.Errorf("plist: uid wider than 64 bits")
	}
	var n uint64
	for _, b := range mag {
		n = n<<8 | uint64(b)
	}
	return n, nil
}

// AsArray returns the array elements. The slice must not be modified.
func (v *Value) AsArray() ([]*Value, error) {
	if err := v.expect(KindArray); err != nil {
		return nil, err
	}
	return v.listVal, nil
}

// AsDict returns the dictionary entries in insertion order. The slice must
// not be modified.
func (v *Value) AsDict() ([]DictEntry, error) {
	if err := v.expect(KindDict); err != nil {
		return nil, err
	}
	return v.dictVal, nil
}

// AsSet returns the set members. The slice must not be modified.
func (v *Value) AsSet() ([]*Value, error) {
	if err := v.expect(KindSet); err != nil {
		return nil, err
	}
	return v.listVal, nil
}

// IsSorted reports whether a set keeps its members in ascending order.
func (v *Value) IsSorted() bool {
	return v != nil && v.kind == KindSet && v.sorted
}

// Len returns the length of an array, set, dictionary, string or data value.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray, KindSet:
		return len(v.listVal)
	case KindDict:
		return len(v.dictVal)
	case KindString:
		return len(v.strVal)
	case KindData:
		return len(v.bytesVal)
	default:
		return 0
	}
}

// Get returns a dictionary value by key, or nil.
func (v *Value) Get(key string) *Value {
	if v.Kind() != KindDict {
		return nil
	}
	for _, e := range v.dictVal {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Keys returns the dictionary keys in insertion order.
func (v *Value) Keys() []string {
	if v.Kind() != KindDict {
		return nil
	}
	keys := make([]string, len(v.dictVal))
	for i, e := range v.dictVal {
		keys[i] = e.Key
	}
	return keys
}

// Index returns the i-th element of an array.
func (v *Value) Index(i int) (*Value, error) {
	if v.Kind() != KindArray {
		return nil, fmt.Errorf("plist: not an array")
	}
	if i < 0 || i >= len(v.listVal) {
		return nil, fmt.Errorf("plist: index %d out of bounds (len=%d)", i, len(v.listVal))
	}
	return v.listVal[i], nil
}

// String returns a short debug representation.
func (v *Value) String() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.boolVal)
	case KindInteger:
		return fmt.Sprintf("integer(%d)", v.intVal)
	case KindReal:
		return fmt.Sprintf("real(%g)", v.realVal)
	case KindString:
		return fmt.Sprintf("string(%q)", v.strVal)
	case KindDate:
		return fmt.Sprintf("date(%s)", timeFromSeconds(v.realVal).Format(time.RFC3339))
	case KindData:
		return fmt.Sprintf("data(%d bytes)", len(v.bytesVal))
	case KindUID:
		return fmt.Sprintf("uid(%x)", v.bytesVal)
	default:
		return fmt.Sprintf("%s(%d)", v.kind, v.Len())
	}
}
