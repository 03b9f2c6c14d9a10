// Package bridge converts property list values to and from native Go values,
// JSON and YAML, and maps dictionaries onto structs.
package bridge

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/Neumenon/plist/plist"
)

// ============================================================
// ToNative - Value to Go
// ============================================================

// ToNative converts v to plain Go values:
//
//	Dict      map[string]interface{}
//	Array/Set []interface{}
//	Integer   int64
//	Real      float64
//	Date      time.Time (UTC)
//	Data      []byte
//	UID       uint64, or []byte when wider than 64 bits
//	Null      nil
func ToNative(v *plist.Value) (interface{}, error) {
	switch v.Kind() {
	case plist.KindNull:
		return nil, nil
	case plist.KindBool:
		return v.AsBool()
	case plist.KindInteger:
		return v.AsInt()
	case plist.KindReal:
		return v.AsReal()
	case plist.KindString:
		return v.AsString()
	case plist.KindDate:
		return v.AsTime()
	case plist.KindData:
		b, err := v.AsData()
		return append([]byte{}, b...), err
	case plist.KindUID:
		if n, err := v.AsUIDUint64(); err == nil {
			return n, nil
		}
		b, err := v.AsUID()
		return append([]byte{}, b...), err

	case plist.KindArray, plist.KindSet:
		var elems []*plist.Value
		if v.Kind() == plist.KindSet {
			elems, _ = v.AsSet()
		} else {
			elems, _ = v.AsArray()
		}
		items := make([]interface{}, 0, len(elems))
		for i, elem := range elems {
			x, err := ToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			items = append(items, x)
		}
		return items, nil

	case plist.KindDict:
		entries, _ := v.AsDict()
		obj := make(map[string]interface{}, len(entries))
		for _, e := range entries {
			x, err := ToNative(e.Value)
			if err != nil {
				return nil, fmt.Errorf("dict[%q]: %w", e.Key, err)
			}
			obj[e.Key] = x
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("unsupported value kind: %s", v.Kind())
	}
}

// ============================================================
// FromNative - Go to Value
// ============================================================

var timeType = reflect.TypeOf(time.Time{})

// FromNative converts a Go value to a property list value. It accepts
// booleans, every integer and float type, strings, time.Time, []byte,
// slices, arrays, string-keyed maps, structs (fields named by a `plist`
// tag, "-" to skip, ",omitempty" to drop zero values), pointers and
// *plist.Value. Map keys are sorted so output is deterministic.
func FromNative(x interface{}) (*plist.Value, error) {
	switch val := x.(type) {
	case nil:
		return plist.Null(), nil
	case *plist.Value:
		if val == nil {
			return plist.Null(), nil
		}
		return val, nil
	case time.Time:
		return plist.DateFromTime(val), nil
	case []byte:
		return plist.Data(val), nil
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (*plist.Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return plist.Null(), nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return plist.Null(), nil
		}
		return FromNative(rv.Elem().Interface())
	case reflect.Bool:
		return plist.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return plist.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt64 {
			return nil, fmt.Errorf("unsigned integer %d overflows int64", n)
		}
		return plist.Int(int64(n)), nil
	case reflect.Float32, reflect.Float64:
		return plist.Real(rv.Float()), nil
	case reflect.String:
		return plist.Str(rv.String()), nil

	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return plist.Data(b), nil
		}
		items := make([]*plist.Value, rv.Len())
		for i := range items {
			item, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			items[i] = item
		}
		return plist.Array(items...), nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key type %s is not a string", rv.Type().Key())
		}
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		slices.Sort(names)
		entries := make([]plist.DictEntry, 0, len(names))
		for _, name := range names {
			item, err := FromNative(rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, fmt.Errorf("dict[%q]: %w", name, err)
			}
			entries = append(entries, plist.Entry(name, item))
		}
		return plist.Dict(entries...), nil

	case reflect.Struct:
		if rv.Type() == timeType {
			return plist.DateFromTime(rv.Interface().(time.Time)), nil
		}
		return fromStruct(rv)

	default:
		return nil, fmt.Errorf("unsupported Go type: %s", rv.Type())
	}
}

func fromStruct(rv reflect.Value) (*plist.Value, error) {
	t := rv.Type()
	entries := make([]plist.DictEntry, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name, omitEmpty := fieldName(field)
		if name == "-" {
			continue
		}
		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		item, err := FromNative(fv.Interface())
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
		}
		entries = append(entries, plist.Entry(name, item))
	}
	return plist.Dict(entries...), nil
}

func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get(TagName)
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, opts == "omitempty"
}
