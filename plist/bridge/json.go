package bridge

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/Neumenon/plist/plist"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Two modes:
//   - Plain (default): dates become RFC 3339 strings, data becomes base64
//     and UIDs become numbers, so output is ordinary JSON.
//   - Extended: those kinds become {"$plist": kind, ...} objects and read
//     back losslessly.

// markerKey tags extended JSON objects.
const markerKey = "$plist"

// Opts configures the JSON bridge.
type Opts struct {
	// Extended enables $plist markers for dates, data and UIDs.
	Extended bool

	// Indent, when non-empty, pretty-prints output with this indent.
	Indent string
}

// DefaultOpts returns plain, compact JSON options.
func DefaultOpts() Opts {
	return Opts{}
}

// ToJSON converts v to JSON using opts. NaN and infinities, which JSON
// cannot express, are errors.
func ToJSON(v *plist.Value, opts Opts) ([]byte, error) {
	x, err := toJSONValue(v, opts)
	if err != nil {
		return nil, err
	}
	if opts.Indent != "" {
		return json.MarshalIndent(x, "", opts.Indent)
	}
	return json.Marshal(x)
}

func toJSONValue(v *plist.Value, opts Opts) (interface{}, error) {
	switch v.Kind() {
	case plist.KindReal:
		f, _ := v.AsReal()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("NaN/Infinity not allowed in JSON")
		}
		return f, nil

	case plist.KindDate:
		t, _ := v.AsTime()
		s := t.Format(time.RFC3339Nano)
		if opts.Extended {
			return map[string]interface{}{markerKey: "date", "value": s}, nil
		}
		return s, nil

	case plist.KindData:
		b, _ := v.AsData()
		s := base64.StdEncoding.EncodeToString(b)
		if opts.Extended {
			return map[string]interface{}{markerKey: "data", "base64": s}, nil
		}
		return s, nil

	case plist.KindUID:
		raw, _ := v.AsUID()
		if opts.Extended {
			return map[string]interface{}{markerKey: "uid", "hex": hex.EncodeToString(raw)}, nil
		}
		return ToNative(v)

	case plist.KindArray, plist.KindSet:
		var elems []*plist.Value
		if v.Kind() == plist.KindSet {
			elems, _ = v.AsSet()
		} else {
			elems, _ = v.AsArray()
		}
		items := make([]interface{}, 0, len(elems))
		for i, elem := range elems {
			x, err := toJSONValue(elem, opts)
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
			x, err := toJSONValue(e.Value, opts)
			if err != nil {
				return nil, fmt.Errorf("dict[%q]: %w", e.Key, err)
			}
			obj[e.Key] = x
		}
		return obj, nil

	default:
		return ToNative(v)
	}
}

// FromJSON converts JSON to a property list value. Whole numbers within
// ±2^53 become integers, other numbers reals. Object keys are sorted.
func FromJSON(data []byte, opts Opts) (*plist.Value, error) {
	var x interface{}
	if err := json.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	return fromJSONValue(x, opts)
}

func fromJSONValue(x interface{}, opts Opts) (*plist.Value, error) {
	switch val := x.(type) {
	case float64:
		if val == math.Trunc(val) && val >= -9007199254740991 && val <= 9007199254740991 {
			return plist.Int(int64(val)), nil
		}
		return plist.Real(val), nil

	case []interface{}:
		items := make([]*plist.Value, 0, len(val))
		for i, elem := range val {
			item, err := fromJSONValue(elem, opts)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			items = append(items, item)
		}
		return plist.Array(items...), nil

	case map[string]interface{}:
		if kind, ok := val[markerKey].(string); ok && opts.Extended {
			return fromMarker(kind, val)
		}
		converted := make(map[string]*plist.Value, len(val))
		for k, elem := range val {
			item, err := fromJSONValue(elem, opts)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			converted[k] = item
		}
		return FromNative(converted)

	default:
		return FromNative(val)
	}
}

func fromMarker(kind string, obj map[string]interface{}) (*plist.Value, error) {
	switch kind {
	case "date":
		s, ok := obj["value"].(string)
		if !ok {
			return nil, fmt.Errorf("$plist date marker missing value")
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		return plist.DateFromTime(t), nil

	case "data":
		s, ok := obj["base64"].(string)
		if !ok {
			return nil, fmt.Errorf("$plist data marker missing base64")
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
		return plist.Data(b), nil

	case "uid":
		s, ok := obj["hex"].(string)
		if !ok {
			return nil, fmt.Errorf("$plist uid marker missing hex")
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid uid: %w", err)
		}
		return plist.UID(b), nil

	default:
		return nil, fmt.Errorf("unknown $plist marker type: %s", kind)
	}
}
