package plist

import (
	"math"
	"unicode/utf16"
)

// BinaryVersion names a binary format version by its two header digits.
type BinaryVersion string

const (
	Version00 BinaryVersion = "00"
	Version10 BinaryVersion = "10" // adds null and set objects; not writable here
	Version15 BinaryVersion = "15"
	Version20 BinaryVersion = "20"
)

// BinaryOptions configures the binary writer.
type BinaryOptions struct {
	// Version to write. Only Version00 is implemented.
	Version BinaryVersion
}

// DefaultBinaryOptions returns options for "bplist00" output.
func DefaultBinaryOptions() BinaryOptions {
	return BinaryOptions{Version: Version00}
}

// EncodeBinary encodes v as a "bplist00" document.
func EncodeBinary(v *Value) ([]byte, error) {
	return EncodeBinaryWithOptions(v, DefaultBinaryOptions())
}

// EncodeBinaryWithOptions encodes v with custom options.
//
// Trees holding null or set values need version 1.0 of the format, which
// is not implemented; they fail with ErrUnsupportedFeature, as does a
// request for any version other than Version00.
func EncodeBinaryWithOptions(v *Value, opts BinaryOptions) ([]byte, error) {
	version := opts.Version
	if version == "" {
		version = Version00
	}
	if version != Version00 {
		return nil, newError(ErrUnsupportedFeature, -1, "writing binary version %s", version)
	}
	if k, ok := requiresVersion10(v); ok {
		return nil, newError(ErrUnsupportedFeature, -1, "%s objects need binary version 1.0", k)
	}

	w := &binaryWriter{
		digests: newDigester(),
		ids:     make(map[[32]byte][]int),
	}
	w.assign(v)
	return w.emit()
}

// requiresVersion10 reports the first kind in v that version 0 cannot hold.
func requiresVersion10(v *Value) (Kind, bool) {
	switch v.Kind() {
	case KindNull, KindSet:
		return v.Kind(), true
	case KindArray:
		for _, e := range v.listVal {
			if k, ok := requiresVersion10(e); ok {
				return k, true
			}
		}
	case KindDict:
		for _, e := range v.dictVal {
			if k, ok := requiresVersion10(e.Value); ok {
				return k, true
			}
		}
	}
	return 0, false
}

type binaryWriter struct {
	digests *digester
	ids     map[[32]byte][]int // digest -> candidate ids, confirmed with Equal
	objects []*Value           // by id
}

// lookup returns the id already assigned to a value equal to v.
func (w *binaryWriter) lookup(v *Value) (int, bool) {
	for _, id := range w.ids[w.digests.sum(v)] {
		if Equal(w.objects[id], v) {
			return id, true
		}
	}
	return 0, false
}

// assign gives v and its descendants ids in depth-first order. Dictionary
// keys are visited before dictionary values. Subtrees equal to one already
// seen reuse its id.
func (w *binaryWriter) assign(v *Value) {
	if _, ok := w.lookup(v); ok {
		return
	}
	d := w.digests.sum(v)
	w.ids[d] = append(w.ids[d], len(w.objects))
	w.objects = append(w.objects, v)

	switch v.kind {
	case KindArray:
		for _, e := range v.listVal {
			w.assign(e)
		}
	case KindDict:
		for _, e := range v.dictVal {
			w.assign(Str(e.Key))
		}
		for _, e := range v.dictVal {
			w.assign(e.Value)
		}
	}
}

func (w *binaryWriter) ref(v *Value) uint64 {
	id, _ := w.lookup(v)
	return uint64(id)
}

func (w *binaryWriter) emit() ([]byte, error) {
	refSize := uintWidth(uint64(len(w.objects)))
	buf := append([]byte(binaryMagic), string(Version00)...)

	offsets := make([]uint64, len(w.objects))
	for id, v := range w.objects {
		offsets[id] = uint64(len(buf))
		var err error
		if buf, err = w.appendObject(buf, v, refSize); err != nil {
			return nil, err
		}
	}

	tableOffset := uint64(len(buf))
	offsetSize := uintWidth(tableOffset)
	for _, off := range offsets {
		buf = appendUint(buf, off, offsetSize)
	}

	buf = append(buf, 0, 0, 0, 0, 0, 0, byte(offsetSize), byte(refSize))
	buf = appendUint(buf, uint64(len(w.objects)), 8)
	buf = appendUint(buf, 0, 8) // the root is always assigned id 0
	buf = appendUint(buf, tableOffset, 8)
	return buf, nil
}

func (w *binaryWriter) appendObject(buf []byte, v *Value, refSize int) ([]byte, error) {
	switch v.kind {
	case KindBool:
		if v.boolVal {
			return append(buf, tagSimple<<4|simpleTrue), nil
		}
		return append(buf, tagSimple<<4|simpleFalse), nil

	case KindInteger:
		return appendInteger(buf, v.intVal), nil

	case KindReal:
		buf = append(buf, tagReal<<4|3)
		return appendUint(buf, math.Float64bits(v.realVal), 8), nil

	case KindDate:
		buf = append(buf, tagDate<<4|3)
		return appendUint(buf, math.Float64bits(v.realVal), 8), nil

	case KindData:
		buf = appendHeader(buf, tagData, len(v.bytesVal))
		return append(buf, v.bytesVal...), nil

	case KindString:
		if isASCII(v.strVal) {
			buf = appendHeader(buf, tagASCII, len(v.strVal))
			return append(buf, v.strVal...), nil
		}
		units := utf16.Encode([]rune(v.strVal))
		buf = appendHeader(buf, tagUTF16, len(units))
		for _, u := range units {
			buf = append(buf, byte(u>>8), byte(u))
		}
		return buf, nil

	case KindUID:
		n := len(v.bytesVal)
		if n > 16 {
			return nil, newError(ErrUnsupportedFeature, -1, "uid of %d bytes", n)
		}
		buf = append(buf, tagUID<<4|byte(n-1))
		return append(buf, v.bytesVal...), nil

	case KindArray:
		buf = appendHeader(buf, tagArray, len(v.listVal))
		for _, e := range v.listVal {
			buf = appendUint(buf, w.ref(e), refSize)
		}
		return buf, nil

	case KindDict:
		buf = appendHeader(buf, tagDict, len(v.dictVal))
		for _, e := range v.dictVal {
			buf = appendUint(buf, w.ref(Str(e.Key)), refSize)
		}
		for _, e := range v.dictVal {
			buf = appendUint(buf, w.ref(e.Value), refSize)
		}
		return buf, nil

	default:
		return nil, newError(ErrUnsupportedFeature, -1, "%s objects need binary version 1.0", v.kind)
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
