package plist

import (
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// DecodeBinary decodes a binary property list document.
func DecodeBinary(data []byte) (*Value, error) {
	t, err := ParseTrailer(data)
	if err != nil {
		return nil, err
	}
	r := &binaryReader{
		data:    data,
		trailer: t,
		decoded: make(map[uint64]*Value),
	}
	return r.readObject(t.TopObject, nil, -1)
}

type binaryReader struct {
	data    []byte
	trailer *Trailer

	// Values are immutable, so an object referenced from several places
	// is decoded once and shared.
	decoded map[uint64]*Value
}

// objectStack is the chain of container ids being decoded, innermost first.
type objectStack struct {
	id     uint64
	parent *objectStack
}

func (s *objectStack) push(id uint64) *objectStack {
	return &objectStack{id: id, parent: s}
}

func (s *objectStack) contains(id uint64) bool {
	for ; s != nil; s = s.parent {
		if s.id == id {
			return true
		}
	}
	return false
}

// objectOffset looks up where object id starts. from is the offset of the
// referring container, or -1 for the top object.
func (r *binaryReader) objectOffset(id uint64, from int) (int, error) {
	t := r.trailer
	if id >= t.NumObjects {
		return 0, corrupt(from, "object reference %d out of range (%d objects)", id, t.NumObjects)
	}
	entry := int(t.OffsetTableOffset + id*uint64(t.OffsetSize))
	off, err := readUint(r.data, entry, int(t.OffsetSize))
	if err != nil {
		return 0, err
	}
	if off < headerSize || off >= t.OffsetTableOffset {
		return 0, corrupt(entry, "object %d offset %d outside object stream", id, off)
	}
	return int(off), nil
}

func (r *binaryReader) readObject(id uint64, stack *objectStack, from int) (*Value, error) {
	if v, ok := r.decoded[id]; ok {
		return v, nil
	}
	off, err := r.objectOffset(id, from)
	if err != nil {
		return nil, err
	}
	if stack.contains(id) {
		return nil, newError(ErrCyclicReference, off, "object %d contains itself", id)
	}

	v, err := r.decodeAt(id, off, stack)
	if err != nil {
		return nil, err
	}
	r.decoded[id] = v
	return v, nil
}

func (r *binaryReader) decodeAt(id uint64, off int, stack *objectStack) (*Value, error) {
	marker := r.data[off]
	tag, info := marker>>4, marker&0xf

	switch tag {
	case tagSimple:
		return r.readSimple(off, info)

	case tagInteger:
		if info > 4 {
			return nil, corrupt(off, "integer of 2^%d bytes", info)
		}
		n, err := r.readInteger(off+1, 1<<info)
		if err != nil {
			return nil, err
		}
		return Int(n), nil

	case tagReal:
		switch info {
		case 2:
			bits, err := readUint(r.data, off+1, 4)
			if err != nil {
				return nil, err
			}
			return Real(float64(math.Float32frombits(uint32(bits)))), nil
		case 3:
			bits, err := readUint(r.data, off+1, 8)
			if err != nil {
				return nil, err
			}
			return Real(math.Float64frombits(bits)), nil
		default:
			return nil, corrupt(off, "real of 2^%d bytes", info)
		}

	case tagDate:
		if info != 3 {
			return nil, corrupt(off, "date of 2^%d bytes", info)
		}
		bits, err := readUint(r.data, off+1, 8)
		if err != nil {
			return nil, err
		}
		return Date(math.Float64frombits(bits)), nil

	case tagData:
		b, err := r.readBytes(off, info, 1)
		if err != nil {
			return nil, err
		}
		return Data(b), nil

	case tagASCII:
		b, err := r.readBytes(off, info, 1)
		if err != nil {
			return nil, err
		}
		return Str(asciiString(b)), nil

	case tagUTF16:
		b, err := r.readBytes(off, info, 2)
		if err != nil {
			return nil, err
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
		}
		return Str(string(utf16.Decode(units))), nil

	case tagUTF8:
		n, start, err := readLength(r.data, off, info)
		if err != nil {
			return nil, err
		}
		span := utf8Span(r.data, start, n)
		if start+span > len(r.data) {
			return nil, corrupt(off, "utf-8 string of %d bytes overruns document", span)
		}
		return Str(string(r.data[start : start+span])), nil

	case tagUID:
		n := int(info) + 1
		if off+1+n > len(r.data) {
			return nil, corrupt(off, "truncated %d-byte uid", n)
		}
		return UID(r.data[off+1 : off+1+n]), nil

	case tagArray, tagOrdSet, tagSet:
		refs, err := r.readRefs(off, info, 1)
		if err != nil {
			return nil, err
		}
		stack = stack.push(id)
		values := make([]*Value, len(refs))
		for i, ref := range refs {
			if values[i], err = r.readObject(ref, stack, off); err != nil {
				return nil, err
			}
		}
		if tag == tagArray {
			return Array(values...), nil
		}
		return newSet(tag == tagOrdSet, values), nil

	case tagDict:
		refs, err := r.readRefs(off, info, 2)
		if err != nil {
			return nil, err
		}
		stack = stack.push(id)
		n := len(refs) / 2
		entries := make([]DictEntry, n)
		for i := 0; i < n; i++ {
			key, err := r.readObject(refs[i], stack, off)
			if err != nil {
				return nil, err
			}
			if key.Kind() != KindString {
				return nil, corrupt(off, "dictionary key %d is a %s", i, key.Kind())
			}
			val, err := r.readObject(refs[n+i], stack, off)
			if err != nil {
				return nil, err
			}
			entries[i] = Entry(key.strVal, val)
		}
		return Dict(entries...), nil

	default:
		return nil, corrupt(off, "unknown object marker 0x%02x", marker)
	}
}

func (r *binaryReader) readSimple(off int, info byte) (*Value, error) {
	switch info {
	case simpleNull, simpleFill:
		return Null(), nil
	case simpleFalse:
		return Bool(false), nil
	case simpleTrue:
		return Bool(true), nil
	case simpleURL, simpleBaseURL:
		return nil, newError(ErrUnsupportedFeature, off, "url objects")
	case simpleUUID:
		if off+17 > len(r.data) {
			return nil, corrupt(off, "truncated 16-byte uuid")
		}
		return UID(r.data[off+1 : off+17]), nil
	default:
		return nil, corrupt(off, "unknown simple object 0x%02x", info)
	}
}

// readInteger reads a width-byte integer. Widths below 8 bytes hold
// unsigned magnitudes, 8 bytes hold a two's-complement int64, and 16 bytes
// are accepted only when the value fits in an int64.
func (r *binaryReader) readInteger(off, width int) (int64, error) {
	if width < 16 {
		n, err := readUint(r.data, off, width)
		return int64(n), err
	}
	hi, err := readUint(r.data, off, 8)
	if err != nil {
		return 0, err
	}
	lo, err := readUint(r.data, off+8, 8)
	if err != nil {
		return 0, err
	}
	if (hi == 0 && int64(lo) >= 0) || (hi == math.MaxUint64 && int64(lo) < 0) {
		return int64(lo), nil
	}
	return 0, newError(ErrUnsupportedFeature, off-1, "integer wider than 64 bits")
}

// readBytes returns the payload of a length-prefixed object whose length
// counts units of unitSize bytes.
func (r *binaryReader) readBytes(off int, info byte, unitSize int) ([]byte, error) {
	n, start, err := readLength(r.data, off, info)
	if err != nil {
		return nil, err
	}
	end := start + n*unitSize
	if end > len(r.data) {
		return nil, corrupt(off, "payload of %d bytes overruns document", n*unitSize)
	}
	return r.data[start:end], nil
}

// readRefs reads the object references of a container: length*perEntry
// references of ObjectRefSize bytes each.
func (r *binaryReader) readRefs(off int, info byte, perEntry int) ([]uint64, error) {
	n, start, err := readLength(r.data, off, info)
	if err != nil {
		return nil, err
	}
	size := int(r.trailer.ObjectRefSize)
	count := n * perEntry
	if start+count*size > len(r.data) {
		return nil, corrupt(off, "%d references overrun document", count)
	}
	refs := make([]uint64, count)
	for i := range refs {
		if refs[i], err = readUint(r.data, start+i*size, size); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// asciiString decodes an ASCII payload. Bytes above 0x7f are not ASCII and
// each becomes U+FFFD.
func asciiString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c >= utf8.RuneSelf {
			sb.WriteRune(utf8.RuneError)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
