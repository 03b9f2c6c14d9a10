package plist

import "fmt"

// Binary layout: "bplist" + two version digits, the object stream, the
// offset table and a 32-byte trailer.
const (
	binaryMagic = "bplist"
	headerSize  = 8
	trailerSize = 32
)

// Object type tags (high nibble of each object's marker byte).
const (
	tagSimple  byte = 0x0
	tagInteger byte = 0x1
	tagReal    byte = 0x2
	tagDate    byte = 0x3
	tagData    byte = 0x4
	tagASCII   byte = 0x5
	tagUTF16   byte = 0x6
	tagUTF8    byte = 0x7
	tagUID     byte = 0x8
	tagArray   byte = 0xa
	tagOrdSet  byte = 0xb
	tagSet     byte = 0xc
	tagDict    byte = 0xd
)

// Simple object subtags (low nibble when the tag is tagSimple).
const (
	simpleNull    byte = 0x0
	simpleFalse   byte = 0x8
	simpleTrue    byte = 0x9
	simpleURL     byte = 0xc
	simpleBaseURL byte = 0xd
	simpleUUID    byte = 0xe
	simpleFill    byte = 0xf
)

// Trailer holds the fields of a binary document's 32-byte trailer.
type Trailer struct {
	Version           string // two version digits following the magic
	OffsetSize        uint8  // width of each offset table entry
	ObjectRefSize     uint8  // width of each object reference
	NumObjects        uint64
	TopObject         uint64
	OffsetTableOffset uint64
}

// String returns a one-line summary.
func (t *Trailer) String() string {
	return fmt.Sprintf("bplist%s objects=%d top=%d offsets@%d offsetSize=%d refSize=%d",
		t.Version, t.NumObjects, t.TopObject, t.OffsetTableOffset, t.OffsetSize, t.ObjectRefSize)
}

// ParseTrailer validates the header of a binary document and reads its
// trailer.
func ParseTrailer(data []byte) (*Trailer, error) {
	if len(data) < headerSize || string(data[:len(binaryMagic)]) != binaryMagic {
		return nil, newError(ErrBadMagic, 0, "missing %q header", binaryMagic)
	}
	major, minor := data[6], data[7]
	if !isDigit(major) || !isDigit(minor) {
		return nil, newError(ErrBadMagic, 6, "version %q is not two digits", data[6:8])
	}
	if major != '0' {
		return nil, newError(ErrUnsupportedVersion, 6, "binary version %c%c", major, minor)
	}
	if len(data) < headerSize+trailerSize {
		return nil, newError(ErrCorruptTrailer, len(data), "document too short for trailer")
	}

	at := len(data) - trailerSize
	t := &Trailer{
		Version:       string(data[6:8]),
		OffsetSize:    data[at+6],
		ObjectRefSize: data[at+7],
	}
	t.NumObjects, _ = readUint(data, at+8, 8)
	t.TopObject, _ = readUint(data, at+16, 8)
	t.OffsetTableOffset, _ = readUint(data, at+24, 8)

	if err := t.validate(uint64(len(data))); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Trailer) validate(length uint64) error {
	at := int(length) - trailerSize
	if t.OffsetSize < 1 || t.OffsetSize > 8 {
		return newError(ErrCorruptTrailer, at+6, "offset size %d", t.OffsetSize)
	}
	if t.ObjectRefSize < 1 || t.ObjectRefSize > 8 {
		return newError(ErrCorruptTrailer, at+7, "object reference size %d", t.ObjectRefSize)
	}
	if t.NumObjects == 0 || t.NumObjects >= length {
		return newError(ErrCorruptTrailer, at+8, "object count %d", t.NumObjects)
	}
	if t.OffsetTableOffset < headerSize || t.OffsetTableOffset > length {
		return newError(ErrCorruptTrailer, at+24, "offset table at %d", t.OffsetTableOffset)
	}
	if (t.NumObjects+1)*uint64(t.OffsetSize) > length-t.OffsetTableOffset {
		return newError(ErrCorruptTrailer, at+24, "offset table of %d entries overruns document", t.NumObjects)
	}
	if t.TopObject >= length-trailerSize || t.TopObject >= t.NumObjects {
		return newError(ErrCorruptTrailer, at+16, "top object %d", t.TopObject)
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
