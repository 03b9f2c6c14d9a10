package plist

import "math/bits"

// Variable-width integer and length helpers shared by the binary reader
// and writer. All multi-byte integers are big-endian.

// uintWidth returns the narrowest of 1, 2, 4 or 8 bytes that holds n.
func uintWidth(n uint64) int {
	switch {
	case n <= 0xff:
		return 1
	case n <= 0xffff:
		return 2
	case n <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

// widthInfo returns the marker nibble for a power-of-two byte width.
func widthInfo(width int) byte {
	return byte(bits.TrailingZeros(uint(width)))
}

// readUint reads an unsigned integer of width bytes at off.
func readUint(data []byte, off, width int) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, corrupt(off, "unsupported integer width %d", width)
	}
	if off < 0 || off > len(data)-width {
		return 0, corrupt(off, "truncated %d-byte integer", width)
	}
	var n uint64
	for _, b := range data[off : off+width] {
		n = n<<8 | uint64(b)
	}
	return n, nil
}

// appendUint appends the low width bytes of n.
func appendUint(buf []byte, n uint64, width int) []byte {
	for shift := (width - 1) * 8; shift >= 0; shift -= 8 {
		buf = append(buf, byte(n>>uint(shift)))
	}
	return buf
}

// readLength resolves the length of the object whose marker byte sits at
// off. An info nibble below 15 is the length itself; 15 means an integer
// object follows the marker and holds the length. It returns the length and
// the offset of the first payload byte.
func readLength(data []byte, off int, info byte) (length, start int, err error) {
	if info < 0xf {
		return int(info), off + 1, nil
	}

	p := off + 1
	if p >= len(data) {
		return 0, 0, corrupt(off, "missing extended length")
	}
	marker := data[p]
	if marker>>4 != tagInteger {
		return 0, 0, corrupt(p, "extended length marker 0x%02x is not an integer", marker)
	}
	width := 1 << (marker & 0xf)
	if width > 8 {
		return 0, 0, corrupt(p, "extended length wider than 8 bytes")
	}
	n, err := readUint(data, p+1, width)
	if err != nil {
		return 0, 0, err
	}
	// Negative lengths read as huge unsigned values and fail here too.
	if n > uint64(len(data)) {
		return 0, 0, corrupt(p, "length %d exceeds document size", n)
	}
	return int(n), p + 1 + width, nil
}

// appendHeader appends a marker byte for tag with an inline or extended
// length.
func appendHeader(buf []byte, tag byte, n int) []byte {
	if n < 0xf {
		return append(buf, tag<<4|byte(n))
	}
	buf = append(buf, tag<<4|0xf)
	return appendInteger(buf, int64(n))
}

// appendInteger appends an integer object using the narrowest width.
// Negative values always take 8 bytes.
func appendInteger(buf []byte, v int64) []byte {
	width := 8
	if v >= 0 {
		width = uintWidth(uint64(v))
	}
	buf = append(buf, tagInteger<<4|widthInfo(width))
	return appendUint(buf, uint64(v), width)
}

// utf8Span returns how many bytes starting at off hold units UTF-16 code
// units of UTF-8 text. Four-byte sequences count as two units. Whenever the
// bytes do not look like well-formed UTF-8 the unit count itself is
// returned, treating the string as one byte per unit.
func utf8Span(data []byte, off, units int) int {
	pos := off
	for i := 0; i < units; i++ {
		if pos >= len(data) {
			return units
		}
		var size int
		switch b := data[pos]; {
		case b < 0x80:
			size = 1
		case b < 0xc2:
			return units
		case b < 0xe0:
			size = 2
		case b < 0xf0:
			size = 3
		case b < 0xf5:
			size = 4
			i++
		default:
			return units
		}
		if pos+size > len(data) {
			return units
		}
		for _, c := range data[pos+1 : pos+size] {
			if c&0xc0 != 0x80 {
				return units
			}
		}
		pos += size
	}
	return pos - off
}
