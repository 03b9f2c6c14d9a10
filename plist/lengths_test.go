package plist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    uint64
		want int
	}{
		{0, 1},
		{0xff, 1},
		{0x100, 2},
		{0xffff, 2},
		{0x10000, 4},
		{0xffffffff, 4},
		{0x100000000, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uintWidth(tt.n), "n=%#x", tt.n)
	}
	assert.Equal(t, byte(3), widthInfo(8))
}

func TestReadUint_Bounds(t *testing.T) {
	t.Parallel()

	n, err := readUint([]byte{0x01, 0x02, 0x03}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0203), n)

	_, err = readUint([]byte{0x01, 0x02}, 1, 2)
	assert.ErrorIs(t, err, ErrCorruptData)

	_, err = readUint([]byte{0x01}, -1, 1)
	assert.ErrorIs(t, err, ErrCorruptData)
}

func TestHeaderLengthRoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 14, 15, 255, 256, 70000} {
		buf := appendHeader(nil, tagData, n)
		// Pad so the length check against the buffer size passes.
		buf = append(buf, make([]byte, n)...)

		got, start, err := readLength(buf, 0, buf[0]&0xf)
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, n, got)
		assert.Equal(t, len(buf)-n, start)
		assert.Equal(t, tagData, buf[0]>>4)
	}
}

func TestAppendInteger(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0x10, 0x7f}, appendInteger(nil, 127))
	assert.Equal(t, []byte{0x10, 0xff}, appendInteger(nil, 255))
	assert.Equal(t, []byte{0x11, 0x01, 0x00}, appendInteger(nil, 256))
	assert.Equal(t, []byte{0x12, 0x00, 0x01, 0x00, 0x00}, appendInteger(nil, 65536))
	assert.Equal(t,
		[]byte{0x13, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		appendInteger(nil, -1))
}

func TestUTF8Span(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		data  []byte
		units int
		want  int
	}{
		{"ascii", []byte("abc"), 3, 3},
		{"two byte", []byte("é!"), 2, 3},
		{"three byte", []byte("€"), 1, 3},
		{"four byte counts twice", []byte("\U0001F600x"), 3, 5},
		{"bad continuation", []byte{0xe2, 0x28, 0xa1}, 1, 1},
		{"stray continuation", []byte{0x80, 'a'}, 2, 2},
		{"truncated", []byte{0xe2, 0x82}, 1, 1},
		{"short input", []byte("ab"), 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, utf8Span(tt.data, 0, tt.units))
		})
	}
}
