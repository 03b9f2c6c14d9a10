package plist

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBinary_ExactLayout(t *testing.T) {
	t.Parallel()

	out, err := EncodeBinary(Bool(true))
	require.NoError(t, err)

	want := []byte("bplist00")
	want = append(want, 0x09)                               // object 0
	want = append(want, 0x08)                               // offset table
	want = append(want, 0, 0, 0, 0, 0, 0, 1, 1)             // sizes
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 1)             // object count
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 0)             // top object
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 9)             // table offset
	assert.Equal(t, want, out)
}

func TestEncodeBinary_Deduplication(t *testing.T) {
	t.Parallel()

	v := Dict(Entry("x", Str("dup")), Entry("y", Str("dup")))
	out, err := EncodeBinary(v)
	require.NoError(t, err)

	assert.Equal(t, 1, bytes.Count(out, []byte("dup")))

	tr, err := ParseTrailer(out)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), tr.NumObjects) // dict, "x", "y", "dup"

	// Both value slots refer to object 3.
	assert.True(t, bytes.Contains(out, []byte{0xd2, 1, 2, 3, 3}))
}

func TestEncodeBinary_DeduplicatesSubtrees(t *testing.T) {
	t.Parallel()

	inner := func() *Value { return Dict(Entry("k", Array(Int(1), Int(2)))) }
	v := Array(inner(), inner(), Str("k"))

	out, err := EncodeBinary(v)
	require.NoError(t, err)
	tr, err := ParseTrailer(out)
	require.NoError(t, err)
	// outer array, dict, "k", inner array, 1, 2
	assert.Equal(t, uint64(6), tr.NumObjects)

	back, err := DecodeBinary(out)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestEncodeBinary_RoundTrip(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 300)
	tests := []struct {
		name string
		v    *Value
	}{
		{"zero", Int(0)},
		{"one byte", Int(200)},
		{"two bytes", Int(65535)},
		{"four bytes", Int(math.MaxUint32)},
		{"eight bytes", Int(math.MaxUint32 + 1)},
		{"negative", Int(-1)},
		{"min int", Int(math.MinInt64)},
		{"max int", Int(math.MaxInt64)},
		{"real", Real(3.25)},
		{"nan", Real(math.NaN())},
		{"plus infinity", Real(math.Inf(1))},
		{"minus infinity", Real(math.Inf(-1))},
		{"date", DateFromTime(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC))},
		{"empty string", Str("")},
		{"long ascii", Str(long)},
		{"unicode", Str("grüße")},
		{"astral", Str("smile \U0001F600")},
		{"data", Data(bytes.Repeat([]byte{0xab}, 40))},
		{"uid", UIDFromUint64(7)},
		{"wide uid", UID(bytes.Repeat([]byte{0xff}, 16))},
		{"empty array", Array()},
		{"empty dict", Dict()},
		{
			"nested",
			Dict(
				Entry("name", Str("demo")),
				Entry("flags", Array(Bool(true), Bool(false), Bool(true))),
				Entry("child", Dict(Entry("name", Str("demo")))),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := EncodeBinary(tt.v)
			require.NoError(t, err)
			back, err := DecodeBinary(out)
			require.NoError(t, err)
			assert.True(t, Equal(tt.v, back), "got %s", back)
		})
	}
}

func TestEncodeBinary_WideReferences(t *testing.T) {
	t.Parallel()

	values := make([]*Value, 300)
	for i := range values {
		values[i] = Int(int64(i) * 1000)
	}
	v := Array(values...)

	out, err := EncodeBinary(v)
	require.NoError(t, err)
	tr, err := ParseTrailer(out)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), tr.ObjectRefSize)
	assert.Equal(t, uint8(2), tr.OffsetSize)

	back, err := DecodeBinary(out)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestEncodeBinary_Unsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    *Value
		opts BinaryOptions
	}{
		{"null root", Null(), DefaultBinaryOptions()},
		{"nil root", nil, DefaultBinaryOptions()},
		{"nested null", Array(Str("a"), Null()), DefaultBinaryOptions()},
		{"set", Dict(Entry("s", Set(Int(1)))), DefaultBinaryOptions()},
		{"version 1.0", Str("a"), BinaryOptions{Version: Version10}},
		{"oversized uid", UID(bytes.Repeat([]byte{1}, 17)), DefaultBinaryOptions()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := EncodeBinaryWithOptions(tt.v, tt.opts)
			assert.ErrorIs(t, err, ErrUnsupportedFeature)
		})
	}
}

func BenchmarkEncodeBinary(b *testing.B) {
	v := benchValue()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := EncodeBinary(v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeBinary(b *testing.B) {
	data, err := EncodeBinary(benchValue())
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeBinary(data); err != nil {
			b.Fatal(err)
		}
	}
}

func benchValue() *Value {
	items := make([]*Value, 100)
	for i := range items {
		items[i] = Dict(
			Entry("id", Int(int64(i))),
			Entry("name", Str("item")),
			Entry("score", Real(float64(i)/3)),
			Entry("tags", Array(Str("a"), Str("b"))),
		)
	}
	return Dict(Entry("items", Array(items...)))
}
