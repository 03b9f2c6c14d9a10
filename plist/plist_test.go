package plist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want Format
	}{
		{"binary", "bplist00...", BinaryFormat},
		{"openstep", "{ a = b; }", OpenStepFormat},
		{"gnustep", "{ a = <*I1>; }", GNUStepFormat},
		{"xml", "  <?xml version=\"1.0\"?>\n<plist/>", XMLFormat},
		{"xml without prolog", "<plist version=\"1.0\"></plist>", XMLFormat},
		{"data root", "<0fab>", OpenStepFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectFormat([]byte(tt.doc)))
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{BinaryFormat, OpenStepFormat, GNUStepFormat, XMLFormat} {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFormat(" Text ")
	require.NoError(t, err)
	assert.Equal(t, OpenStepFormat, got)

	_, err = ParseFormat("json")
	assert.Error(t, err)
}

func TestDecodeEncode_AllFormats(t *testing.T) {
	t.Parallel()

	v := Dict(
		Entry("id", Int(7)),
		Entry("ok", Bool(true)),
		Entry("tags", Array(Str("x"), Str("y"))),
	)

	for _, f := range []Format{BinaryFormat, GNUStepFormat} {
		f := f
		t.Run(f.String(), func(t *testing.T) {
			t.Parallel()
			out, err := Encode(v, f)
			require.NoError(t, err)

			back, got, err := Decode(out)
			require.NoError(t, err)
			assert.Equal(t, f, got)
			assert.True(t, Equal(v, back), "got %s", back)
		})
	}

	out, err := Encode(v, OpenStepFormat)
	require.NoError(t, err)
	back, got, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, OpenStepFormat, got)
	assert.True(t, Equal(Str("YES"), back.Get("ok")))
}

func TestDecodeEncode_XMLUnsupported(t *testing.T) {
	t.Parallel()

	_, f, err := Decode([]byte(`<?xml version="1.0"?><plist/>`))
	assert.Equal(t, XMLFormat, f)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)

	_, err = Encode(Str("a"), XMLFormat)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: ErrUnexpectedToken, Offset: 4, Expected: "';'", Found: "'}'"}
	assert.Equal(t, "plist: unexpected token: expected ';', found '}' at offset 4", err.Error())

	err = newError(ErrUnsupportedFeature, -1, "writing %s", "xml")
	assert.Equal(t, "plist: unsupported feature: writing xml", err.Error())
}
