package bridge

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/plist/plist"
)

var when = time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)

func sample() *plist.Value {
	return plist.Dict(
		plist.Entry("name", plist.Str("widget")),
		plist.Entry("count", plist.Int(3)),
		plist.Entry("ratio", plist.Real(0.25)),
		plist.Entry("enabled", plist.Bool(true)),
		plist.Entry("created", plist.DateFromTime(when)),
		plist.Entry("blob", plist.Data([]byte{1, 2, 3})),
		plist.Entry("tags", plist.Array(plist.Str("a"), plist.Str("b"))),
		plist.Entry("owner", plist.Dict(plist.Entry("id", plist.UIDFromUint64(9)))),
	)
}

func TestToNative(t *testing.T) {
	t.Parallel()

	x, err := ToNative(sample())
	require.NoError(t, err)

	m, ok := x.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "widget", m["name"])
	assert.Equal(t, int64(3), m["count"])
	assert.Equal(t, 0.25, m["ratio"])
	assert.Equal(t, true, m["enabled"])
	assert.True(t, when.Equal(m["created"].(time.Time)))
	assert.Equal(t, []byte{1, 2, 3}, m["blob"])
	assert.Equal(t, []interface{}{"a", "b"}, m["tags"])
	assert.Equal(t, map[string]interface{}{"id": uint64(9)}, m["owner"])

	x, err = ToNative(plist.UID(make([]byte, 10)))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), x)

	x, err = ToNative(plist.UID([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, x)
}

type owner struct {
	ID int `plist:"id"`
}

type widget struct {
	Name     string    `plist:"name"`
	Count    int       `plist:"count"`
	Ratio    float64   `plist:"ratio"`
	Enabled  bool      `plist:"enabled"`
	Created  time.Time `plist:"created"`
	Blob     []byte    `plist:"blob"`
	Tags     []string  `plist:"tags"`
	Owner    owner     `plist:"owner"`
	Internal string    `plist:"-"`
	Note     string    `plist:"note,omitempty"`
}

func TestFromNative_Struct(t *testing.T) {
	t.Parallel()

	w := widget{
		Name:     "widget",
		Count:    3,
		Ratio:    0.25,
		Enabled:  true,
		Created:  when,
		Blob:     []byte{1, 2, 3},
		Tags:     []string{"a", "b"},
		Owner:    owner{ID: 9},
		Internal: "hidden",
	}

	v, err := FromNative(&w)
	require.NoError(t, err)

	want := plist.Dict(
		plist.Entry("name", plist.Str("widget")),
		plist.Entry("count", plist.Int(3)),
		plist.Entry("ratio", plist.Real(0.25)),
		plist.Entry("enabled", plist.Bool(true)),
		plist.Entry("created", plist.DateFromTime(when)),
		plist.Entry("blob", plist.Data([]byte{1, 2, 3})),
		plist.Entry("tags", plist.Array(plist.Str("a"), plist.Str("b"))),
		plist.Entry("owner", plist.Dict(plist.Entry("id", plist.Int(9)))),
	)
	assert.True(t, plist.Equal(want, v), "got %s", v)
	assert.Equal(t, []string{"name", "count", "ratio", "enabled", "created", "blob", "tags", "owner"}, v.Keys())
}

func TestFromNative_Maps(t *testing.T) {
	t.Parallel()

	v, err := FromNative(map[string]interface{}{"b": uint8(2), "a": nil, "c": []int{1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v.Keys())
	assert.True(t, v.Get("a").IsNull())

	_, err = FromNative(map[int]string{1: "x"})
	assert.Error(t, err)

	_, err = FromNative(uint64(math.MaxUint64))
	assert.Error(t, err)

	_, err = FromNative(make(chan int))
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	var w widget
	require.NoError(t, Decode(sample(), &w))

	assert.Equal(t, "widget", w.Name)
	assert.Equal(t, 3, w.Count)
	assert.Equal(t, 0.25, w.Ratio)
	assert.True(t, w.Enabled)
	assert.True(t, when.Equal(w.Created))
	assert.Equal(t, []byte{1, 2, 3}, w.Blob)
	assert.Equal(t, []string{"a", "b"}, w.Tags)
	assert.Equal(t, 9, w.Owner.ID)
}

func TestDecode_StringDates(t *testing.T) {
	t.Parallel()

	doc, err := plist.DecodeText([]byte(`{created = "2021-03-04T05:06:07+00:00";}`))
	require.NoError(t, err)

	var out struct {
		Created time.Time `plist:"created"`
	}
	require.NoError(t, Decode(doc, &out))
	assert.True(t, when.Equal(out.Created))
}

func TestDecodeStrict_UnusedKey(t *testing.T) {
	t.Parallel()

	var out struct {
		Name string `plist:"name"`
	}
	v := plist.Dict(plist.Entry("name", plist.Str("x")), plist.Entry("extra", plist.Int(1)))

	require.NoError(t, Decode(v, &out))
	assert.Equal(t, "x", out.Name)
	assert.Error(t, DecodeStrict(v, &out))
}
