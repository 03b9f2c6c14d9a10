package bridge

import (
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/Neumenon/plist/plist"
)

// TagName is the struct tag read by Decode and FromNative.
const TagName = "plist"

// Decode maps v onto out, which must be a non-nil pointer, typically to a
// struct whose fields carry `plist:"Key"` tags. Dates decode into
// time.Time fields, and strings holding RFC 3339 timestamps do as well.
func Decode(v *plist.Value, out interface{}) error {
	return decode(v, out, false)
}

// DecodeStrict is Decode but fails when a dictionary key has no matching
// field.
func DecodeStrict(v *plist.Value, out interface{}) error {
	return decode(v, out, true)
}

func decode(v *plist.Value, out interface{}, strict bool) error {
	native, err := ToNative(v)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     TagName,
		Result:      out,
		ErrorUnused: strict,
		DecodeHook:  mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return errors.Wrap(err, "bridge: decoder setup")
	}
	return errors.Wrap(dec.Decode(native), "bridge: decode")
}
