package plist

import (
	"bytes"
	"fmt"
	"strings"
)

// Format identifies a property list encoding.
type Format uint8

const (
	BinaryFormat Format = iota
	OpenStepFormat
	GNUStepFormat
	// XMLFormat is recognised by DetectFormat but neither read nor written
	// by this package.
	XMLFormat
)

var formatNames = map[Format]string{
	BinaryFormat:   "binary",
	OpenStepFormat: "openstep",
	GNUStepFormat:  "gnustep",
	XMLFormat:      "xml",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", f)
}

// ParseFormat maps a format name, as printed by Format.String, back to a
// Format. "text" and "ascii" are accepted for OpenStepFormat.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binary", "bplist":
		return BinaryFormat, nil
	case "openstep", "text", "ascii":
		return OpenStepFormat, nil
	case "gnustep":
		return GNUStepFormat, nil
	case "xml":
		return XMLFormat, nil
	}
	return 0, fmt.Errorf("plist: unknown format %q", name)
}

// DetectFormat guesses the encoding of data without fully decoding it.
// Text documents are reported as GNUStepFormat when they contain the
// opening of a typed literal.
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, []byte(binaryMagic)) {
		return BinaryFormat
	}
	src, err := decodeChars(data)
	if err != nil {
		return OpenStepFormat
	}
	text := strings.TrimLeft(string(src), " \t\r\n")
	for _, prefix := range []string{"<?xml", "<!DOCTYPE plist", "<plist"} {
		if strings.HasPrefix(text, prefix) {
			return XMLFormat
		}
	}
	if strings.Contains(text, "<*") {
		return GNUStepFormat
	}
	return OpenStepFormat
}

// Decode reads a document in any supported encoding and reports which one
// it was.
func Decode(data []byte) (*Value, Format, error) {
	switch f := DetectFormat(data); f {
	case BinaryFormat:
		v, err := DecodeBinary(data)
		return v, f, err
	case XMLFormat:
		return nil, f, newError(ErrUnsupportedFeature, 0, "xml documents")
	default:
		v, dialect, err := DecodeTextWithOptions(data, TextOptions{})
		if dialect == DialectGNUStep {
			return v, GNUStepFormat, err
		}
		return v, OpenStepFormat, err
	}
}

// Encode writes v in format f.
func Encode(v *Value, f Format) ([]byte, error) {
	switch f {
	case BinaryFormat:
		return EncodeBinary(v)
	case OpenStepFormat:
		return EncodeText(v, DialectOpenStep)
	case GNUStepFormat:
		return EncodeText(v, DialectGNUStep)
	default:
		return nil, newError(ErrUnsupportedFeature, -1, "writing %s documents", f)
	}
}
