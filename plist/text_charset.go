package plist

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Charset identifies the character encoding of a text document.
type Charset uint8

const (
	CharsetUTF8 Charset = iota
	CharsetUTF16BE
	CharsetUTF16LE
	CharsetUTF32BE
	CharsetUTF32LE
)

var charsetNames = [...]string{
	CharsetUTF8:    "UTF-8",
	CharsetUTF16BE: "UTF-16BE",
	CharsetUTF16LE: "UTF-16LE",
	CharsetUTF32BE: "UTF-32BE",
	CharsetUTF32LE: "UTF-32LE",
}

func (c Charset) String() string {
	if int(c) < len(charsetNames) {
		return charsetNames[c]
	}
	return "unknown"
}

var byteOrderMarks = []struct {
	bom     []byte
	charset Charset
}{
	// UTF-32LE must be tried before UTF-16LE, whose mark is its prefix.
	{[]byte{0x00, 0x00, 0xfe, 0xff}, CharsetUTF32BE},
	{[]byte{0xff, 0xfe, 0x00, 0x00}, CharsetUTF32LE},
	{[]byte{0xef, 0xbb, 0xbf}, CharsetUTF8},
	{[]byte{0xfe, 0xff}, CharsetUTF16BE},
	{[]byte{0xff, 0xfe}, CharsetUTF16LE},
}

// DetectCharset sniffs a byte-order mark at the start of data. It returns
// the charset and the length of the mark; without a mark it reports UTF-8
// and zero.
func DetectCharset(data []byte) (Charset, int) {
	for _, m := range byteOrderMarks {
		if bytes.HasPrefix(data, m.bom) {
			return m.charset, len(m.bom)
		}
	}
	return CharsetUTF8, 0
}

func (c Charset) decoder() *encoding.Decoder {
	switch c {
	case CharsetUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case CharsetUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case CharsetUTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewDecoder()
	case CharsetUTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewDecoder()
	default:
		return unicode.UTF8.NewDecoder()
	}
}

// decodeChars converts a text document to runes, honouring and stripping a
// leading byte-order mark. Invalid sequences become U+FFFD.
func decodeChars(data []byte) ([]rune, error) {
	charset, skip := DetectCharset(data)
	text, err := charset.decoder().Bytes(data[skip:])
	if err != nil {
		return nil, newError(ErrCorruptData, 0, "decoding %s text: %v", charset, err)
	}
	return []rune(string(text)), nil
}
