package plist

import (
	"math"
	"strconv"
	"unicode/utf16"
)

const (
	lineWidth = 80
	tabWidth  = 8
)

// EncodeText writes v in the given dialect; DialectAuto writes OpenStep.
// The output is ASCII, tab-indented and ends with a newline. Sets are
// written as arrays and unique identifiers as {"CF$UID" = n;} dictionaries.
// A null anywhere in the tree fails with ErrNullNotRepresentable, and a
// date outside years 0000 to 9999 with ErrUnsupportedFeature.
func EncodeText(v *Value, dialect Dialect) ([]byte, error) {
	if dialect == DialectAuto {
		dialect = DialectOpenStep
	}
	w := &textWriter{typed: dialect == DialectGNUStep}
	if err := w.writeValue(v, 0); err != nil {
		return nil, err
	}
	w.write("\n")
	return w.buf, nil
}

type textWriter struct {
	buf   []byte
	col   int
	typed bool
}

func (w *textWriter) write(s string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			w.col = 0
		case '\t':
			w.col += tabWidth
		default:
			w.col++
		}
	}
	w.buf = append(w.buf, s...)
}

func (w *textWriter) newline(indent int) {
	w.write("\n")
	for i := 0; i < indent; i++ {
		w.write("\t")
	}
}

// fits reports whether s and one trailing separator fit on the current line.
func (w *textWriter) fits(s string) bool {
	return w.col+len(s) < lineWidth
}

func (w *textWriter) writeValue(v *Value, indent int) error {
	switch v.Kind() {
	case KindNull:
		return newError(ErrNullNotRepresentable, -1, "null value in text output")
	case KindDict:
		return w.writeDict(v.dictVal, indent)
	case KindArray, KindSet:
		return w.writeList(v, indent)
	case KindData:
		w.writeData(v.bytesVal, indent)
		return nil
	default:
		s, err := w.scalar(v)
		if err != nil {
			return err
		}
		w.write(s)
		return nil
	}
}

// scalar renders a leaf value.
func (w *textWriter) scalar(v *Value) (string, error) {
	switch v.kind {
	case KindBool:
		switch {
		case w.typed && v.boolVal:
			return "<*BY>", nil
		case w.typed:
			return "<*BN>", nil
		case v.boolVal:
			return "YES", nil
		default:
			return "NO", nil
		}
	case KindInteger:
		s := strconv.FormatInt(v.intVal, 10)
		if w.typed {
			return "<*I" + s + ">", nil
		}
		return s, nil
	case KindReal:
		s := formatReal(v.realVal)
		if w.typed {
			return "<*R" + s + ">", nil
		}
		return s, nil
	case KindDate:
		if err := checkTextDate(v.realVal); err != nil {
			return "", err
		}
		if w.typed {
			return "<*D" + formatDate(gnuStepDateLayout, v.realVal) + ">", nil
		}
		return quote(formatDate(openStepDateLayout, v.realVal)), nil
	case KindUID:
		return w.uid(v), nil
	default:
		return quote(v.strVal), nil
	}
}

func (w *textWriter) uid(v *Value) string {
	n, err := v.AsUIDUint64()
	if err != nil || n > math.MaxInt64 {
		return `{"CF$UID" = ` + hexData(uidMagnitude(v.bytesVal)) + `;}`
	}
	s, _ := w.scalar(Int(int64(n)))
	return `{"CF$UID" = ` + s + `;}`
}

func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "+infinity"
	case math.IsInf(f, -1):
		return "-infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

func (w *textWriter) writeDict(entries []DictEntry, indent int) error {
	if len(entries) == 0 {
		w.write("{}")
		return nil
	}
	w.write("{")
	for _, e := range entries {
		w.newline(indent + 1)
		w.write(quote(e.Key))
		w.write(" =")
		if err := w.writeNested(e.Value, indent+1, true); err != nil {
			return err
		}
		w.write(";")
	}
	w.newline(indent)
	w.write("}")
	return nil
}

// writeNested writes a dictionary value (afterKey, following "key =") or
// an array element already placed on its own line. Arrays and data stay
// on the current line when they fit, move to their own indented line when
// they fit there, and are broken across lines otherwise.
func (w *textWriter) writeNested(v *Value, indent int, afterKey bool) error {
	if k := v.Kind(); k == KindArray || k == KindSet || k == KindData {
		s, ok, err := w.compact(v)
		if err != nil {
			return err
		}
		if ok {
			switch {
			case !afterKey && w.fits(s):
				w.write(s)
				return nil
			case afterKey && w.fits(" "+s):
				w.write(" " + s)
				return nil
			case afterKey && (indent+1)*tabWidth+len(s) < lineWidth:
				w.newline(indent + 1)
				w.write(s)
				return nil
			}
		}
	}
	if afterKey {
		w.write(" ")
	}
	return w.writeValue(v, indent)
}

// compact renders arrays and data on one line. It reports false for values
// holding a dictionary, which always spans lines.
func (w *textWriter) compact(v *Value) (string, bool, error) {
	switch v.Kind() {
	case KindNull:
		return "", false, newError(ErrNullNotRepresentable, -1, "null value in text output")
	case KindDict:
		return "", false, nil
	case KindData:
		return hexData(v.bytesVal), true, nil
	case KindArray, KindSet:
		members, err := listMembers(v)
		if err != nil {
			return "", false, err
		}
		s := "("
		for i, e := range members {
			if i > 0 {
				s += ", "
			}
			es, ok, err := w.compact(e)
			if err != nil || !ok {
				return "", false, err
			}
			s += es
		}
		return s + ")", true, nil
	default:
		s, err := w.scalar(v)
		if err != nil {
			return "", false, err
		}
		return s, true, nil
	}
}

// listMembers returns the elements of an array, or of a set in its written
// order.
func listMembers(v *Value) ([]*Value, error) {
	if v.kind == KindSet && v.sorted {
		return sortValues(v.listVal)
	}
	return v.listVal, nil
}

func (w *textWriter) writeList(v *Value, indent int) error {
	members, err := listMembers(v)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		w.write("()")
		return nil
	}
	w.write("(")
	for i, e := range members {
		w.newline(indent + 1)
		if err := w.writeNested(e, indent+1, false); err != nil {
			return err
		}
		if i < len(members)-1 {
			w.write(",")
		}
	}
	w.newline(indent)
	w.write(")")
	return nil
}

// writeData writes hex byte pairs separated by spaces, wrapping before the
// line width with continuation lines one level deeper. Room is kept for the
// closing '>' and a following separator.
func (w *textWriter) writeData(b []byte, indent int) {
	w.write("<")
	for i, c := range b {
		if i > 0 {
			if w.col+len(" xx>;") > lineWidth {
				w.newline(indent + 1)
			} else {
				w.write(" ")
			}
		}
		w.write(string([]byte{hexDigits[c>>4], hexDigits[c&0xf]}))
	}
	w.write(">")
}

func hexData(b []byte) string {
	out := make([]byte, 0, 2+3*len(b))
	out = append(out, '<')
	for i, c := range b {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, hexDigits[c>>4], hexDigits[c&0xf])
	}
	return string(append(out, '>'))
}

const hexDigits = "0123456789abcdef"

// quote renders s as a quoted string. Characters outside printable ASCII
// are written as \Uxxxx escapes of their UTF-16 code units.
func quote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for _, u := range utf16.Encode([]rune(s)) {
		switch u {
		case '\\':
			out = append(out, `\\`...)
		case '"':
			out = append(out, `\"`...)
		case '\b':
			out = append(out, `\b`...)
		case '\n':
			out = append(out, `\n`...)
		case '\r':
			out = append(out, `\r`...)
		case '\t':
			out = append(out, `\t`...)
		default:
			if u < 0x20 || u > 0x7e {
				out = append(out, '\\', 'U',
					hexDigits[u>>12], hexDigits[u>>8&0xf], hexDigits[u>>4&0xf], hexDigits[u&0xf])
			} else {
				out = append(out, byte(u))
			}
		}
	}
	return string(append(out, '"'))
}
