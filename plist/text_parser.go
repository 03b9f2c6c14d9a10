package plist

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Dialect selects the literal syntax of the text encoding.
type Dialect uint8

const (
	// DialectAuto lets the reader report whatever the document uses and
	// makes writers fall back to DialectOpenStep.
	DialectAuto Dialect = iota
	// DialectOpenStep is the strict dialect: every scalar is a string.
	DialectOpenStep
	// DialectGNUStep adds <*B>, <*I>, <*R> and <*D> typed literals.
	DialectGNUStep
)

func (d Dialect) String() string {
	switch d {
	case DialectOpenStep:
		return "openstep"
	case DialectGNUStep:
		return "gnustep"
	default:
		return "auto"
	}
}

// DefaultMaxDepth bounds container nesting in text documents.
const DefaultMaxDepth = 512

// TextOptions configures the text reader.
type TextOptions struct {
	// Dialect is reported for documents that contain no typed literal.
	// Both dialects are always accepted.
	Dialect Dialect

	// MaxDepth limits container nesting; zero means DefaultMaxDepth.
	MaxDepth int
}

// DecodeText decodes a text document in either dialect.
func DecodeText(data []byte) (*Value, error) {
	v, _, err := DecodeTextWithOptions(data, TextOptions{})
	return v, err
}

// DecodeTextWithOptions decodes a text document and reports the dialect it
// was written in: DialectGNUStep when a typed literal occurs, otherwise the
// hint from opts (DialectOpenStep when the hint is DialectAuto).
//
// Error offsets are character positions in the decoded text.
func DecodeTextWithOptions(data []byte, opts TextOptions) (*Value, Dialect, error) {
	src, err := decodeChars(data)
	if err != nil {
		return nil, DialectAuto, err
	}
	p := &textParser{src: src, maxDepth: opts.MaxDepth}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}

	v, err := p.parseDocument()
	if err != nil {
		return nil, DialectAuto, err
	}

	dialect := opts.Dialect
	switch {
	case p.typed:
		dialect = DialectGNUStep
	case dialect == DialectAuto:
		dialect = DialectOpenStep
	}
	return v, dialect, nil
}

// ParseReal parses the text of a real literal. Besides decimal and
// exponent notation it accepts nan, inf, infinity and their signed forms
// in any letter case.
func ParseReal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &Error{Kind: ErrUnexpectedToken, Offset: -1, Expected: "real", Found: strconv.Quote(s)}
	}
	return f, nil
}

type textParser struct {
	src      []rune
	pos      int
	depth    int
	maxDepth int
	typed    bool // a typed literal was read
}

const eof = -1

func (p *textParser) peek() rune {
	if p.pos >= len(p.src) {
		return eof
	}
	return p.src[p.pos]
}

func (p *textParser) peekAt(i int) rune {
	if i >= len(p.src) {
		return eof
	}
	return p.src[i]
}

func describe(r rune) string {
	if r == eof {
		return "end of input"
	}
	return strconv.QuoteRune(r)
}

func (p *textParser) unexpected(expected string) *Error {
	return &Error{Kind: ErrUnexpectedToken, Offset: p.pos, Expected: expected, Found: describe(p.peek())}
}

func (p *textParser) expect(r rune) error {
	if err := p.skipSpace(); err != nil {
		return err
	}
	if p.peek() != r {
		return p.unexpected(strconv.QuoteRune(r))
	}
	p.pos++
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// skipSpace skips whitespace and comments.
func (p *textParser) skipSpace() error {
	for {
		switch r := p.peek(); {
		case isSpace(r):
			p.pos++
		case r == '/' && p.peekAt(p.pos+1) == '/':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case r == '/' && p.peekAt(p.pos+1) == '*':
			start := p.pos
			p.pos += 2
			for {
				if p.pos+1 >= len(p.src) {
					return newError(ErrUnterminatedLiteral, start, "comment")
				}
				if p.src[p.pos] == '*' && p.src[p.pos+1] == '/' {
					p.pos += 2
					break
				}
				p.pos++
			}
		default:
			return nil
		}
	}
}

// parseDocument parses the root object. A document that starts with a key
// followed by '=' is read as the entries of a dictionary without braces.
func (p *textParser) parseDocument() (*Value, error) {
	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if p.peek() == eof {
		return nil, p.unexpected("value")
	}

	var root *Value
	if p.startsBareDict() {
		entries, err := p.parseEntries(eof)
		if err != nil {
			return nil, err
		}
		root = Dict(entries...)
	} else {
		v, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		root = v
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if p.peek() != eof {
		return nil, p.unexpected("end of input")
	}
	return root, nil
}

// startsBareDict looks ahead, without consuming, for "key =".
func (p *textParser) startsBareDict() bool {
	if r := p.peek(); r == '{' || r == '(' || r == '<' {
		return false
	}
	saved := p.pos
	defer func() { p.pos = saved }()
	if _, err := p.parseKey(); err != nil {
		return false
	}
	if err := p.skipSpace(); err != nil {
		return false
	}
	return p.peek() == '='
}

func (p *textParser) parseObject() (*Value, error) {
	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	switch p.peek() {
	case '{':
		return p.parseDict()
	case '(':
		return p.parseArray()
	case '<':
		return p.parseData()
	case '"':
		return p.parseQuotedValue()
	default:
		return p.parseBare()
	}
}

func (p *textParser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return newError(ErrUnsupportedFeature, p.pos, "nesting deeper than %d", p.maxDepth)
	}
	return nil
}

func (p *textParser) parseDict() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	p.pos++ // '{'
	entries, err := p.parseEntries('}')
	if err != nil {
		return nil, err
	}
	p.pos++
	return Dict(entries...), nil
}

// parseEntries reads "key = value;" pairs until close, which it leaves
// unconsumed.
func (p *textParser) parseEntries(close rune) ([]DictEntry, error) {
	var entries []DictEntry
	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.peek() == close {
			return entries, nil
		}
		if p.peek() == eof {
			return nil, p.unexpected(strconv.QuoteRune(close))
		}

		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		val, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		if err := p.expect(';'); err != nil {
			return nil, err
		}
		entries = append(entries, Entry(key, val))
	}
}

func (p *textParser) parseKey() (string, error) {
	if err := p.skipSpace(); err != nil {
		return "", err
	}
	if p.peek() == '"' {
		return p.parseQuoted()
	}
	tok := p.readBare()
	if tok == "" {
		return "", p.unexpected("key")
	}
	return tok, nil
}

func (p *textParser) parseArray() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	p.pos++ // '('
	var values []*Value
	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		// Also accepts a trailing comma before ')'.
		if p.peek() == ')' {
			p.pos++
			return Array(values...), nil
		}

		v, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return Array(values...), nil
		default:
			return nil, p.unexpected("',' or ')'")
		}
	}
}

func (p *textParser) parseData() (*Value, error) {
	start := p.pos
	p.pos++ // '<'
	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if p.peek() == '*' {
		return p.parseTyped(start)
	}

	var out []byte
	var hi rune = -1
	for {
		r := p.peek()
		switch {
		case r == eof:
			return nil, newError(ErrUnterminatedLiteral, start, "data")
		case r == '>':
			if hi >= 0 {
				return nil, p.unexpected("hex digit")
			}
			p.pos++
			return Data(out), nil
		case isSpace(r):
			p.pos++
			continue
		}
		n := hexValue(r)
		if n < 0 {
			return nil, p.unexpected("hex digit")
		}
		if hi < 0 {
			hi = n
		} else {
			out = append(out, byte(hi<<4|n))
			hi = -1
		}
		p.pos++
	}
}

// parseTyped reads a <*X...> literal whose '<' is at start.
func (p *textParser) parseTyped(start int) (*Value, error) {
	p.pos++ // '*'
	typ := p.peek()
	if typ == eof {
		return nil, newError(ErrUnterminatedLiteral, start, "typed literal")
	}
	p.pos++
	bodyAt := p.pos
	for p.peek() != '>' {
		if p.peek() == eof {
			return nil, newError(ErrUnterminatedLiteral, start, "typed literal")
		}
		p.pos++
	}
	body := strings.TrimSpace(string(p.src[bodyAt:p.pos]))
	p.pos++ // '>'
	p.typed = true

	bad := func(expected string) *Error {
		return &Error{Kind: ErrUnexpectedToken, Offset: bodyAt, Expected: expected, Found: strconv.Quote(body)}
	}

	switch typ {
	case 'B':
		switch body {
		case "Y":
			return Bool(true), nil
		case "N":
			return Bool(false), nil
		}
		return nil, bad("Y or N")

	case 'I':
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return nil, newError(ErrUnsupportedFeature, bodyAt, "integer %s outside 64-bit range", body)
			}
			return nil, bad("integer")
		}
		return Int(n), nil

	case 'R':
		f, err := ParseReal(body)
		if err != nil {
			return nil, bad("real")
		}
		return Real(f), nil

	case 'D':
		if v, ok := parseDate(gnuStepDateLayout, body); ok {
			return v, nil
		}
		if v, ok := parseDate(openStepDateLayout, body); ok {
			return v, nil
		}
		return nil, bad("date")

	default:
		return nil, &Error{Kind: ErrUnexpectedToken, Offset: bodyAt - 1, Expected: "B, D, I or R", Found: describe(typ)}
	}
}

func hexValue(r rune) rune {
	switch {
	case r >= '0' && r <= '9':
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10
	default:
		return -1
	}
}

// parseQuotedValue reads a quoted string in value position, where a
// 20-character string shaped like 2001-01-01T00:00:00Z is read as a date.
func (p *textParser) parseQuotedValue() (*Value, error) {
	s, err := p.parseQuoted()
	if err != nil {
		return nil, err
	}
	if len(s) == 20 && s[4] == '-' {
		if v, ok := parseDate(openStepDateLayout, s); ok {
			return v, nil
		}
	}
	return Str(s), nil
}

// parseQuoted reads a quoted string with escapes. Text is collected as
// UTF-16 code units so escaped surrogate pairs combine.
func (p *textParser) parseQuoted() (string, error) {
	start := p.pos
	p.pos++ // '"'
	var units []uint16
	for {
		r := p.peek()
		switch r {
		case eof:
			return "", newError(ErrUnterminatedLiteral, start, "string")
		case '"':
			p.pos++
			return string(utf16.Decode(units)), nil
		case '\\':
			u, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			units = append(units, u)
		default:
			p.pos++
			units = utf16.AppendRune(units, r)
		}
	}
}

var namedEscapes = map[rune]uint16{
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'b':  '\b',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

// parseEscape reads the escape starting at the backslash under the cursor
// and returns the code unit it denotes.
func (p *textParser) parseEscape() (uint16, error) {
	at := p.pos
	p.pos++
	r := p.peek()
	if u, ok := namedEscapes[r]; ok {
		p.pos++
		return u, nil
	}

	switch {
	case r >= '0' && r <= '7':
		n, ok := p.readDigits(3, 8)
		if !ok {
			return 0, newError(ErrInvalidEscapeSequence, at, "octal escape needs 3 digits")
		}
		return uint16(n), nil
	case r == 'u' || r == 'U':
		p.pos++
		n, ok := p.readDigits(4, 16)
		if !ok {
			return 0, newError(ErrInvalidEscapeSequence, at, "unicode escape needs 4 hex digits")
		}
		return uint16(n), nil
	default:
		return 0, newError(ErrInvalidEscapeSequence, at, "\\%s", describe(r))
	}
}

// readDigits consumes exactly n digits in base.
func (p *textParser) readDigits(n int, base rune) (int, bool) {
	v := 0
	for i := 0; i < n; i++ {
		d := hexValue(p.peek())
		if d < 0 || d >= base {
			return 0, false
		}
		v = v*int(base) + int(d)
		p.pos++
	}
	return v, true
}

func isBareDelimiter(r rune) bool {
	switch r {
	case eof, ',', ';', '=', ')', '}':
		return true
	}
	return isSpace(r)
}

func (p *textParser) readBare() string {
	start := p.pos
	for !isBareDelimiter(p.peek()) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

// parseBare reads an unquoted token. Tokens shaped like the start of a
// GNUstep date (a digit, then '-' as the fifth character) are tried as
// "2006-01-02 15:04:05 -0700"; the date's embedded spaces may follow the
// token. Anything else, including YES and numbers, stays a string.
func (p *textParser) parseBare() (*Value, error) {
	start := p.pos
	tok := p.readBare()
	if tok == "" {
		return nil, p.unexpected("value")
	}

	runes := p.src[start:p.pos]
	if len(runes) > 4 && runes[0] >= '0' && runes[0] <= '9' && runes[4] == '-' {
		if v, end, ok := p.bareDate(start); ok {
			p.pos = end
			return v, nil
		}
	}
	return Str(tok), nil
}

func (p *textParser) bareDate(start int) (*Value, int, bool) {
	end := start + len(gnuStepDateLayout)
	if end > len(p.src) || !isBareDelimiter(p.peekAt(end)) {
		return nil, 0, false
	}
	v, ok := parseDate(gnuStepDateLayout, string(p.src[start:end]))
	return v, end, ok
}
