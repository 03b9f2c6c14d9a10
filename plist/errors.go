package plist

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadMagic signals that a binary document does not start with "bplist" and two version digits
var ErrBadMagic = errors.New("bad magic")

// ErrUnsupportedVersion signals a binary document whose major version is not 0
var ErrUnsupportedVersion = errors.New("unsupported version")

// ErrCorruptTrailer signals a binary trailer whose sizes or offsets do not fit the document
var ErrCorruptTrailer = errors.New("corrupt trailer")

// ErrCorruptData signals a truncated payload or an out-of-range length, offset or reference
var ErrCorruptData = errors.New("corrupt data")

// ErrCyclicReference signals a binary object that contains itself through its descendants
var ErrCyclicReference = errors.New("cyclic reference")

// ErrUnsupportedFeature signals a valid construct this package does not implement
var ErrUnsupportedFeature = errors.New("unsupported feature")

// ErrInvalidEscapeSequence signals a malformed backslash escape in a quoted string
var ErrInvalidEscapeSequence = errors.New("invalid escape sequence")

// ErrUnterminatedLiteral signals a string, data block or comment that runs to the end of input
var ErrUnterminatedLiteral = errors.New("unterminated literal")

// ErrUnexpectedToken signals a grammar violation in a text document
var ErrUnexpectedToken = errors.New("unexpected token")

// ErrNullNotRepresentable signals an attempt to write a null value to a text dialect
var ErrNullNotRepresentable = errors.New("null not representable")

// ErrIncomparableSetElement signals a sorted set whose members have no common order
var ErrIncomparableSetElement = errors.New("incomparable set element")

// Error describes a decode or encode failure.
//
// Offset is a byte offset for binary input and a character position for
// text input; it is -1 when no position applies (most encode failures).
type Error struct {
	Kind     error
	Offset   int
	Expected string
	Found    string
	Msg      string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("plist: ")
	sb.WriteString(e.Kind.Error())
	if e.Expected != "" || e.Found != "" {
		fmt.Fprintf(&sb, ": expected %s, found %s", e.Expected, e.Found)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&sb, " at offset %d", e.Offset)
	}
	return sb.String()
}

// Unwrap returns the error kind so errors.Is matches the Err* sentinels.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, offset int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func corrupt(offset int, format string, args ...interface{}) *Error {
	return newError(ErrCorruptData, offset, format, args...)
}
