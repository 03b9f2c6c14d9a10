// Package plist reads and writes property list documents.
//
// A property list is a typed tree of dictionaries, arrays, strings, numbers,
// dates, data blobs, booleans, sets and unique identifiers. This package
// decodes every supported encoding into the same immutable *Value tree and
// encodes a *Value back to bytes.
//
// # Encodings
//
// Two physical encodings are supported:
//   - Binary ("bplist00"): an object table addressed through an offset
//     table, with value-equal subtrees written once and shared by reference.
//   - Text: a recursive grammar of dictionaries, arrays, data and strings
//     in two dialects. The OpenStep dialect writes every scalar as a string
//     ("YES", "42", "2001-01-01T00:00:00Z"); the GNUstep dialect adds typed
//     literals (<*BY>, <*I42>, <*R1.5>, <*D2001-01-01 00:00:00 +0000>).
//
// # Data Model
//
//	Scalars:    null, bool, integer (int64), real (float64), string, date, data, uid
//	Containers: array, dictionary (ordered, unique string keys), set
//
// Dates are stored as seconds relative to 2001-01-01T00:00:00Z.
//
// # Example
//
//	v := plist.Dict(
//	  plist.Entry("name", plist.Str("Arsenal")),
//	  plist.Entry("founded", plist.Int(1886)),
//	)
//	bin, err := plist.EncodeBinary(v)
//	...
//	back, err := plist.DecodeBinary(bin)
//
// # Errors
//
// Every failure is a *Error whose Kind is one of the Err* sentinels, so
// callers can test with errors.Is(err, plist.ErrCyclicReference). Decoding
// never returns a partial tree.
package plist
