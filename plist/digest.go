package plist

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math"
	"slices"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a content hash of v that is equal for any two values for
// which Equal holds. Dictionary and set digests do not depend on order.
func Digest(v *Value) [32]byte {
	return newDigester().sum(v)
}

// DigestHex returns Digest(v) as lowercase hex.
func DigestHex(v *Value) string {
	d := Digest(v)
	return hex.EncodeToString(d[:])
}

// digester memoizes subtree digests by node so a tree is hashed once.
type digester struct {
	memo map[*Value][32]byte
}

func newDigester() *digester {
	return &digester{memo: make(map[*Value][32]byte)}
}

func (d *digester) sum(v *Value) [32]byte {
	if v == nil {
		v = Null()
	} else if s, ok := d.memo[v]; ok {
		return s
	}

	h, _ := blake2b.New256(nil)
	h.Write([]byte{byte(v.kind)})

	var scratch [8]byte
	writeUint := func(n uint64) {
		binary.BigEndian.PutUint64(scratch[:], n)
		h.Write(scratch[:])
	}

	switch v.kind {
	case KindBool:
		if v.boolVal {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case KindInteger:
		writeUint(uint64(v.intVal))
	case KindReal, KindDate:
		if math.IsNaN(v.realVal) {
			writeUint(0x7ff8000000000001)
		} else {
			writeUint(math.Float64bits(v.realVal))
		}
	case KindString:
		writeUint(uint64(len(v.strVal)))
		h.Write([]byte(v.strVal))
	case KindData:
		writeUint(uint64(len(v.bytesVal)))
		h.Write(v.bytesVal)
	case KindUID:
		h.Write(uidMagnitude(v.bytesVal))
	case KindArray:
		writeUint(uint64(len(v.listVal)))
		for _, e := range v.listVal {
			s := d.sum(e)
			h.Write(s[:])
		}
	case KindSet:
		sums := make([][32]byte, len(v.listVal))
		for i, e := range v.listVal {
			sums[i] = d.sum(e)
		}
		writeSorted(h.Write, sums)
	case KindDict:
		sums := make([][32]byte, len(v.dictVal))
		for i, e := range v.dictVal {
			k, val := d.sum(Str(e.Key)), d.sum(e.Value)
			sums[i] = blake2b.Sum256(append(k[:], val[:]...))
		}
		writeSorted(h.Write, sums)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	d.memo[v] = out
	return out
}

func writeSorted(write func([]byte) (int, error), sums [][32]byte) {
	slices.SortFunc(sums, func(a, b [32]byte) int { return bytes.Compare(a[:], b[:]) })
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(sums)))
	write(n[:])
	for _, s := range sums {
		write(s[:])
	}
}
