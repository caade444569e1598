package naming

import "encoding/binary"

// PAE implements pre-authentication encoding: a length-prefixed framing of
// an arbitrary number of byte strings that is injective in its inputs, so
// two different argument lists never encode to the same bytes. This is
// what lets a single-component name hash and a (uid, chunkIndex) blob
// location hash share one HMAC construction without risk of collision
// between "one weird component" and "two short components concatenated".
//
// Encoding: an 8-byte little-endian count of pieces, followed by each
// piece as an 8-byte little-endian length and its raw bytes.
func PAE(pieces ...[]byte) []byte {
	total := 8
	for _, p := range pieces {
		total += 8 + len(p)
	}

	out := make([]byte, 0, total)
	out = appendUint64(out, uint64(len(pieces)))
	for _, p := range pieces {
		out = appendUint64(out, uint64(len(p)))
		out = append(out, p...)
	}
	return out
}

func appendUint64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}
