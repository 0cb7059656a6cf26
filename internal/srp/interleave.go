package srp

import "crypto/sha1"

// interleavedSessionKey implements the SRP6 session-key construction used
// by this protocol variant: split the shared secret S into even/odd byte
// streams, hash each with SHA-1, and interleave the two 20-byte digests
// into a 40-byte session key K (spec §4.3 step 5).
//
// S is passed in its fixed-width 32-byte little-endian wire form (as
// produced by bigToLE); leading zero bytes are not stripped. If the input
// has an odd number of bytes, its first byte is dropped so both streams
// have the same length.
func interleavedSessionKey(s []byte) [40]byte {
	if len(s)%2 == 1 {
		s = s[1:]
	}

	half := len(s) / 2
	even := make([]byte, half)
	odd := make([]byte, half)
	for i := 0; i < half; i++ {
		even[i] = s[2*i]
		odd[i] = s[2*i+1]
	}

	g := sha1.Sum(even)
	h := sha1.Sum(odd)

	var k [40]byte
	for i := 0; i < sha1.Size; i++ {
		k[2*i] = g[i]
		k[2*i+1] = h[i]
	}
	return k
}
