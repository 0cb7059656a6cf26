package srp

import "math/big"

// Every SRP byte array on the wire (N, g, A, B, salt, verifier, and the
// hash digests used as exponents) travels little-endian; math/big's
// natural form is big-endian. reverse/leToBig/bigToLE perform that boundary
// conversion in exactly one place so it can't be gotten wrong twice.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

func leToBig(b []byte) *big.Int {
	return new(big.Int).SetBytes(reverse(b))
}

// bigToLE encodes x as a little-endian byte array of exactly size bytes,
// left-padding (in big-endian terms) with zeros as needed.
func bigToLE(x *big.Int, size int) []byte {
	be := x.Bytes()
	if len(be) > size {
		be = be[len(be)-size:]
	}
	padded := make([]byte, size)
	copy(padded[size-len(be):], be)
	return reverse(padded)
}
