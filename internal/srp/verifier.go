package srp

import (
	"crypto/sha1"
	"math/big"
)

// ComputeVerifier reproduces the standard client-side registration formula
// (spec §8): x = SHA1(s ‖ SHA1(upper(user) ‖ ":" ‖ upper(pass))), v = g^x
// mod N. The server never calls this in production — verifiers are
// produced once at account-creation time, out of this server's scope — but
// test fixtures and any external provisioning tool need it to build valid
// (salt, verifier) pairs.
func ComputeVerifier(username, password string, salt [32]byte) [32]byte {
	inner := sha1.Sum([]byte(upper(username) + ":" + upper(password)))
	h := sha1.New()
	h.Write(salt[:])
	h.Write(inner[:])
	x := leToBig(h.Sum(nil))

	v := new(big.Int).Exp(genG, x, primeN)

	var out [32]byte
	copy(out[:], bigToLE(v, 32))
	return out
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
