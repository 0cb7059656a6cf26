// Package srp implements the server half of the fixed-parameter SRP6
// variant spoken by the WoW 1.x-3.x logon protocol: g=7, a 256-bit safe
// prime N, multiplier k=3 (the legacy constant, not the SRP-6a H(N,g)
// derivation), and SHA-1 throughout.
//
// BigNumber modexp here follows the same math/big idiom as
// Tomsons-go-srp (Exp/pad/crypto-rand-backed secrets); the interleaved
// session-key construction and the little-endian wire convention are
// specific to this protocol and have no analog there.
package srp

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/udisondev/la2go/internal/constants"
)

var (
	primeN = mustPrime(constants.SRPPrimeHex)
	genG   = big.NewInt(constants.SRPGenerator)
	multK  = big.NewInt(constants.SRPMultiplier)
	genGBytes = []byte{constants.SRPGenerator}
)

func mustPrime(hex string) *big.Int {
	n, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		panic("srp: invalid prime constant")
	}
	return n
}

// Errors surfaced by ServerContext. Callers map these to the protocol's
// LOGIN_UNKNOWN_ACCOUNT result or a silent close, never to a distinct wire
// error (spec §7).
var (
	// ErrContextConsumed is returned when Verify is called more than once
	// on the same ServerContext (spec §3 single-use invariant).
	ErrContextConsumed = errors.New("srp: context already consumed")
	// ErrWeakEphemeral is returned when the client's A is 0 mod N.
	ErrWeakEphemeral = errors.New("srp: client public ephemeral is zero mod N")
	// ErrProofMismatch is returned when the client's M1 does not match the
	// server-computed M1'.
	ErrProofMismatch = errors.New("srp: client proof does not match")
)

// ServerContext holds the server's half of one SRP6 exchange. It is
// single-use: Verify may be called exactly once, regardless of outcome.
type ServerContext struct {
	identity []byte // SHA1(upper(username))
	salt     [32]byte
	v        *big.Int
	b        *big.Int
	bPub     *big.Int // B
	consumed bool
}

// NewServerContext performs the server-setup half of SRP6 (spec §4.3
// "Server setup"): draws a fresh private ephemeral b, computes the public
// ephemeral B from the account's verifier, and retains everything needed
// to verify a subsequent client proof.
func NewServerContext(username string, salt, verifier [32]byte) (*ServerContext, error) {
	bRaw := make([]byte, 32)
	if _, err := rand.Read(bRaw); err != nil {
		return nil, fmt.Errorf("drawing SRP private ephemeral: %w", err)
	}
	b := new(big.Int).SetBytes(bRaw)
	v := leToBig(verifier[:])

	// B = (k*v + g^b mod N) mod N
	gb := new(big.Int).Exp(genG, b, primeN)
	kv := new(big.Int).Mul(multK, v)
	bPub := new(big.Int).Mod(new(big.Int).Add(kv, gb), primeN)

	identity := sha1.Sum([]byte(strings.ToUpper(username)))

	return &ServerContext{
		identity: identity[:],
		salt:     salt,
		v:        v,
		b:        b,
		bPub:     bPub,
	}, nil
}

// B returns the server's public ephemeral, little-endian on the wire.
func (c *ServerContext) B() [32]byte {
	var out [32]byte
	copy(out[:], bigToLE(c.bPub, 32))
	return out
}

// N returns the fixed safe prime, little-endian on the wire.
func N() [32]byte {
	var out [32]byte
	copy(out[:], bigToLE(primeN, 32))
	return out
}

// Generator returns g encoded the way the challenge reply puts it on the
// wire: a single byte.
func Generator() byte { return constants.SRPGenerator }

// Verify checks the client's proof M1 against clientA, the client's public
// ephemeral (both little-endian wire forms, 32 and 20 bytes respectively).
// On success it returns the 40-byte session key K and the server proof M2
// to send back. The context is consumed by this call whether it succeeds
// or fails; a second call always returns ErrContextConsumed.
func (c *ServerContext) Verify(clientA [32]byte, m1 [20]byte) (k [40]byte, m2 [20]byte, err error) {
	if c.consumed {
		return k, m2, ErrContextConsumed
	}
	c.consumed = true

	aBig := leToBig(clientA[:])
	if new(big.Int).Mod(aBig, primeN).Sign() == 0 {
		return k, m2, ErrWeakEphemeral
	}

	bWire := c.B()
	uDigest := sha1.Sum(append(append([]byte{}, clientA[:]...), bWire[:]...))
	u := leToBig(uDigest[:])

	// S = (A * v^u)^b mod N
	vu := new(big.Int).Exp(c.v, u, primeN)
	avu := new(big.Int).Mul(aBig, vu)
	avu.Mod(avu, primeN)
	s := new(big.Int).Exp(avu, c.b, primeN)

	sessionKey := interleavedSessionKey(bigToLE(s, 32))

	nHash := sha1.Sum(bigToLE(primeN, 32))
	gHash := sha1.Sum(genGBytes)
	var nxorg [sha1.Size]byte
	for i := range nxorg {
		nxorg[i] = nHash[i] ^ gHash[i]
	}

	h := sha1.New()
	h.Write(nxorg[:])
	h.Write(c.identity)
	h.Write(c.salt[:])
	h.Write(clientA[:])
	h.Write(bWire[:])
	h.Write(sessionKey[:])
	expected := h.Sum(nil)

	if subtle.ConstantTimeCompare(expected, m1[:]) != 1 {
		return k, m2, ErrProofMismatch
	}

	h2 := sha1.New()
	h2.Write(clientA[:])
	h2.Write(m1[:])
	h2.Write(sessionKey[:])
	copy(m2[:], h2.Sum(nil))

	return sessionKey, m2, nil
}
