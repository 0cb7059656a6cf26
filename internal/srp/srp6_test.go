package srp

import (
	"crypto/rand"
	"crypto/sha1"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// honestClient simulates the client half of SRP6 well enough to drive
// ServerContext.Verify the way a real WoW client would: it only ever sees
// wire bytes (salt, B, N, g) and reproduces A, M1 from the username,
// password and those wire values.
type honestClient struct {
	username string
	a        *big.Int
	aPub     [32]byte
}

func newHonestClient(t *testing.T, username string) *honestClient {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	a := new(big.Int).SetBytes(raw)
	aPubBig := new(big.Int).Exp(genG, a, primeN)

	var aPub [32]byte
	copy(aPub[:], bigToLE(aPubBig, 32))

	return &honestClient{username: username, a: a, aPub: aPub}
}

func (c *honestClient) proof(password string, salt [32]byte, bWire [32]byte) (m1 [20]byte, k [40]byte) {
	x := computeX(c.username, password, salt)

	uDigest := sha1.Sum(append(append([]byte{}, c.aPub[:]...), bWire[:]...))
	u := leToBig(uDigest[:])

	gx := new(big.Int).Exp(genG, x, primeN)
	kgx := new(big.Int).Mul(multK, gx)
	t1 := new(big.Int).Sub(leToBig(bWire[:]), kgx)
	t1.Mod(t1, primeN)

	exp := new(big.Int).Add(c.a, new(big.Int).Mul(u, x))
	s := new(big.Int).Exp(t1, exp, primeN)

	k = interleavedSessionKey(bigToLE(s, 32))

	nHash := sha1.Sum(bigToLE(primeN, 32))
	gHash := sha1.Sum(genGBytes)
	var nxorg [20]byte
	for i := range nxorg {
		nxorg[i] = nHash[i] ^ gHash[i]
	}
	identity := sha1.Sum([]byte(upper(c.username)))

	h := sha1.New()
	h.Write(nxorg[:])
	h.Write(identity[:])
	h.Write(salt[:])
	h.Write(c.aPub[:])
	h.Write(bWire[:])
	h.Write(k[:])
	copy(m1[:], h.Sum(nil))
	return m1, k
}

func computeX(username, password string, salt [32]byte) *big.Int {
	inner := sha1.Sum([]byte(upper(username) + ":" + upper(password)))
	h := sha1.New()
	h.Write(salt[:])
	h.Write(inner[:])
	return leToBig(h.Sum(nil))
}

func TestHonestClientAuthenticates(t *testing.T) {
	username := "TEST"
	password := "TEST"

	var salt [32]byte
	for i := range salt {
		salt[i] = 0x01
	}
	verifier := ComputeVerifier(username, password, salt)

	ctx, err := NewServerContext(username, salt, verifier)
	require.NoError(t, err)

	client := newHonestClient(t, username)
	m1, clientK := client.proof(password, salt, ctx.B())

	serverK, _, err := ctx.Verify(client.aPub, m1)
	require.NoError(t, err)
	require.Equal(t, clientK, serverK)
}

func TestBitFlipInAFails(t *testing.T) {
	username, password := "TEST", "TEST"
	var salt [32]byte
	for i := range salt {
		salt[i] = 0x01
	}
	verifier := ComputeVerifier(username, password, salt)
	ctx, err := NewServerContext(username, salt, verifier)
	require.NoError(t, err)

	client := newHonestClient(t, username)
	m1, _ := client.proof(password, salt, ctx.B())

	flippedA := client.aPub
	flippedA[0] ^= 0x01

	_, _, err = ctx.Verify(flippedA, m1)
	require.ErrorIs(t, err, ErrProofMismatch)
}

func TestBitFlipInM1Fails(t *testing.T) {
	username, password := "TEST", "TEST"
	var salt [32]byte
	for i := range salt {
		salt[i] = 0x01
	}
	verifier := ComputeVerifier(username, password, salt)
	ctx, err := NewServerContext(username, salt, verifier)
	require.NoError(t, err)

	client := newHonestClient(t, username)
	m1, _ := client.proof(password, salt, ctx.B())
	m1[0] ^= 0x01

	_, _, err = ctx.Verify(client.aPub, m1)
	require.ErrorIs(t, err, ErrProofMismatch)
}

func TestSingleUseContext(t *testing.T) {
	username, password := "TEST", "TEST"
	var salt [32]byte
	for i := range salt {
		salt[i] = 0x01
	}
	verifier := ComputeVerifier(username, password, salt)
	ctx, err := NewServerContext(username, salt, verifier)
	require.NoError(t, err)

	client := newHonestClient(t, username)
	m1, _ := client.proof(password, salt, ctx.B())

	_, _, err = ctx.Verify(client.aPub, m1)
	require.NoError(t, err)

	_, _, err = ctx.Verify(client.aPub, m1)
	require.ErrorIs(t, err, ErrContextConsumed)
}

// TestSessionKeyEncodesSharedSecretLittleEndian pins interleavedSessionKey's
// input convention against an oracle built without calling bigToLE, so a
// regression back to S.Bytes() (big-endian) is caught even if bigToLE and
// interleavedSessionKey were both broken identically.
func TestSessionKeyEncodesSharedSecretLittleEndian(t *testing.T) {
	s := new(big.Int)
	for i := 1; i <= 32; i++ {
		s.Lsh(s, 8)
		s.Or(s, big.NewInt(int64(i)))
	}

	be := make([]byte, 32)
	s.FillBytes(be)
	le := make([]byte, 32)
	for i, c := range be {
		le[len(le)-1-i] = c
	}

	got := interleavedSessionKey(bigToLE(s, 32))
	want := interleavedSessionKey(le)
	require.Equal(t, want, got)

	wrongWay := interleavedSessionKey(be)
	require.NotEqual(t, wrongWay, got, "big-endian and little-endian encodings of this S must diverge, or the oracle is useless")
}

func TestWeakEphemeralRejected(t *testing.T) {
	username, password := "TEST", "TEST"
	var salt [32]byte
	for i := range salt {
		salt[i] = 0x01
	}
	verifier := ComputeVerifier(username, password, salt)
	ctx, err := NewServerContext(username, salt, verifier)
	require.NoError(t, err)

	var zeroA [32]byte // A = 0 => A mod N == 0
	var m1 [20]byte
	_, _, err = ctx.Verify(zeroA, m1)
	require.ErrorIs(t, err, ErrWeakEphemeral)
}
