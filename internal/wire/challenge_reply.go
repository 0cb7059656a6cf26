package wire

import "github.com/udisondev/la2go/internal/constants"

// EncodeChallengeFail writes a failed AUTH_LOGON_CHALLENGE reply: opcode,
// unused byte, result. Used for LOGIN_UNKNOWN_ACCOUNT and
// LOGIN_VERSION_INVALID.
func EncodeChallengeFail(buf []byte, result byte) int {
	buf[0] = constants.OpAuthLogonChallenge
	buf[1] = 0
	buf[2] = result
	return 3
}

// EncodeChallengeSuccess writes a successful AUTH_LOGON_CHALLENGE reply: the
// server's public ephemeral B, g, N, the account's salt, and the fixed
// version-challenge blob.
func EncodeChallengeSuccess(buf []byte, b, n, salt [32]byte) int {
	buf[0] = constants.OpAuthLogonChallenge
	buf[1] = 0
	buf[2] = constants.LoginOK
	off := 3

	copy(buf[off:], b[:])
	off += 32

	buf[off] = 1 // g_length
	off++
	buf[off] = constants.SRPGenerator
	off++

	buf[off] = constants.SRPKeyLength // N_length
	off++
	copy(buf[off:], n[:])
	off += 32

	copy(buf[off:], salt[:])
	off += 32

	copy(buf[off:], constants.VersionChallenge[:])
	off += 16

	buf[off] = 0 // security_flags
	off++

	return off
}
