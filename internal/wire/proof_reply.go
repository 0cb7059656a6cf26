package wire

import (
	"encoding/binary"

	"github.com/udisondev/la2go/internal/constants"
)

// accountFlagDefault is the account_flag value every post-BC success reply
// carries; this protocol doesn't model per-account feature flags.
const accountFlagDefault = 0x00800000

// EncodeProofFail writes a failed AUTH_LOGON_PROOF reply: opcode, result,
// then a two-byte zero tail (both pre-BC and post-BC clients accept this
// truncated shape on failure).
func EncodeProofFail(buf []byte, result byte) int {
	buf[0] = constants.OpAuthLogonProof
	buf[1] = result
	binary.LittleEndian.PutUint16(buf[2:], 0)
	return 4
}

// EncodeProofSuccessPreBC writes a successful AUTH_LOGON_PROOF reply in the
// shape pre-Burning-Crusade clients expect: no account_flag field.
func EncodeProofSuccessPreBC(buf []byte, m2 [20]byte) int {
	buf[0] = constants.OpAuthLogonProof
	buf[1] = constants.LoginOK
	off := 2
	copy(buf[off:], m2[:])
	off += 20
	binary.LittleEndian.PutUint32(buf[off:], 0) // hardware_survey_id
	off += 4
	return off
}

// EncodeProofSuccessPostBC writes a successful AUTH_LOGON_PROOF reply in the
// shape Burning-Crusade-and-later clients expect, with the account_flag and
// trailing unknown_flags fields.
func EncodeProofSuccessPostBC(buf []byte, m2 [20]byte) int {
	buf[0] = constants.OpAuthLogonProof
	buf[1] = constants.LoginOK
	off := 2
	copy(buf[off:], m2[:])
	off += 20
	binary.LittleEndian.PutUint32(buf[off:], accountFlagDefault)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], 0) // hardware_survey_id
	off += 4
	binary.LittleEndian.PutUint16(buf[off:], 0) // unknown_flags
	off += 2
	return off
}
