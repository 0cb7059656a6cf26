// Package wire implements little-endian encode/decode of the logon
// protocol's packet structs. It follows the teacher's serverpackets
// convention: one function per packet type, a caller-owned []byte in, an
// offset-tracked write with a plain int byte count out. Decoding mirrors
// the same manual-offset style the teacher's handler.go already uses for
// its own packet bodies.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/udisondev/la2go/internal/constants"
)

// ChallengeRequest is the decoded AUTH_LOGON_CHALLENGE body.
type ChallengeRequest struct {
	GameName        [4]byte
	Major           byte
	Minor           byte
	Revision        byte
	Build           uint16
	Platform        [4]byte
	OS              [4]byte
	Locale          [4]byte
	WorldRegionBias uint32
	IP              [4]byte
	AccountName     string
}

// DecodeChallengeRequest parses an AUTH_LOGON_CHALLENGE packet, data[0]
// included. ok is false when data doesn't yet hold a complete packet — the
// caller must not consume anything and should wait for more bytes
// (backpressure on partial reads). err is only ever non-nil alongside
// ok==true: either the size field exceeds constants.MaxChallengePacketSize
// (rejected as soon as the header is in, without waiting for the body) or
// the packet is complete but self-inconsistent; both are hard protocol
// errors rather than a "need more data" condition.
func DecodeChallengeRequest(data []byte) (req *ChallengeRequest, consumed int, ok bool, err error) {
	if len(data) < constants.ChallengeHeaderSize {
		return nil, 0, false, nil
	}

	size := int(binary.LittleEndian.Uint16(data[2:4]))
	total := constants.ChallengeHeaderSize + size
	if total > constants.MaxChallengePacketSize {
		return nil, 0, true, fmt.Errorf("wire: logon challenge size %d exceeds maximum %d", size, constants.MaxChallengePacketSize-constants.ChallengeHeaderSize)
	}
	if len(data) < total {
		return nil, 0, false, nil
	}
	if size < constants.ChallengeTailSize {
		return nil, 0, true, fmt.Errorf("wire: logon challenge size %d shorter than fixed tail %d", size, constants.ChallengeTailSize)
	}

	off := constants.ChallengeHeaderSize
	var r ChallengeRequest

	copy(r.GameName[:], data[off:off+4])
	off += 4
	r.Major, r.Minor, r.Revision = data[off], data[off+1], data[off+2]
	off += 3
	r.Build = binary.LittleEndian.Uint16(data[off : off+2])
	off += 2
	copy(r.Platform[:], data[off:off+4])
	off += 4
	copy(r.OS[:], data[off:off+4])
	off += 4
	copy(r.Locale[:], data[off:off+4])
	off += 4
	r.WorldRegionBias = binary.LittleEndian.Uint32(data[off : off+4])
	off += 4
	copy(r.IP[:], data[off:off+4])
	off += 4
	accountNameLen := int(data[off])
	off++

	if size != constants.ChallengeTailSize+accountNameLen {
		return nil, 0, true, fmt.Errorf("wire: account name length %d disagrees with size field %d", accountNameLen, size)
	}
	if accountNameLen > constants.MaxAccountNameLength {
		return nil, 0, true, fmt.Errorf("wire: account name length %d exceeds maximum %d", accountNameLen, constants.MaxAccountNameLength)
	}

	r.AccountName = string(data[off : off+accountNameLen])
	off += accountNameLen

	return &r, off, true, nil
}

// ProofRequest is the decoded AUTH_LOGON_PROOF body.
type ProofRequest struct {
	A             [32]byte
	M1            [20]byte
	CRCHash       [20]byte
	NumKeys       byte
	SecurityFlags byte
}

// DecodeProofRequest parses an AUTH_LOGON_PROOF packet, data[0] included.
// Fixed size: ok is false only when data is shorter than the whole packet.
func DecodeProofRequest(data []byte) (req *ProofRequest, consumed int, ok bool, err error) {
	if len(data) < constants.AuthLogonProofFixedSize {
		return nil, 0, false, nil
	}

	off := 1 // opcode
	var r ProofRequest
	copy(r.A[:], data[off:off+32])
	off += 32
	copy(r.M1[:], data[off:off+20])
	off += 20
	copy(r.CRCHash[:], data[off:off+20])
	off += 20
	r.NumKeys = data[off]
	off++
	r.SecurityFlags = data[off]
	off++

	return &r, off, true, nil
}

// DecodeRealmListRequest recognizes the fixed opcode(1)|pad(4) REALMLIST
// request. There's no payload to extract, only a length to confirm.
func DecodeRealmListRequest(data []byte) (consumed int, ok bool) {
	if len(data) < constants.MaxRealmListReqSize {
		return 0, false
	}
	return constants.MaxRealmListReqSize, true
}
