package wire

import (
	"encoding/binary"
	"math"

	"github.com/udisondev/la2go/internal/constants"
)

// BuildOverride decorates a realm record when the realm runs a build other
// than the connecting client's, per RealmFlagSpecifyBuild.
type BuildOverride struct {
	Major, Minor, Revision byte
	Build                  uint16
}

// RealmRecord is one realm entry ready to be put on the wire: already
// filtered, flagged and address-resolved by the realm catalog for this
// specific client.
type RealmRecord struct {
	Type          byte
	Flags         byte
	Name          string
	Address       string // "dotted-quad:port"
	Population    float32
	CharCount     byte
	Category      byte
	RealmID       byte
	BuildOverride *BuildOverride
}

func putCString(buf []byte, s string) int {
	n := copy(buf, s)
	buf[n] = 0
	return n + 1
}

func cStringSize(s string) int {
	return len(s) + 1
}

// EstimateRealmListReplySize returns an upper bound on the encoded size of
// a realmlist reply for the given records, so callers can size a buffer
// before calling either Encode function.
func EstimateRealmListReplySize(realms []RealmRecord) int {
	const perRecordFixedOverhead = 16 // generous slack for either record shape
	total := 1 + 2 + 4 + 2 + 2        // opcode + size + header_pad + count(worst case u16) + footer
	for _, r := range realms {
		total += perRecordFixedOverhead + cStringSize(r.Name) + cStringSize(r.Address)
		if r.BuildOverride != nil {
			total += 5
		}
	}
	return total
}

func encodeRealmRecordPreBC(buf []byte, r RealmRecord) int {
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], uint32(r.Type))
	off += 4
	buf[off] = r.Flags
	off++
	off += putCString(buf[off:], r.Name)
	off += putCString(buf[off:], r.Address)
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(r.Population))
	off += 4
	buf[off] = r.CharCount
	off++
	buf[off] = r.Category
	off++
	buf[off] = 0
	off++
	return off
}

func encodeRealmRecordPostBC(buf []byte, r RealmRecord) int {
	off := 0
	buf[off] = r.Type
	off++
	buf[off] = 1 // lock
	off++
	buf[off] = r.Flags
	off++
	off += putCString(buf[off:], r.Name)
	off += putCString(buf[off:], r.Address)
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(r.Population))
	off += 4
	buf[off] = r.CharCount
	off++
	buf[off] = r.Category
	off++
	buf[off] = r.RealmID
	off++

	if r.Flags&constants.RealmFlagSpecifyBuild != 0 && r.BuildOverride != nil {
		buf[off] = r.BuildOverride.Major
		off++
		buf[off] = r.BuildOverride.Minor
		off++
		buf[off] = r.BuildOverride.Revision
		off++
		binary.LittleEndian.PutUint16(buf[off:], r.BuildOverride.Build)
		off += 2
	}
	return off
}

// EncodeRealmListReplyPreBC writes a REALMLIST reply in the pre-Burning-
// Crusade shape: u8 realm count, 4-byte type fields, no lock/id bytes.
func EncodeRealmListReplyPreBC(buf []byte, realms []RealmRecord) int {
	off := 0
	buf[off] = constants.OpRealmList
	off++
	sizeOff := off
	off += 2
	payloadStart := off

	binary.LittleEndian.PutUint32(buf[off:], 0) // header_pad
	off += 4
	buf[off] = byte(len(realms))
	off++

	for _, r := range realms {
		off += encodeRealmRecordPreBC(buf[off:], r)
	}

	binary.LittleEndian.PutUint16(buf[off:], 0) // footer
	off += 2

	binary.LittleEndian.PutUint16(buf[sizeOff:], uint16(off-payloadStart))
	return off
}

// EncodeRealmListReplyPostBC writes a REALMLIST reply in the Burning-
// Crusade-and-later shape: u16 realm count, 1-byte type/lock/id fields, with
// optional build-override tails.
func EncodeRealmListReplyPostBC(buf []byte, realms []RealmRecord) int {
	off := 0
	buf[off] = constants.OpRealmList
	off++
	sizeOff := off
	off += 2
	payloadStart := off

	binary.LittleEndian.PutUint32(buf[off:], 0) // header_pad
	off += 4
	binary.LittleEndian.PutUint16(buf[off:], uint16(len(realms)))
	off += 2

	for _, r := range realms {
		off += encodeRealmRecordPostBC(buf[off:], r)
	}

	binary.LittleEndian.PutUint16(buf[off:], 0) // footer
	off += 2

	binary.LittleEndian.PutUint16(buf[sizeOff:], uint16(off-payloadStart))
	return off
}
