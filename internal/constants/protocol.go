// Package constants collects wire-protocol and domain constants for the
// authentication server. Values mirror the 1.x-3.x WoW client's logon
// protocol; none of them are configurable.
package constants

// Client packet opcodes (client -> server).
const (
	OpAuthLogonChallenge byte = 0x00
	OpAuthLogonProof     byte = 0x01
	OpRealmList          byte = 0x10
)

// Protocol error/result codes. These are the only values the wire protocol
// is allowed to carry; any other internal failure closes the socket instead.
const (
	LoginOK             byte = 0x00
	LoginUnknownAccount byte = 0x04
	LoginVersionInvalid byte = 0x09
)

// AUTH_LOGON_CHALLENGE framing. ChallengeHeaderSize is opcode+protocol_ver+
// size, the four bytes that precede the region the size field measures.
// ChallengeTailSize is everything from game_name through
// account_name_length inclusive — the part size must equal, plus the
// account name itself.
const (
	ChallengeHeaderSize     = 1 + 1 + 2
	ChallengeTailSize       = 4 + 3 + 2 + 4 + 4 + 4 + 4 + 4 + 1
	MaxAccountNameLength    = 16
	AuthLogonProofFixedSize = 1 + 32 + 20 + 20 + 1 + 1
)

// SecurityFlagTokenRequired marks an AUTH_LOGON_PROOF request as carrying a
// token the client expects to be validated. This server has no token store;
// any proof request with this flag set is rejected outright (spec: "token
// not supported").
const SecurityFlagTokenRequired byte = 0x04

// SRP6 fixed parameters (legacy variant: k = 3, g = 7, SHA-1 hash).
const (
	SRPGenerator  = 7
	SRPMultiplier = 3
	SRPKeyLength  = 32 // bytes; N, A, B, salt, verifier are all this width
	SessionKeyLen = 40 // bytes; interleaved SHA-1 session key K
	ProofLen      = 20 // bytes; M1/M2, each a raw SHA-1 digest
)

// SRPPrimeHex is N, the fixed safe prime, written MSB-first (big-endian) the
// way math/big parses it. On the wire N travels little-endian; conversion
// happens at the codec boundary, never inside the SRP6 engine itself.
const SRPPrimeHex = "894B645E89E1535BBDAD5B8B290650530801B18EBFBF5E8FAB3C82872A3E9BB7"

// VersionChallenge is emitted verbatim in every logon-challenge reply. The
// reference client compares it against a build-specific expected value as a
// crude anti-tamper check; we don't validate it ourselves.
var VersionChallenge = [16]byte{
	0xBA, 0xA3, 0x1E, 0x99, 0xA0, 0x0B, 0x21, 0x57,
	0xFC, 0x37, 0x3F, 0xB3, 0x69, 0xCD, 0xD2, 0xF1,
}

// PreBCMaxBuild is the highest build number still served the pre-Burning
// Crusade reply shapes (logon proof without account flags, realm records
// without the lock/id fields).
const PreBCMaxBuild = 6141

// Realm type codes as understood by the client. FFAPVP collapses to PVP and
// anything at or above MaxClientRealmType collapses to Normal before being
// put on the wire (spec: realm.Type normalization).
const (
	RealmTypeNormal    byte = 0
	RealmTypePVP       byte = 1
	RealmTypeNormal2   byte = 4
	RealmTypeRP        byte = 6
	RealmTypeRPPVP     byte = 8
	RealmTypeFFAPVP    byte = 16
	MaxClientRealmType byte = 14
)

// Realm flag bits. FlagOffline|FlagInvalid (0x03) marks a realm row that
// must never be loaded into the catalog at all.
const (
	RealmFlagNone         byte = 0x00
	RealmFlagInvalid      byte = 0x01
	RealmFlagOffline      byte = 0x02
	RealmFlagSpecifyBuild byte = 0x04
	RealmFlagExcludedMask byte = RealmFlagInvalid | RealmFlagOffline
)

// RealmReloadIntervalSeconds is the nominal period between RealmCatalog refreshes;
// jitter is applied on top by the caller.
const RealmReloadIntervalSeconds = 30

// Default network listener.
const (
	DefaultBindAddress = "0.0.0.0"
	DefaultPort        = 3724
)

// FrameBuffer growth parameters.
const InitialFrameBufferSize = 4096 // 4 KiB, spec §4.1 minimum initial block

// Opcode-level size caps, enforced by the FSM before it trusts a length
// field out of the wire. These bound memory under adversarial input since
// FrameBuffer itself grows unboundedly (spec §4.1, §9).
const (
	MaxChallengePacketSize = ChallengeHeaderSize + ChallengeTailSize + MaxAccountNameLength
	MaxProofPacketSize     = AuthLogonProofFixedSize
	MaxRealmListReqSize    = 5
)
