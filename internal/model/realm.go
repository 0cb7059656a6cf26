package model

import (
	"net"
	"net/netip"
)

// RealmRow is one realm as the account store returns it: address fields are
// still the raw hostnames/dotted-quads an operator configured. The realm
// catalog resolves a RealmRow into a Realm at load time.
type RealmRow struct {
	ID              uint32
	Name            string
	Address         string
	LocalAddress    string
	LocalSubnetMask string
	Port            uint16
	Type            uint8
	Flags           uint8
	Category        uint8
	Population      float32
	Build           uint32
}

// Realm is one game world entry as held in the live catalog: its three
// address fields have already been resolved to concrete IPv4 endpoints. A
// RealmRow whose resolution fails is never promoted to a Realm (spec.md §3
// invariant).
type Realm struct {
	ID              uint32
	Name            string
	Address         netip.Addr
	LocalAddress    netip.Addr
	LocalSubnetMask net.IPMask
	Port            uint16
	Type            uint8
	Flags           uint8
	Category        uint8
	Population      float32
	Build           uint32
}
