package realm

import (
	"net"
	"net/netip"

	"github.com/udisondev/la2go/internal/model"
)

// addressForClient implements spec.md §4.5's three address-selection rules:
// a loopback client gets the local address (unless both local and external
// are also loopback, in which case it gets its own address back so a
// same-host client can still reach the realm); a client inside the realm's
// local subnet gets the local address; everyone else gets the external
// address.
func addressForClient(r model.Realm, client netip.Addr) netip.Addr {
	if client.IsLoopback() {
		if r.LocalAddress.IsLoopback() && r.Address.IsLoopback() {
			return client
		}
		return r.LocalAddress
	}

	if client.Is4() && inSubnet(client, r.LocalAddress, r.LocalSubnetMask) {
		return r.LocalAddress
	}

	return r.Address
}

func inSubnet(client, local netip.Addr, mask net.IPMask) bool {
	if !client.Is4() || !local.Is4() || len(mask) != 4 {
		return false
	}
	clientIP := client.As4()
	localIP := local.As4()
	for i := range 4 {
		if clientIP[i]&mask[i] != localIP[i]&mask[i] {
			return false
		}
	}
	return true
}
