package authserver

import "net/netip"

// remoteAddr extracts the client's IP as a netip.Addr for realm address
// selection (internal/realm's loopback/subnet/external rules operate on
// netip.Addr, not the string form Session.IP keeps for logging/FailCounter
// keys).
func remoteAddr(sess *Session) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(sess.IP())
	if err != nil {
		return netip.Addr{}, false
	}
	return addr, true
}
