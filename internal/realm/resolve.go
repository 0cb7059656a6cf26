package realm

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/udisondev/la2go/internal/model"
)

// resolveRow resolves a RealmRow's three address fields into a Realm. Either
// a dotted quad or a hostname is accepted for Address/LocalAddress; a
// resolution failure on any of the three fields fails the whole row (spec.md
// §3 invariant: a realm whose address failed to resolve is not inserted).
func resolveRow(row model.RealmRow) (model.Realm, error) {
	addr, err := resolveHost(row.Address)
	if err != nil {
		return model.Realm{}, fmt.Errorf("resolving address %q: %w", row.Address, err)
	}
	localAddr, err := resolveHost(row.LocalAddress)
	if err != nil {
		return model.Realm{}, fmt.Errorf("resolving local_address %q: %w", row.LocalAddress, err)
	}
	mask, err := parseSubnetMask(row.LocalSubnetMask)
	if err != nil {
		return model.Realm{}, fmt.Errorf("parsing local_subnet_mask %q: %w", row.LocalSubnetMask, err)
	}

	return model.Realm{
		ID:              row.ID,
		Name:            row.Name,
		Address:         addr,
		LocalAddress:    localAddr,
		LocalSubnetMask: mask,
		Port:            row.Port,
		Type:            row.Type,
		Flags:           row.Flags,
		Category:        row.Category,
		Population:      row.Population,
		Build:           row.Build,
	}, nil
}

func resolveHost(host string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr, nil
	}

	ips, err := net.DefaultResolver.LookupIP(context.Background(), "ip4", host)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(ips) == 0 {
		return netip.Addr{}, fmt.Errorf("no A records for %q", host)
	}

	addr, ok := netip.AddrFromSlice(ips[0].To4())
	if !ok {
		return netip.Addr{}, fmt.Errorf("resolved address for %q is not IPv4", host)
	}
	return addr, nil
}

func parseSubnetMask(s string) (net.IPMask, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid subnet mask literal")
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("subnet mask is not IPv4")
	}
	return net.IPMask(ip4), nil
}
