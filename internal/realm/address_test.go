package realm

import (
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2go/internal/model"
)

func mustAddr(t *testing.T, s string) netip.Addr {
	t.Helper()
	a, err := netip.ParseAddr(s)
	require.NoError(t, err)
	return a
}

func TestAddressForClientLoopback(t *testing.T) {
	r := model.Realm{
		Address:      mustAddr(t, "203.0.113.5"),
		LocalAddress: mustAddr(t, "10.0.0.1"),
	}
	got := addressForClient(r, mustAddr(t, "127.0.0.1"))
	require.Equal(t, r.LocalAddress, got)
}

func TestAddressForClientLoopbackBothLoopback(t *testing.T) {
	r := model.Realm{
		Address:      mustAddr(t, "127.0.0.1"),
		LocalAddress: mustAddr(t, "127.0.0.1"),
	}
	client := mustAddr(t, "127.0.0.1")
	got := addressForClient(r, client)
	require.Equal(t, client, got)
}

func TestAddressForClientInSubnet(t *testing.T) {
	r := model.Realm{
		Address:         mustAddr(t, "203.0.113.5"),
		LocalAddress:    mustAddr(t, "10.0.0.1"),
		LocalSubnetMask: net.IPMask{255, 255, 255, 0},
	}
	got := addressForClient(r, mustAddr(t, "10.0.0.5"))
	require.Equal(t, r.LocalAddress, got)
}

func TestAddressForClientExternal(t *testing.T) {
	r := model.Realm{
		Address:         mustAddr(t, "203.0.113.5"),
		LocalAddress:    mustAddr(t, "10.0.0.1"),
		LocalSubnetMask: net.IPMask{255, 255, 255, 0},
	}
	got := addressForClient(r, mustAddr(t, "8.8.8.8"))
	require.Equal(t, r.Address, got)
}
