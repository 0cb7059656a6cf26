package realm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2go/internal/constants"
	"github.com/udisondev/la2go/internal/model"
)

type fakeLoader struct {
	realms []model.RealmRow
	builds []model.BuildInfo
}

func (f *fakeLoader) ListRealms(context.Context) ([]model.RealmRow, error) { return f.realms, nil }
func (f *fakeLoader) ListBuilds(context.Context) ([]model.BuildInfo, error) { return f.builds, nil }

func TestCatalogSkipsUnresolvableRealm(t *testing.T) {
	loader := &fakeLoader{
		realms: []model.RealmRow{
			{ID: 1, Name: "Good", Address: "1.2.3.4", LocalAddress: "127.0.0.1", LocalSubnetMask: "255.255.255.0", Build: 12340},
			{ID: 2, Name: "Bad", Address: "not a hostname at all!!", LocalAddress: "127.0.0.1", LocalSubnetMask: "255.255.255.0", Build: 12340},
		},
		builds: []model.BuildInfo{{Build: 12340, Major: 1, Minor: 12, Revision: 1}},
	}
	cat := New(loader)
	require.NoError(t, cat.Init(context.Background()))

	sn := cat.sn.Load()
	require.Len(t, sn.realms, 1)
	require.Equal(t, uint32(1), sn.realms[0].ID)
}

func TestRecordsForClientOmitsUnknownBuild(t *testing.T) {
	loader := &fakeLoader{
		realms: []model.RealmRow{
			{ID: 1, Name: "Known", Address: "1.2.3.4", LocalAddress: "1.2.3.4", LocalSubnetMask: "255.255.255.0", Port: 8085, Build: 12340},
			{ID: 2, Name: "Unknown", Address: "5.6.7.8", LocalAddress: "5.6.7.8", LocalSubnetMask: "255.255.255.0", Port: 8085, Build: 99999},
		},
		builds: []model.BuildInfo{{Build: 12340, Major: 1, Minor: 12, Revision: 1}},
	}
	cat := New(loader)
	require.NoError(t, cat.Init(context.Background()))

	records := cat.RecordsForClient(mustAddr(t, "8.8.8.8"), 12340, false, nil)
	require.Len(t, records, 1)
	require.Equal(t, "Known", records[0].Name)
}

func TestRecordsForClientFlagsMismatchedBuildPreBC(t *testing.T) {
	loader := &fakeLoader{
		realms: []model.RealmRow{
			{ID: 1, Name: "Old", Address: "1.2.3.4", LocalAddress: "1.2.3.4", LocalSubnetMask: "255.255.255.0", Port: 8085, Build: 5875},
		},
		builds: []model.BuildInfo{{Build: 5875, Major: 1, Minor: 12, Revision: 1}},
	}
	cat := New(loader)
	require.NoError(t, cat.Init(context.Background()))

	records := cat.RecordsForClient(mustAddr(t, "8.8.8.8"), 12340, true, nil)
	require.Len(t, records, 1)
	require.Equal(t, "Old (1.12.1)", records[0].Name)
	require.NotZero(t, records[0].Flags&constants.RealmFlagSpecifyBuild)
	require.Nil(t, records[0].BuildOverride)
}

func TestRecordsForClientFlagsMismatchedBuildPostBC(t *testing.T) {
	loader := &fakeLoader{
		realms: []model.RealmRow{
			{ID: 1, Name: "Old", Address: "1.2.3.4", LocalAddress: "1.2.3.4", LocalSubnetMask: "255.255.255.0", Port: 8085, Build: 5875},
		},
		builds: []model.BuildInfo{{Build: 5875, Major: 1, Minor: 12, Revision: 1}},
	}
	cat := New(loader)
	require.NoError(t, cat.Init(context.Background()))

	records := cat.RecordsForClient(mustAddr(t, "8.8.8.8"), 12340, false, nil)
	require.Len(t, records, 1)
	require.Equal(t, "Old", records[0].Name)
	require.NotNil(t, records[0].BuildOverride)
	require.Equal(t, uint16(5875), records[0].BuildOverride.Build)
}
