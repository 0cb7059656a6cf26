// Package realm implements the in-memory realm directory: periodic reload
// from the account store, synchronous address resolution, and per-client
// rendering of realm records for the REALMLIST reply.
package realm

import (
	"context"
	"fmt"
	"log/slog"
	mathrand "math/rand/v2"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/udisondev/la2go/internal/constants"
	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/wire"
)

// Loader is the subset of the account store the catalog needs. Exists so
// tests can substitute a fake without standing up a database.
type Loader interface {
	ListRealms(ctx context.Context) ([]model.RealmRow, error)
	ListBuilds(ctx context.Context) ([]model.BuildInfo, error)
}

// snapshot is the immutable structure swapped atomically on each reload.
type snapshot struct {
	realms []model.Realm
	builds map[uint32]model.BuildInfo
}

// Catalog is the singleton realm table keyed by realm id. Readers call
// RecordsForClient concurrently with the background reload loop; both sides
// only ever touch the atomically-swapped snapshot pointer.
type Catalog struct {
	loader Loader
	sn     atomic.Pointer[snapshot]
}

// New creates a Catalog backed by loader. Callers must call Init before
// RecordsForClient returns anything useful.
func New(loader Loader) *Catalog {
	return &Catalog{loader: loader}
}

// Init performs the synchronous initial load (spec.md §4.5 "On init").
func (c *Catalog) Init(ctx context.Context) error {
	return c.reload(ctx)
}

// Run reloads the catalog every ~30s (± jitter) until ctx is canceled.
func (c *Catalog) Run(ctx context.Context) {
	for {
		wait := jitteredInterval()
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		if err := c.reload(ctx); err != nil {
			slog.Error("realm catalog reload failed", "err", err)
		}
	}
}

func jitteredInterval() time.Duration {
	base := constants.RealmReloadIntervalSeconds
	jitterPct := mathrand.Float64()*0.2 - 0.1 // ±10%
	seconds := float64(base) * (1 + jitterPct)
	return time.Duration(seconds * float64(time.Second))
}

func (c *Catalog) reload(ctx context.Context) error {
	rows, err := c.loader.ListRealms(ctx)
	if err != nil {
		return fmt.Errorf("loading realms: %w", err)
	}
	builds, err := c.loader.ListBuilds(ctx)
	if err != nil {
		return fmt.Errorf("loading builds: %w", err)
	}

	buildMap := make(map[uint32]model.BuildInfo, len(builds))
	for _, b := range builds {
		buildMap[b.Build] = b
	}

	prev := c.sn.Load()
	var prevByID map[uint32]model.Realm
	if prev != nil {
		prevByID = make(map[uint32]model.Realm, len(prev.realms))
		for _, r := range prev.realms {
			prevByID[r.ID] = r
		}
	}

	resolved := make([]model.Realm, 0, len(rows))
	seen := make(map[uint32]struct{}, len(rows))
	for _, row := range rows {
		r, err := resolveRow(row)
		if err != nil {
			slog.Warn("skipping realm with unresolvable address", "realm_id", row.ID, "name", row.Name, "err", err)
			continue
		}
		seen[r.ID] = struct{}{}
		if _, ok := prevByID[r.ID]; ok {
			slog.Info("realm updated", "realm_id", r.ID, "name", r.Name)
		} else {
			slog.Info("realm added", "realm_id", r.ID, "name", r.Name)
		}
		resolved = append(resolved, r)
	}
	for id, old := range prevByID {
		if _, ok := seen[id]; !ok {
			slog.Info("realm removed", "realm_id", id, "name", old.Name)
		}
	}

	c.sn.Store(&snapshot{realms: resolved, builds: buildMap})
	return nil
}

func normalizeType(t uint8) byte {
	switch {
	case t == constants.RealmTypeFFAPVP:
		return constants.RealmTypePVP
	case t >= constants.MaxClientRealmType:
		return constants.RealmTypeNormal
	default:
		return t
	}
}

// BuildKnown reports whether build is one of the builds loaded from
// build_information, and returns its major/minor/revision if so.
func (c *Catalog) BuildKnown(build uint32) (model.BuildInfo, bool) {
	sn := c.sn.Load()
	if sn == nil {
		return model.BuildInfo{}, false
	}
	info, ok := sn.builds[build]
	return info, ok
}

// RecordsForClient renders the current snapshot into wire-ready realm
// records for one client: build-aware filtering (omit unknown builds, flag
// mismatched ones), address selection, and character counts.
//
// preBC controls both the record shape (the build-override is encoded via
// name decoration for pre-BC clients, via trailing bytes for post-BC ones)
// and is otherwise orthogonal to filtering.
func (c *Catalog) RecordsForClient(clientAddr netip.Addr, clientBuild uint32, preBC bool, charCounts map[uint32]uint8) []wire.RealmRecord {
	sn := c.sn.Load()
	if sn == nil {
		return nil
	}

	records := make([]wire.RealmRecord, 0, len(sn.realms))
	for _, r := range sn.realms {
		info, known := sn.builds[r.Build]
		if !known {
			continue
		}

		flags := r.Flags
		name := r.Name
		var override *wire.BuildOverride

		if r.Build != clientBuild {
			flags |= constants.RealmFlagOffline | constants.RealmFlagSpecifyBuild
			if preBC {
				name = fmt.Sprintf("%s (%d.%d.%d)", r.Name, info.Major, info.Minor, info.Revision)
			} else {
				override = &wire.BuildOverride{
					Major:    byte(info.Major),
					Minor:    byte(info.Minor),
					Revision: byte(info.Revision),
					Build:    uint16(r.Build),
				}
			}
		}

		addr := addressForClient(r, clientAddr)
		records = append(records, wire.RealmRecord{
			Type:          normalizeType(r.Type),
			Flags:         flags,
			Name:          name,
			Address:       fmt.Sprintf("%s:%d", addr, r.Port),
			Population:    r.Population,
			CharCount:     charCounts[r.ID],
			Category:      r.Category,
			RealmID:       byte(r.ID),
			BuildOverride: override,
		})
	}
	return records
}
