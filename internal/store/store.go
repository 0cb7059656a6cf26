// Package store adapts the account/build/realm/character tables to the
// in-process types the authentication core operates on. Strictly
// read-only: the core never writes through this package. Every lookup
// distinguishes a missing row (ErrNotFound) from an unreachable database
// (ErrStorageUnavailable); callers never confuse "no such account" with
// "the database is down".
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/la2go/internal/model"
)

// ErrNotFound is returned when a lookup succeeds in reaching the database
// but finds no matching row. Distinct from ErrStorageUnavailable so callers
// can tell "no such account" from "the database is down".
var ErrNotFound = errors.New("store: not found")

// ErrStorageUnavailable wraps any database-layer failure that isn't a plain
// not-found: connection refused, query timeout, a malformed row. Callers
// (internal/authserver) must never surface this distinction on the wire —
// spec.md §7 maps it to a silent socket close, never a protocol error code —
// but need it internally to decide that, as opposed to LOGIN_UNKNOWN_ACCOUNT.
var ErrStorageUnavailable = errors.New("store: storage unavailable")

// AccountStore is a pgxpool-backed read adapter over the account, build and
// realm tables, grounded on the teacher's PostgresAccountRepository
// query-and-wrap idiom: parameterized queries, QueryRow().Scan, error
// wrapping with fmt.Errorf("...: %w", err).
type AccountStore struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns an AccountStore.
func New(ctx context.Context, dsn string) (*AccountStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w: %w", ErrStorageUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w: %w", ErrStorageUnavailable, err)
	}
	return &AccountStore{pool: pool}, nil
}

// FromPool wraps an already-connected pool, for callers (tests, mainly)
// that manage the pool's lifetime themselves.
func FromPool(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// Close closes the underlying connection pool.
func (s *AccountStore) Close() {
	s.pool.Close()
}

// Pool returns the underlying pgx pool, for callers (tests, mainly) that
// need to issue queries of their own.
func (s *AccountStore) Pool() *pgxpool.Pool {
	return s.pool
}

// FindAccount looks up an account by username, case-insensitive. Returns
// ErrNotFound if no account matches; any other error indicates the store
// itself is unavailable (StorageUnavailable per spec.md §4.4).
func (s *AccountStore) FindAccount(ctx context.Context, username string) (*model.Account, error) {
	var acc model.Account
	var salt, verifier []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, username, salt, verifier FROM account WHERE UPPER(username) = UPPER($1)`,
		username,
	).Scan(&acc.ID, &acc.Username, &salt, &verifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying account %q: %w: %w", username, ErrStorageUnavailable, err)
	}

	if len(salt) != 32 || len(verifier) != 32 {
		return nil, fmt.Errorf("querying account %q: %w: malformed salt/verifier width", username, ErrStorageUnavailable)
	}
	copy(acc.Salt[:], salt)
	copy(acc.Verifier[:], verifier)

	return &acc, nil
}

// ListBuilds returns every supported client build.
func (s *AccountStore) ListBuilds(ctx context.Context) ([]model.BuildInfo, error) {
	rows, err := s.pool.Query(ctx, `SELECT build, major, minor, revision FROM build_information`)
	if err != nil {
		return nil, fmt.Errorf("listing builds: %w: %w", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var builds []model.BuildInfo
	for rows.Next() {
		var b model.BuildInfo
		if err := rows.Scan(&b.Build, &b.Major, &b.Minor, &b.Revision); err != nil {
			return nil, fmt.Errorf("scanning build row: %w: %w", ErrStorageUnavailable, err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing builds: %w: %w", ErrStorageUnavailable, err)
	}
	return builds, nil
}

// ListRealms returns every realm row with flags != 3 (spec.md §4.4, §3
// invariant: offline+invalid realms never reach the catalog).
func (s *AccountStore) ListRealms(ctx context.Context) ([]model.RealmRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, address, local_address, local_subnet_mask, port,
		        type, flags, category, population, build
		 FROM realmlist WHERE flags != 3`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing realms: %w: %w", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var realms []model.RealmRow
	for rows.Next() {
		var r model.RealmRow
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Address, &r.LocalAddress, &r.LocalSubnetMask, &r.Port,
			&r.Type, &r.Flags, &r.Category, &r.Population, &r.Build,
		); err != nil {
			return nil, fmt.Errorf("scanning realm row: %w: %w", ErrStorageUnavailable, err)
		}
		realms = append(realms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing realms: %w: %w", ErrStorageUnavailable, err)
	}
	return realms, nil
}

// CharactersPerRealm returns realm_id -> character count for the given
// account, saturating each count at 255.
func (s *AccountStore) CharactersPerRealm(ctx context.Context, accountID uint32) (map[uint32]uint8, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT realm_id, count FROM characters WHERE account_id = $1`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing characters for account %d: %w: %w", accountID, ErrStorageUnavailable, err)
	}
	defer rows.Close()

	counts := make(map[uint32]uint8)
	for rows.Next() {
		var realmID uint32
		var count int32
		if err := rows.Scan(&realmID, &count); err != nil {
			return nil, fmt.Errorf("scanning character-count row: %w: %w", ErrStorageUnavailable, err)
		}
		if count > 255 {
			count = 255
		}
		counts[realmID] = uint8(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing characters for account %d: %w: %w", accountID, ErrStorageUnavailable, err)
	}
	return counts, nil
}
