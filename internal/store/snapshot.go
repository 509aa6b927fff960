// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store persists property set snapshots in PostgreSQL.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/propsuite/pkg/prop"
)

// Snapshot store error codes.
const (
	CodeNotFound    = "SNAPSHOT_NOT_FOUND"
	CodeNotMigrated = "STORE_NOT_MIGRATED"
	CodeCorrupt     = "SNAPSHOT_CORRUPT"
)

// poolIface is satisfied by *pgxpool.Pool and pgxmock.PgxPoolIface.
type poolIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a pgx connection pool and checks that the database answers.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.With("operation", "connect").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.With("operation", "ping").Wrap(err)
	}
	return pool, nil
}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	Key     string
	SetID   ulid.ULID
	SavedAt time.Time
}

// SnapshotStore saves and restores the values of property sets by key.
// Pointer entries are never persisted: their values are addresses that mean
// nothing outside the process that wrote them.
type SnapshotStore struct {
	pool   poolIface
	logger *slog.Logger
}

// SnapshotOption configures a SnapshotStore.
type SnapshotOption func(*SnapshotStore)

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) SnapshotOption {
	return func(s *SnapshotStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSnapshotStore creates a snapshot store over pool.
func NewSnapshotStore(pool poolIface, opts ...SnapshotOption) *SnapshotStore {
	s := &SnapshotStore{pool: pool, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// storeErr wraps a database error, recognizing a schema that was never
// migrated.
func storeErr(err error, op, key string) error {
	errb := oops.With("operation", op).With("key", key)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return errb.Code(CodeNotMigrated).
			Hint("run `propsuite migrate up` first").
			Wrapf(err, "snapshot tables do not exist")
	}
	return errb.Wrap(err)
}

// row is the stored form of one entry.
type row struct {
	name    string
	kind    prop.Kind
	ints    []int32
	doubles []float64
	strings []string
}

func toRow(e *prop.Entry) (row, error) {
	n, err := e.Dimension()
	if err != nil {
		return row{}, err
	}
	values, err := e.GetN(n)
	if err != nil {
		return row{}, err
	}

	r := row{name: e.Name(), kind: e.Kind()}
	switch e.Kind() {
	case prop.KindInt:
		r.ints = make([]int32, len(values))
		for i, v := range values {
			r.ints[i] = v.AsInt()
		}
	case prop.KindDouble:
		r.doubles = make([]float64, len(values))
		for i, v := range values {
			r.doubles[i] = v.AsDouble()
		}
	case prop.KindString:
		r.strings = make([]string, len(values))
		for i, v := range values {
			r.strings[i] = v.AsString()
		}
	}
	return r, nil
}

func (r row) values() []prop.Value {
	var out []prop.Value
	switch r.kind {
	case prop.KindInt:
		for _, v := range r.ints {
			out = append(out, prop.Int(v))
		}
	case prop.KindDouble:
		for _, v := range r.doubles {
			out = append(out, prop.Double(v))
		}
	case prop.KindString:
		for _, v := range r.strings {
			out = append(out, prop.String(v))
		}
	}
	return out
}

// Save replaces the snapshot stored under key with the current values of
// set. Values are read through get-hooks, so a hooked entry is saved as it
// is exposed.
func (s *SnapshotStore) Save(ctx context.Context, key string, set *prop.Set) error {
	var rows []row
	for _, name := range set.Names() {
		e, err := set.Entry(name)
		if err != nil {
			return oops.With("key", key).Wrap(err)
		}
		if e.Kind() == prop.KindPointer {
			continue
		}
		r, err := toRow(e)
		if err != nil {
			return oops.With("operation", "read entry").With("key", key).Wrap(err)
		}
		rows = append(rows, r)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr(err, "begin save", key)
	}
	defer func() { _ = tx.Rollback(ctx) }() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx,
		`INSERT INTO property_snapshots (key, set_id, saved_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET set_id = EXCLUDED.set_id, saved_at = now()`,
		key, set.ID().String()); err != nil {
		return storeErr(err, "save snapshot", key)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM property_snapshot_values WHERE snapshot_key = $1`, key); err != nil {
		return storeErr(err, "clear snapshot values", key)
	}
	for i, r := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO property_snapshot_values (snapshot_key, position, name, kind, ints, doubles, strings)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			key, i, r.name, r.kind.String(), r.ints, r.doubles, r.strings); err != nil {
			return storeErr(oops.With("property", r.name).Wrap(err), "save snapshot value", key)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr(err, "commit save", key)
	}

	s.logger.DebugContext(ctx, "saved property snapshot",
		"key", key,
		"set", set.ID().String(),
		"properties", len(rows))
	return nil
}

// Load writes the snapshot stored under key into set through Entry.SetN,
// so set-hooks observe every restored property. On a sloppy set missing
// properties are created; a strict set skips them. A failure part way
// leaves the properties restored so far in place.
func (s *SnapshotStore) Load(ctx context.Context, key string, set *prop.Set) error {
	var setID string
	err := s.pool.QueryRow(ctx, `SELECT set_id FROM property_snapshots WHERE key = $1`, key).Scan(&setID)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code(CodeNotFound).With("key", key).Errorf("snapshot %q not found", key)
	}
	if err != nil {
		return storeErr(err, "load snapshot", key)
	}

	dbRows, err := s.pool.Query(ctx,
		`SELECT name, kind, ints, doubles, strings
		 FROM property_snapshot_values
		 WHERE snapshot_key = $1
		 ORDER BY position`, key)
	if err != nil {
		return storeErr(err, "load snapshot values", key)
	}
	defer dbRows.Close()

	var rows []row
	for dbRows.Next() {
		var r row
		var kind string
		if err := dbRows.Scan(&r.name, &kind, &r.ints, &r.doubles, &r.strings); err != nil {
			return storeErr(err, "scan snapshot value", key)
		}
		if r.kind, err = prop.ParseKind(kind); err != nil || r.kind == prop.KindPointer {
			return oops.Code(CodeCorrupt).With("key", key).With("property", r.name).
				Errorf("stored kind %q is not restorable", kind)
		}
		rows = append(rows, r)
	}
	if err := dbRows.Err(); err != nil {
		return storeErr(err, "iterate snapshot values", key)
	}

	restored := 0
	for _, r := range rows {
		e, err := set.Lookup(r.name, r.kind)
		if prop.ErrorCode(err) == prop.CodeUnknown {
			s.logger.DebugContext(ctx, "snapshot property not declared in set",
				"key", key,
				"property", r.name)
			continue
		}
		if err != nil {
			return oops.With("key", key).Wrap(err)
		}
		if err := e.SetN(r.values()); err != nil {
			return oops.With("key", key).Wrap(err)
		}
		restored++
	}

	s.logger.DebugContext(ctx, "loaded property snapshot",
		"key", key,
		"saved_set", setID,
		"set", set.ID().String(),
		"properties", restored)
	return nil
}

// Delete removes the snapshot stored under key.
func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM property_snapshots WHERE key = $1`, key)
	if err != nil {
		return storeErr(err, "delete snapshot", key)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code(CodeNotFound).With("key", key).Errorf("snapshot %q not found", key)
	}
	return nil
}

// List returns every stored snapshot, most recent first.
func (s *SnapshotStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, set_id, saved_at FROM property_snapshots ORDER BY saved_at DESC, key`)
	if err != nil {
		return nil, storeErr(err, "list snapshots", "")
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var setID string
		if err := rows.Scan(&info.Key, &setID, &info.SavedAt); err != nil {
			return nil, storeErr(err, "scan snapshot", "")
		}
		if info.SetID, err = ulid.Parse(setID); err != nil {
			return nil, oops.Code(CodeCorrupt).With("key", info.Key).Wrapf(err, "stored set id %q", setID)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "iterate snapshots", "")
	}
	return out, nil
}
