package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements used by the stores.
type Queries struct {
	db DBTX
}

// New binds the queries to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q that runs inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Object is one persisted document object. Payload holds its JSON record.
type Object struct {
	Kind       string
	ID         string
	Payload    []byte
	ModifiedAt int64
}

// KvStore is a row of the key/value table.
type KvStore struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

const upsertObject = `
INSERT INTO objects (kind, id, payload, modified_at) VALUES (?, ?, ?, ?)
ON CONFLICT (kind, id) DO UPDATE SET payload = excluded.payload, modified_at = excluded.modified_at
`

type UpsertObjectParams struct {
	Kind       string
	ID         string
	Payload    []byte
	ModifiedAt int64
}

func (q *Queries) UpsertObject(ctx context.Context, arg UpsertObjectParams) error {
	_, err := q.db.ExecContext(ctx, upsertObject, arg.Kind, arg.ID, arg.Payload, arg.ModifiedAt)
	return err
}

const deleteObject = `DELETE FROM objects WHERE kind = ? AND id = ?`

type DeleteObjectParams struct {
	Kind string
	ID   string
}

func (q *Queries) DeleteObject(ctx context.Context, arg DeleteObjectParams) error {
	_, err := q.db.ExecContext(ctx, deleteObject, arg.Kind, arg.ID)
	return err
}

const listObjects = `SELECT kind, id, payload, modified_at FROM objects WHERE kind = ? ORDER BY rowid`

func (q *Queries) ListObjects(ctx context.Context, kind string) ([]Object, error) {
	rows, err := q.db.QueryContext(ctx, listObjects, kind)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Object
	for rows.Next() {
		var i Object
		if err := rows.Scan(&i.Kind, &i.ID, &i.Payload, &i.ModifiedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const kvGet = `SELECT key, value, expires_at, created_at, updated_at FROM kv_store WHERE key = ?`

func (q *Queries) KVGet(ctx context.Context, key string) (KvStore, error) {
	var i KvStore
	err := q.db.QueryRowContext(ctx, kvGet, key).Scan(&i.Key, &i.Value, &i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const kvSet = `
INSERT INTO kv_store (key, value, expires_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, updated_at = excluded.updated_at
`

type KVSetParams struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

func (q *Queries) KVSet(ctx context.Context, arg KVSetParams) error {
	_, err := q.db.ExecContext(ctx, kvSet, arg.Key, arg.Value, arg.ExpiresAt, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const kvDelete = `DELETE FROM kv_store WHERE key = ?`

func (q *Queries) KVDelete(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, kvDelete, key)
	return err
}

const kvListKeys = `SELECT key FROM kv_store WHERE expires_at IS NULL OR expires_at > ? ORDER BY key`

func (q *Queries) KVListKeys(ctx context.Context, now sql.NullInt64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, kvListKeys, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

const kvSweepExpired = `DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= ?`

func (q *Queries) KVSweepExpired(ctx context.Context, now sql.NullInt64) error {
	_, err := q.db.ExecContext(ctx, kvSweepExpired, now)
	return err
}
