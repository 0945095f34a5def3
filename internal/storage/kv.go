package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultQuota is the ceiling on total namespaced data, in bytes.
const DefaultQuota = 4 << 20

var (
	// ErrStoreFull is returned when creating a new key would push the
	// namespace past its quota. Callers surface it with a dedicated message
	// so users know to delete data.
	ErrStoreFull = errors.New("storage is full")

	// ErrSaveFailed covers every other write failure.
	ErrSaveFailed = errors.New("failed to save data")
)

// Store is a namespaced, quota-enforced key/value store. Keys are prefixed
// per deployment origin so that two instances sharing one database file
// never see each other's data.
type Store struct {
	db     *sql.DB
	prefix string
	quota  int64
}

// New wraps db in a Store namespaced to the given origin. A non-positive
// quota falls back to DefaultQuota.
func New(db *sql.DB, origin string, quota int64) *Store {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &Store{db: db, prefix: Prefix(origin), quota: quota}
}

// Prefix derives the key namespace for an origin (scheme+host). The hash is
// deliberately non-cryptographic; a collision merely shares a namespace.
func Prefix(origin string) string {
	return "dropquest-" + hashToken(origin) + "-"
}

// hashToken reduces a string to a short base-36 token using the classic
// 31-multiplier string hash over 32-bit integers.
func hashToken(s string) string {
	var h int32
	for _, c := range s {
		h = h*31 + int32(c)
	}
	// Widen before taking the absolute value: negating the minimum int32
	// in 32 bits stays negative.
	v := int64(h)
	if v < 0 {
		v = -v
	}
	token := strconv.FormatInt(v, 36)
	if len(token) > 8 {
		token = token[:8]
	}
	return token
}

// Save serializes value as JSON and writes it under key. Creating a key that
// does not exist yet is refused with ErrStoreFull once the namespace has
// reached its quota; overwriting an existing key is never quota-checked.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	full := s.prefix + key

	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM kv WHERE key = ?)`, full,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	if !exists {
		size, err := s.Size(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}
		if size >= s.quota {
			return ErrStoreFull
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		full, string(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}

// Get reads key into dest and reports whether a usable value was found.
// Absent keys and malformed stored JSON both read as "not there"; corruption
// is swallowed rather than propagated.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, s.prefix+key,
	).Scan(&raw)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false
	}
	return true
}

// GetAll returns every namespaced key with its raw JSON value, keys
// de-prefixed. Malformed values are skipped.
func (s *Store) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM kv WHERE key LIKE ? || '%'`, s.prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	result := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		if !json.Valid([]byte(value)) {
			continue
		}
		result[strings.TrimPrefix(key, s.prefix)] = json.RawMessage(value)
	}
	return result, rows.Err()
}

// Remove deletes a single key.
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE key = ?`, s.prefix+key,
	)
	if err != nil {
		return fmt.Errorf("removing key: %w", err)
	}
	return nil
}

// Clear deletes all keys in this store's namespace.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE key LIKE ? || '%'`, s.prefix,
	)
	if err != nil {
		return fmt.Errorf("clearing namespace: %w", err)
	}
	return nil
}

// Size returns the total serialized size of all namespaced data in bytes.
func (s *Store) Size(ctx context.Context) (int64, error) {
	var size int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(LENGTH(key) + LENGTH(value)), 0)
		 FROM kv WHERE key LIKE ? || '%'`, s.prefix,
	).Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("computing size: %w", err)
	}
	return size, nil
}
