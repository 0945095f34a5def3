package storage

import "testing"

// NewTestStore creates a fresh in-memory Store with the schema applied.
func NewTestStore(t *testing.T) *Store {
	t.Helper()
	return NewTestStoreQuota(t, DefaultQuota)
}

// NewTestStoreQuota is NewTestStore with an explicit quota, for exercising
// the storage-full path without megabytes of fixture data.
func NewTestStoreQuota(t *testing.T, quota int64) *Store {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return New(db, "http://test.local", quota)
}
