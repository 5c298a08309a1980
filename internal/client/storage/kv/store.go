// Package kv is the device-local key-value storage behind every piece of
// client state: saved credentials, the admin session and pending profiles.
//
// Three implementations share the Store contract:
//   - SQLiteStore persists to a file and survives restarts;
//   - MemoryStore lives as long as the process (tests, -d memory);
//   - EncryptedStore seals values of another Store with a passphrase.
//
// Concurrent tabs or processes writing the same file are not coordinated:
// the last writer wins.
package kv

import (
	"context"
	"errors"
)

// ErrWrongPassphrase is returned when an encrypted store is opened with a
// passphrase different from the one it was created with.
var ErrWrongPassphrase = errors.New("wrong storage passphrase")

// Store is a byte-oriented key-value store.
//
// Get returns (nil, nil) for an absent key. Set upserts. Delete is
// idempotent. List and Clear operate on every key starting with prefix;
// the empty prefix selects everything.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	Clear(ctx context.Context, prefix string) error
	Close() error
}
