package kv

import (
	"context"
	"fmt"

	"github.com/eduxperience/eduxperience/internal/filex"
)

// MemoryDSN selects the process-local store.
const MemoryDSN = "memory"

// Options selects and configures the store built by Open.
type Options struct {
	// DSN is a SQLite file path or MemoryDSN.
	DSN string
	// Passphrase enables value encryption when non-empty.
	Passphrase string
}

// Open builds the store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	var base Store

	switch opts.DSN {
	case MemoryDSN, "":
		base = NewMemoryStore()
	default:
		if _, err := filex.EnsureParentDir(opts.DSN); err != nil {
			return nil, fmt.Errorf("prepare storage dir: %w", err)
		}
		s, err := OpenSQLite(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		base = s
	}

	if opts.Passphrase == "" {
		return base, nil
	}

	enc, err := NewEncryptedStore(ctx, base, opts.Passphrase)
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	return enc, nil
}
