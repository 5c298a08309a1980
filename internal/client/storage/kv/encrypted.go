package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eduxperience/eduxperience/internal/cryptox"
)

// Reserved keys of an encrypted store. They are stored in plain form in the
// wrapped store and are invisible through EncryptedStore.
const (
	reservedPrefix = "__kv/"
	saltKey        = reservedPrefix + "salt"
	checkKey       = reservedPrefix + "check"
)

var checkPlaintext = []byte("eduxperience")

// EncryptedStore seals every value of the wrapped Store with a key derived
// from a passphrase. The record key is bound to the ciphertext as additional
// data.
type EncryptedStore struct {
	inner Store
	key   []byte
}

// NewEncryptedStore derives the store key from passphrase, creating the salt
// on first use. It returns ErrWrongPassphrase when inner already holds data
// sealed with another passphrase.
func NewEncryptedStore(ctx context.Context, inner Store, passphrase string) (*EncryptedStore, error) {
	if passphrase == "" {
		return nil, errors.New("empty storage passphrase")
	}

	salt, err := inner.Get(ctx, saltKey)
	if err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	fresh := salt == nil
	if fresh {
		salt = cryptox.NewSalt()
		if err := inner.Set(ctx, saltKey, salt); err != nil {
			return nil, fmt.Errorf("write salt: %w", err)
		}
	}

	s := &EncryptedStore{inner: inner, key: cryptox.DeriveKey([]byte(passphrase), salt)}

	check, err := inner.Get(ctx, checkKey)
	if err != nil {
		return nil, fmt.Errorf("read check: %w", err)
	}
	if check == nil {
		sealed, err := cryptox.Seal(s.key, checkPlaintext, []byte(checkKey))
		if err != nil {
			return nil, err
		}
		if err := inner.Set(ctx, checkKey, sealed); err != nil {
			return nil, fmt.Errorf("write check: %w", err)
		}
		return s, nil
	}

	if _, err := cryptox.Open(s.key, check, []byte(checkKey)); err != nil {
		return nil, ErrWrongPassphrase
	}
	return s, nil
}

func isReserved(key string) bool {
	return strings.HasPrefix(key, reservedPrefix)
}

func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if isReserved(key) {
		return nil, nil
	}
	sealed, err := s.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	v, err := cryptox.Open(s.key, sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("decrypt kv[%s]: %w", key, err)
	}
	return v, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key string, value []byte) error {
	if isReserved(key) {
		return fmt.Errorf("key %q is reserved", key)
	}
	sealed, err := cryptox.Seal(s.key, value, []byte(key))
	if err != nil {
		return fmt.Errorf("encrypt kv[%s]: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	if isReserved(key) {
		return nil
	}
	return s.inner.Delete(ctx, key)
}

func (s *EncryptedStore) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	raw, err := s.inner.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte, len(raw))
	for k, sealed := range raw {
		if isReserved(k) {
			continue
		}
		v, err := cryptox.Open(s.key, sealed, []byte(k))
		if err != nil {
			return nil, fmt.Errorf("decrypt kv[%s]: %w", k, err)
		}
		result[k] = v
	}
	return result, nil
}

// Clear removes matching keys one by one so the salt and check records
// survive a full wipe.
func (s *EncryptedStore) Clear(ctx context.Context, prefix string) error {
	if !strings.HasPrefix(reservedPrefix, prefix) && !isReserved(prefix) {
		return s.inner.Clear(ctx, prefix)
	}
	raw, err := s.inner.List(ctx, prefix)
	if err != nil {
		return err
	}
	for k := range raw {
		if isReserved(k) {
			continue
		}
		if err := s.inner.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *EncryptedStore) Close() error {
	return s.inner.Close()
}
