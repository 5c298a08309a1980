// Package cryptox seals small values for the encrypted local store: keys are
// derived from a passphrase with Argon2id and values are sealed with
// AES-256-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/eduxperience/eduxperience/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys produced by DeriveKey (AES-256).
const KeySize = 32

// SaltSize is the recommended salt length for DeriveKey.
const SaltSize = 16

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// DeriveKey stretches passphrase into a KeySize-byte key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// NewSalt returns a fresh random salt for DeriveKey.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext under key. The random nonce is prepended to the
// returned ciphertext. additional is authenticated but not encrypted; the
// local store passes the record key so that values cannot be swapped
// between keys.
func Seal(key, plaintext, additional []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, additional), nil
}

// Open reverses Seal.
func Open(key, sealed, additional []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrMalformedCiphertext
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, additional)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return plaintext, nil
}
