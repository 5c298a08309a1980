// Package verifications keeps single-use email verification tokens.
package verifications

import (
	"context"
	"errors"
	"time"

	"github.com/eduxperience/eduxperience/internal/common"
)

// ErrTokenNotFound is returned by Take for unknown, expired or already used
// tokens.
var ErrTokenNotFound = errors.New("verification token not found")

// Store maps verification tokens to user ids.
type Store interface {
	// Put stores token for userID. It expires after ttl.
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	// Take returns the user id of token and removes it, so a token can be
	// redeemed once.
	Take(ctx context.Context, token string) (string, error)
}

// NewToken returns a random 32-byte hex token.
func NewToken() (string, error) {
	return common.MakeRandHexString(32)
}
