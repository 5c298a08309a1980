// Package credentials keeps "remember me" logins on the device.
//
// Key layout in the local store:
//
//	credentials/last           most recently saved email
//	credentials/emails         JSON array of saved emails, most recent first
//	credentials/entry/<email>  JSON SavedCredential
//
// Reads fail open: a missing, unreadable or corrupt record is reported as
// absent and logged. Writes report ErrStorageUnavailable so the caller can
// warn the user without aborting the login.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/client/storage/kv"
	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/logging"
)

const (
	keyPrefix   = "credentials/"
	keyLast     = keyPrefix + "last"
	keyEmails   = keyPrefix + "emails"
	entryPrefix = keyPrefix + "entry/"
)

var (
	ErrStorageUnavailable = errors.New("local storage unavailable")
	ErrEmptyEmail         = errors.New("email is required")
)

type Store struct {
	kv  kv.Store
	log logging.Logger
	now func() time.Time
}

func NewStore(s kv.Store, log logging.Logger) *Store {
	return &Store{kv: s, log: log.With("module", "credentials"), now: time.Now}
}

// WithClock replaces the time source used for SavedAt.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func entryKey(email string) string {
	return entryPrefix + email
}

func writeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

// Save writes or overwrites the entry for email and makes it the most
// recent one.
func (s *Store) Save(ctx context.Context, email, password string) error {
	email = common.NormalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}

	cred := models.SavedCredential{Email: email, Password: password, SavedAt: s.now().UTC()}
	blob, err := json.Marshal(cred)
	if err != nil {
		return writeErr("encode credential", err)
	}
	if err := s.kv.Set(ctx, entryKey(email), blob); err != nil {
		return writeErr("write credential", err)
	}

	emails := s.ListEmails(ctx)
	emails = slices.DeleteFunc(emails, func(e string) bool { return e == email })
	emails = append([]string{email}, emails...)
	if err := s.writeIndex(ctx, emails); err != nil {
		return err
	}

	if err := s.kv.Set(ctx, keyLast, []byte(email)); err != nil {
		return writeErr("write most recent", err)
	}
	return nil
}

func (s *Store) writeIndex(ctx context.Context, emails []string) error {
	blob, err := json.Marshal(emails)
	if err != nil {
		return writeErr("encode email index", err)
	}
	if err := s.kv.Set(ctx, keyEmails, blob); err != nil {
		return writeErr("write email index", err)
	}
	return nil
}

// LoadMostRecent returns the last saved credential, if any.
func (s *Store) LoadMostRecent(ctx context.Context) (*models.SavedCredential, bool) {
	last, err := s.kv.Get(ctx, keyLast)
	if err != nil {
		s.log.Warn(ctx, "read most recent credential failed", "error", err)
	}
	if len(last) > 0 {
		if cred, ok := s.LoadByEmail(ctx, string(last)); ok {
			return cred, true
		}
	}

	// the pointer is missing or dangling: fall back to the recency index
	for _, email := range s.ListEmails(ctx) {
		if cred, ok := s.LoadByEmail(ctx, email); ok {
			return cred, true
		}
	}
	return nil, false
}

// LoadByEmail returns the credential saved for email, if any.
func (s *Store) LoadByEmail(ctx context.Context, email string) (*models.SavedCredential, bool) {
	email = common.NormalizeEmail(email)
	if email == "" {
		return nil, false
	}

	blob, err := s.kv.Get(ctx, entryKey(email))
	if err != nil {
		s.log.Warn(ctx, "read credential failed", "email", email, "error", err)
		return nil, false
	}
	if blob == nil {
		return nil, false
	}

	var cred models.SavedCredential
	if err := json.Unmarshal(blob, &cred); err != nil || cred.Email != email {
		s.log.Warn(ctx, "corrupt credential record", "email", email, "error", err)
		return nil, false
	}
	return &cred, true
}

// ListEmails returns the saved emails, most recent first.
func (s *Store) ListEmails(ctx context.Context) []string {
	blob, err := s.kv.Get(ctx, keyEmails)
	if err != nil {
		s.log.Warn(ctx, "read email index failed", "error", err)
		return s.scanEntries(ctx)
	}
	if blob == nil {
		return s.scanEntries(ctx)
	}

	var emails []string
	if err := json.Unmarshal(blob, &emails); err != nil {
		s.log.Warn(ctx, "corrupt email index", "error", err)
		return s.scanEntries(ctx)
	}
	return emails
}

// scanEntries rebuilds the recency order from the entries themselves.
func (s *Store) scanEntries(ctx context.Context) []string {
	raw, err := s.kv.List(ctx, entryPrefix)
	if err != nil {
		s.log.Warn(ctx, "list credentials failed", "error", err)
		return []string{}
	}

	creds := make([]models.SavedCredential, 0, len(raw))
	for key, blob := range raw {
		var c models.SavedCredential
		if err := json.Unmarshal(blob, &c); err != nil || c.Email != strings.TrimPrefix(key, entryPrefix) {
			continue
		}
		creds = append(creds, c)
	}
	sort.Slice(creds, func(i, j int) bool {
		if creds[i].SavedAt.Equal(creds[j].SavedAt) {
			return creds[i].Email < creds[j].Email
		}
		return creds[i].SavedAt.After(creds[j].SavedAt)
	})

	emails := make([]string, len(creds))
	for i, c := range creds {
		emails[i] = c.Email
	}
	return emails
}

// Clear removes the given entries, or every entry when called without
// emails. When the most recent entry goes away the next most recent one
// takes its place.
func (s *Store) Clear(ctx context.Context, emails ...string) error {
	if len(emails) == 0 {
		if err := s.kv.Clear(ctx, keyPrefix); err != nil {
			return writeErr("clear credentials", err)
		}
		return nil
	}

	drop := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = common.NormalizeEmail(e)
		if e == "" {
			continue
		}
		drop[e] = struct{}{}
		if err := s.kv.Delete(ctx, entryKey(e)); err != nil {
			return writeErr("delete credential", err)
		}
	}

	remaining := slices.DeleteFunc(s.ListEmails(ctx), func(e string) bool {
		_, gone := drop[e]
		return gone
	})
	if err := s.writeIndex(ctx, remaining); err != nil {
		return err
	}

	last, err := s.kv.Get(ctx, keyLast)
	if err != nil {
		s.log.Warn(ctx, "read most recent credential failed", "error", err)
	}
	if _, gone := drop[string(last)]; !gone && len(last) > 0 {
		return nil
	}

	if len(remaining) == 0 {
		if err := s.kv.Delete(ctx, keyLast); err != nil {
			return writeErr("delete most recent", err)
		}
		return nil
	}
	if err := s.kv.Set(ctx, keyLast, []byte(remaining[0])); err != nil {
		return writeErr("write most recent", err)
	}
	return nil
}
