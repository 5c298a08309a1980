// Package pending holds draft profiles staged at sign-up until the email is
// confirmed and the router can create them on the backend.
//
// Drafts live under pending/<kind>/<email> in the local store.
package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/client/storage/kv"
	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/logging"
)

const keyPrefix = "pending/"

var ErrInvalidProfile = errors.New("invalid pending profile")

type Store struct {
	kv  kv.Store
	log logging.Logger
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(s kv.Store, log logging.Logger) *Store {
	return &Store{
		kv:    s,
		log:   log.With("module", "pending"),
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

func key(kind models.ProfileKind, email string) string {
	return keyPrefix + string(kind) + "/" + email
}

// lock returns the mutex serialising consumers of one draft. Entries are
// never removed; the key space is bounded by kinds times local emails.
func (s *Store) lock(k string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[k]
	if !ok {
		m = &sync.Mutex{}
		s.locks[k] = m
	}
	return m
}

// Stage writes or overwrites the draft for (p.Kind, p.Email).
func (s *Store) Stage(ctx context.Context, p models.PendingProfile) error {
	p.Email = common.NormalizeEmail(p.Email)
	if p.Email == "" {
		return fmt.Errorf("%w: empty email", ErrInvalidProfile)
	}
	if _, err := models.ParseProfileKind(string(p.Kind)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if len(p.Payload) == 0 {
		p.Payload = json.RawMessage("{}")
	}
	if !json.Valid(p.Payload) {
		return fmt.Errorf("%w: payload is not JSON", ErrInvalidProfile)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}

	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending profile: %w", err)
	}
	if err := s.kv.Set(ctx, key(p.Kind, p.Email), blob); err != nil {
		return fmt.Errorf("stage pending profile: %w", err)
	}
	return nil
}

// Get returns the draft for (kind, email). Unreadable drafts are absent.
func (s *Store) Get(ctx context.Context, kind models.ProfileKind, email string) (*models.PendingProfile, bool) {
	email = common.NormalizeEmail(email)
	blob, err := s.kv.Get(ctx, key(kind, email))
	if err != nil {
		s.log.Warn(ctx, "read pending profile failed", "kind", kind, "email", email, "error", err)
		return nil, false
	}
	if blob == nil {
		return nil, false
	}

	var p models.PendingProfile
	if err := json.Unmarshal(blob, &p); err != nil {
		s.log.Warn(ctx, "corrupt pending profile", "kind", kind, "email", email, "error", err)
		return nil, false
	}
	return &p, true
}

// Exists reports whether any kind of draft is staged for email.
func (s *Store) Exists(ctx context.Context, email string) bool {
	for _, kind := range models.ProfileKinds {
		if _, ok := s.Get(ctx, kind, email); ok {
			return true
		}
	}
	return false
}

// Consume hands the draft for (kind, email) to fn and deletes it once fn
// succeeds. A failing fn keeps the draft for a later attempt. found is
// false when there was nothing to consume.
func (s *Store) Consume(ctx context.Context, kind models.ProfileKind, email string,
	fn func(ctx context.Context, p *models.PendingProfile) error) (found bool, err error) {

	email = common.NormalizeEmail(email)
	k := key(kind, email)

	m := s.lock(k)
	m.Lock()
	defer m.Unlock()

	p, ok := s.Get(ctx, kind, email)
	if !ok {
		return false, nil
	}

	if err := fn(ctx, p); err != nil {
		return true, err
	}

	if err := s.kv.Delete(ctx, k); err != nil {
		// the backend enforces uniqueness, so a leftover draft replays as a conflict
		s.log.Warn(ctx, "delete consumed pending profile failed", "kind", kind, "email", email, "error", err)
	}
	return true, nil
}
