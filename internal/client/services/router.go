package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eduxperience/eduxperience/internal/client/backend"
	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/client/pending"
	"github.com/eduxperience/eduxperience/internal/logging"
)

// Navigator moves the user interface to a destination view.
type Navigator interface {
	Navigate(ctx context.Context, to models.Destination) error
}

// RouteReport describes what ResolveAndNavigate did.
type RouteReport struct {
	Role        models.Role
	Destination models.Destination
	Navigated   bool

	// Materialized lists profiles created (or found already created) on the
	// backend from staged drafts.
	Materialized []models.ProfileKind
	// Failures holds one ErrProfileMaterializationFailed per draft that could
	// not be created. They never affect navigation.
	Failures []error
}

type Router struct {
	client  backend.Client
	pending *pending.Store
	nav     Navigator
	log     logging.Logger
}

func NewRouter(client backend.Client, pending *pending.Store, nav Navigator, log logging.Logger) *Router {
	return &Router{client: client, pending: pending, nav: nav, log: log.With("module", "router")}
}

// ResolveAndNavigate fetches the identity's role and navigates to its
// dashboard while, independently, materialising any staged profiles of a
// confirmed identity. It returns once both are done. The returned error
// concerns navigation only.
func (r *Router) ResolveAndNavigate(ctx context.Context, id *models.Identity) (*RouteReport, error) {
	if id == nil {
		return &RouteReport{}, ErrNotSignedIn
	}

	report := &RouteReport{}
	var navErr error

	var g errgroup.Group
	g.Go(func() error {
		navErr = r.navigate(ctx, id, report)
		return nil
	})
	g.Go(func() error {
		report.Materialized, report.Failures = r.materialize(ctx, id)
		return nil
	})
	_ = g.Wait()

	return report, navErr
}

func (r *Router) navigate(ctx context.Context, id *models.Identity, report *RouteReport) error {
	role, err := r.client.GetRole(ctx, id.AccessToken, id.ID)
	if err != nil {
		r.log.Warn(ctx, "role lookup failed", "user_id", id.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrUnknownRole, err)
	}
	report.Role = role

	dest, ok := models.DestinationFor(role)
	if !ok {
		r.log.Warn(ctx, "unrecognised role", "user_id", id.ID, "role", role)
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	if err := r.nav.Navigate(ctx, dest); err != nil {
		return fmt.Errorf("navigate to %s: %w", dest, err)
	}
	report.Destination = dest
	report.Navigated = true
	return nil
}

// materialize creates every staged profile of a confirmed identity, one
// goroutine per kind. Each draft is consumed at most once; a conflict means
// the profile already exists and counts as success.
func (r *Router) materialize(ctx context.Context, id *models.Identity) ([]models.ProfileKind, []error) {
	if !id.EmailConfirmed() {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		done     []models.ProfileKind
		failures []error
		g        errgroup.Group
	)

	for _, kind := range models.ProfileKinds {
		g.Go(func() error {
			found, err := r.pending.Consume(ctx, kind, id.Email, func(ctx context.Context, p *models.PendingProfile) error {
				err := r.client.CreateProfile(ctx, id.AccessToken, kind, id.ID, p.Payload)
				if errors.Is(err, backend.ErrConflict) {
					r.log.Info(ctx, "profile already exists", "kind", kind, "user_id", id.ID)
					return nil
				}
				return err
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				err = fmt.Errorf("%w: %s: %w", ErrProfileMaterializationFailed, kind, err)
				r.log.Error(ctx, "profile materialization failed", "kind", kind, "user_id", id.ID, "error", err)
				failures = append(failures, err)
			case found:
				r.log.Info(ctx, "profile materialized", "kind", kind, "user_id", id.ID)
				done = append(done, kind)
			}
			return nil
		})
	}
	_ = g.Wait()

	return done, failures
}
