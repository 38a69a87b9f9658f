// Package authn implements request authentication for the fleet API: an
// ordered chain of strategies producing a unified identity, and the named
// policies evaluated against it.
package authn

import (
	"context"
	"errors"
	"strings"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/pkg/slogx"
)

// ErrUnsupportedTokenKind reports an opaque token row that derived no
// claims. The row exists but can't represent an identity.
var ErrUnsupportedTokenKind = errors.New("authn: unsupported token kind")

// Strategy is one way of turning a raw bearer token into an identity.
//
// The tri-state contract: (identity, nil) on success, (nil, nil) when the
// strategy does not apply to this token, and (nil, err) on an internal
// failure. The resolver logs errors and treats them as "did not
// authenticate"; a broken store must never surface as a 500 with internals
// attached.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// Resolver runs strategies in a fixed order and returns the first identity
// produced. Order matters: the signed strategy comes first because it is
// pure CPU and the common case; the opaque strategy is the fallback for
// long-lived revocable tokens and costs a store round trip.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Authenticate resolves an Authorization header value to an identity, or nil
// when the request is unauthenticated. Absence of credentials is a valid
// no-result, not an error.
func (r *Resolver) Authenticate(ctx context.Context, headerValue string) *domain.Identity {
	token := stripBearer(headerValue)
	if token == "" {
		return nil
	}

	log := slogx.FromContext(ctx)
	for _, s := range r.strategies {
		identity, err := s.Authenticate(ctx, token)
		if err != nil {
			log.Warn("authentication strategy failed", "strategy", s.Name(), "err", err)
			continue
		}
		if identity != nil {
			return identity
		}
	}

	return nil
}

// stripBearer removes an optional "Bearer " prefix (case-insensitive) and
// surrounding whitespace.
func stripBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 7 && strings.EqualFold(v[:7], "Bearer ") {
		v = v[7:]
	}
	return strings.TrimSpace(v)
}
