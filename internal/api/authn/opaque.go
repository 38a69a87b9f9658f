package authn

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
)

// OpaqueStrategy authenticates tokens by verbatim lookup in the opaque token
// registry. These tokens are deliberately not self-contained so deleting the
// row revokes them, which signed tokens can't offer.
type OpaqueStrategy struct {
	Tokens store.Tokens
}

func (s *OpaqueStrategy) Name() string { return "opaque" }

func (s *OpaqueStrategy) Authenticate(
	ctx context.Context,
	token string,
) (*domain.Identity, error) {
	rec, err := s.Tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if rec.Expired(time.Now().UTC()) {
		return nil, nil
	}

	cs, err := claimSetFromRecord(rec)
	if err != nil {
		return nil, err
	}

	return &domain.Identity{Scheme: domain.SchemeOpaque, Claims: cs}, nil
}

// claimSetFromRecord derives claims from a stored token row. The switch over
// Kind is exhaustive over the closed set; a row that derives nothing fails
// with ErrUnsupportedTokenKind rather than authenticating an empty identity.
func claimSetFromRecord(rec domain.TokenRecord) (domain.ClaimSet, error) {
	var cs domain.ClaimSet

	switch rec.Kind {
	case domain.KindDevice:
		if strings.EqualFold(rec.Serial, domain.GenericSerial) {
			// Shared bootstrap credential, not a specific device.
			cs.Type = domain.TypeGeneric
		} else if rec.Serial != "" {
			cs.Serial = rec.Serial
		}
	case domain.KindProvider:
		if rec.ProviderID > 0 {
			cs.ProviderID = rec.ProviderID
			cs.Role = domain.RoleProvider
		}
	case domain.KindUser:
		// Opaque user tokens are reserved for the fixed super-admin
		// bootstrap case; they always map to Admin.
		if rec.UserID > 0 {
			cs.UserID = rec.UserID
			cs.Role = domain.RoleAdmin
		}
	}

	if cs.IsZero() {
		return domain.ClaimSet{}, ErrUnsupportedTokenKind
	}
	return cs, nil
}
