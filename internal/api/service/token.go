package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/jwtx"
)

const (
	// MinTokenDays and MaxTokenDays bound admin-issued token lifetimes.
	// Requests outside the range are clamped, not rejected.
	MinTokenDays = 1
	MaxTokenDays = 365
)

var ErrUnknownProvider = errors.New("unknown_provider")

// TokenAdminService issues long-lived tokens for providers and devices on
// behalf of an administrator. The token is a signed JWT, but it is also
// stored verbatim in the opaque registry: after it expires (or if the
// signing secret rotates) the opaque path still accepts it, and deleting
// the row revokes it.
type TokenAdminService struct {
	Store  store.Store
	Signer jwtx.Signer
	Issuer string
}

// IssueProviderToken mints a token for a provider integration valid for the
// given number of days (clamped to 1..365) and registers it as the
// provider's single active opaque token.
func (s *TokenAdminService) IssueProviderToken(ctx context.Context, providerID int64, days int) (domain.TokenGrant, error) {
	provider, err := s.Store.Providers().GetProviderByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenGrant{}, ErrUnknownProvider
		}
		return domain.TokenGrant{}, err
	}

	now := time.Now().UTC()
	claims := jwtx.NewClaims(s.Issuer, ttlForDays(days), now)
	claims.Subject = "provider:" + strconv.FormatInt(provider.ID, 10)
	claims.Name = provider.Name
	claims.ProviderID = provider.ID
	claims.Role = domain.RoleProvider

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.TokenGrant{}, err
	}

	exp := claims.ExpiresAt.Time
	if err := s.Store.Tokens().UpsertProviderToken(ctx, provider.ID, token, &exp); err != nil {
		return domain.TokenGrant{}, err
	}

	return domain.TokenGrant{Token: token, ExpiresAt: &exp}, nil
}

// IssueDeviceToken mints a token bound to a device serial and registers it
// as the device's single active opaque token.
func (s *TokenAdminService) IssueDeviceToken(ctx context.Context, serial string, days int) (domain.TokenGrant, error) {
	if serial == "" {
		return domain.TokenGrant{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	claims := jwtx.NewClaims(s.Issuer, ttlForDays(days), now)
	claims.Subject = "device:" + serial
	claims.Serial = serial

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.TokenGrant{}, err
	}

	exp := claims.ExpiresAt.Time
	if err := s.Store.Tokens().UpsertDeviceToken(ctx, serial, token, &exp); err != nil {
		return domain.TokenGrant{}, err
	}

	return domain.TokenGrant{Token: token, ExpiresAt: &exp}, nil
}

func ttlForDays(days int) time.Duration {
	if days < MinTokenDays {
		days = MinTokenDays
	}
	if days > MaxTokenDays {
		days = MaxTokenDays
	}
	return time.Duration(days) * 24 * time.Hour
}
