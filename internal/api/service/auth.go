// Package service holds the application services behind the HTTP handlers:
// token issuance, credential lookup, telemetry ingestion, update checks,
// seeding and housekeeping. Services depend on store interfaces and the
// crypto packages, never on net/http.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/cryptox"
	"github.com/routefleet/routerman/pkg/jwtx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrInvalidInput       = errors.New("invalid_input")
)

// AuthService issues signed access tokens for human users and bootstrap
// tokens for unregistered devices. Signed tokens never touch the store.
type AuthService struct {
	Store        store.Store
	Signer       jwtx.Signer
	Issuer       string
	UserTTL      time.Duration // defaults to jwtx.DefaultUserTokenTTL
	BootstrapTTL time.Duration // defaults to jwtx.DefaultBootstrapTokenTTL
}

func (s *AuthService) userTTL() time.Duration {
	if s.UserTTL > 0 {
		return s.UserTTL
	}
	return jwtx.DefaultUserTokenTTL
}

func (s *AuthService) bootstrapTTL() time.Duration {
	if s.BootstrapTTL > 0 {
		return s.BootstrapTTL
	}
	return jwtx.DefaultBootstrapTokenTTL
}

// Register creates a user and returns a signed token for it. New users get
// RoleUser; the only admin is the seeded one.
func (s *AuthService) Register(ctx context.Context, username, password string) (domain.TokenGrant, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.TokenGrant{}, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.TokenGrant{}, err
	}

	id, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.TokenGrant{}, ErrUsernameTaken
		}
		return domain.TokenGrant{}, err
	}

	return s.signUser(domain.User{ID: id, Username: username, Role: domain.RoleUser})
}

// Login verifies credentials and returns a fresh signed token. Unknown user
// and bad password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenGrant, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenGrant{}, ErrInvalidCredentials
		}
		return domain.TokenGrant{}, err
	}

	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		return domain.TokenGrant{}, ErrInvalidCredentials
	}

	return s.signUser(user)
}

func (s *AuthService) signUser(user domain.User) (domain.TokenGrant, error) {
	now := time.Now().UTC()
	claims := jwtx.NewClaims(s.Issuer, s.userTTL(), now)
	claims.Subject = strconv.FormatInt(user.ID, 10)
	claims.Name = user.Username
	claims.Role = user.Role

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.TokenGrant{}, err
	}

	exp := claims.ExpiresAt.Time
	return domain.TokenGrant{Token: token, ExpiresAt: &exp}, nil
}

// RegisterDevice issues a short-lived bootstrap token for a device that does
// not yet have a serial assigned. The token carries the self-reported device
// id and type=bootstrap; the provisioning policies key off the type.
func (s *AuthService) RegisterDevice(ctx context.Context, deviceID string) (domain.TokenGrant, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return domain.TokenGrant{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	claims := jwtx.NewClaims(s.Issuer, s.bootstrapTTL(), now)
	claims.DeviceID = deviceID
	claims.Type = domain.TypeBootstrap

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.TokenGrant{}, err
	}

	exp := claims.ExpiresAt.Time
	return domain.TokenGrant{Token: token, ExpiresAt: &exp}, nil
}
