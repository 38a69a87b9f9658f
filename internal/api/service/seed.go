package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/cryptox"
)

// Defaults created on an empty database.
const (
	seedProviderName    = "Default Provider"
	seedModelName       = "Generic Router"
	seedModelIdentifier = "GENERIC"
	seedCredentialUser  = "admin"

	// DefaultAdminUsername is the seeded administrator account name unless
	// overridden by configuration.
	DefaultAdminUsername = "admin"
)

// Seeder populates an empty database with the fixtures the system needs to
// be usable: a default provider/model/credential, the administrator
// account, and the two fixed opaque tokens (GENERIC_APP device credential
// and the super-admin token). Safe to run on every startup.
type Seeder struct {
	Store  store.Store
	Box    *cryptox.SecretBox
	Logger *slog.Logger

	AdminUsername string
	AdminPassword string // generated when empty

	// Fixed token values from configuration. When empty a random token is
	// generated on first seed; existing rows are never replaced.
	GenericAppToken string
	SuperUserToken  string
}

// Seed runs all seeding steps. Each step is individually idempotent.
func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.seedProvider(ctx); err != nil {
		return fmt.Errorf("seed provider: %w", err)
	}

	adminID, created, err := s.seedAdmin(ctx)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if err := s.seedGenericToken(ctx); err != nil {
		return fmt.Errorf("seed generic token: %w", err)
	}

	// Generated super-user tokens are written once, on the startup that
	// created the admin. A configured fixed value is re-applied every
	// start so operators can rotate it from config.
	if adminID != 0 && (created || s.SuperUserToken != "") {
		if err := s.seedSuperUserToken(ctx, adminID); err != nil {
			return fmt.Errorf("seed super user token: %w", err)
		}
	}

	return nil
}

func (s *Seeder) seedProvider(ctx context.Context) error {
	empty, err := s.Store.Providers().IsEmpty(ctx)
	if err != nil || !empty {
		return err
	}

	providerID, err := s.Store.Providers().CreateProvider(ctx, seedProviderName)
	if err != nil {
		return err
	}

	modelID, err := s.Store.Providers().CreateModel(ctx, domain.RouterModel{
		Name:       seedModelName,
		Identifier: seedModelIdentifier,
		ProviderID: providerID,
	})
	if err != nil {
		return err
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return err
	}
	sealed, err := s.Box.Seal(password)
	if err != nil {
		return err
	}

	_, err = s.Store.Credentials().CreateCredential(ctx, domain.RouterCredential{
		RouterModelID:     modelID,
		Username:          seedCredentialUser,
		PasswordEncrypted: sealed,
		SortOrder:         0,
	})
	if err != nil {
		return err
	}

	s.Logger.Info("seeded default provider",
		"provider", seedProviderName, "model", seedModelIdentifier)
	return nil
}

// seedAdmin creates the administrator on an empty user table. When users
// already exist it resolves the configured admin account instead, so a
// configured super-user token can still be re-applied. Returns the admin id
// (0 when absent) and whether the account was created this run.
func (s *Seeder) seedAdmin(ctx context.Context) (int64, bool, error) {
	username := s.AdminUsername
	if username == "" {
		username = DefaultAdminUsername
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return 0, false, err
	}

	if !empty {
		user, err := s.Store.Users().GetUserByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return 0, false, nil
		}
		return user.ID, false, err
	}

	password := s.AdminPassword
	generated := password == ""
	if generated {
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return 0, false, err
		}
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return 0, false, err
	}

	id, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		return 0, false, err
	}

	if generated {
		// One-time disclosure; there is no other way to recover it.
		s.Logger.Warn("seeded admin user with generated password",
			"username", username, "password", password)
	} else {
		s.Logger.Info("seeded admin user", "username", username)
	}

	return id, true, nil
}

func (s *Seeder) seedGenericToken(ctx context.Context) error {
	token := s.GenericAppToken

	if token == "" {
		_, err := s.Store.Tokens().GetDeviceToken(ctx, domain.GenericSerial)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		token, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}
	}

	// Non-expiring; the app credential is rotated by reseeding with a new
	// configured value.
	if err := s.Store.Tokens().UpsertDeviceToken(ctx, domain.GenericSerial, token, nil); err != nil {
		return err
	}

	s.Logger.Info("seeded generic app token", "fixed", s.GenericAppToken != "")
	return nil
}

func (s *Seeder) seedSuperUserToken(ctx context.Context, adminID int64) error {
	token := s.SuperUserToken

	if token == "" {
		var err error
		token, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}
	}

	if err := s.Store.Tokens().UpsertUserToken(ctx, adminID, token, nil); err != nil {
		return err
	}

	s.Logger.Info("seeded super user token", "fixed", s.SuperUserToken != "")
	return nil
}
