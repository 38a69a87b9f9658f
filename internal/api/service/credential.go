package service

import (
	"context"
	"errors"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/cryptox"
)

var ErrUnknownModel = errors.New("unknown_model")

// CredentialService manages factory router credentials. Passwords are
// reversibly encrypted at rest; decryption happens here and nowhere else.
type CredentialService struct {
	Store store.Store
	Box   *cryptox.SecretBox
}

// Lookup returns decrypted credentials for a provider's router model,
// ordered by priority. Unknown provider+model yields ErrUnknownModel.
func (s *CredentialService) Lookup(ctx context.Context, providerID int64, modelIdentifier string) ([]domain.CredentialItem, error) {
	model, err := s.Store.Providers().GetModel(ctx, providerID, modelIdentifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownModel
		}
		return nil, err
	}

	creds, err := s.Store.Credentials().ListByModel(ctx, model.ID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.CredentialItem, 0, len(creds))
	for _, c := range creds {
		password, err := s.Box.Open(c.PasswordEncrypted)
		if err != nil {
			// A row we can't decrypt means the store key changed under
			// us; surface it instead of silently returning garbage.
			return nil, err
		}
		items = append(items, domain.CredentialItem{
			Username: c.Username,
			Password: password,
		})
	}

	return items, nil
}

// ListForModel returns the stored credential rows for a model, passwords
// still encrypted. Admin inventory view; use Lookup for plaintext.
func (s *CredentialService) ListForModel(ctx context.Context, routerModelID int64) ([]domain.RouterCredential, error) {
	return s.Store.Credentials().ListByModel(ctx, routerModelID)
}

// Create encrypts the plaintext password and stores a credential for the
// model. SortOrder controls which credential provisioning tries first.
func (s *CredentialService) Create(ctx context.Context, routerModelID int64, username, password string, sortOrder int) (int64, error) {
	if username == "" || password == "" {
		return 0, ErrInvalidInput
	}

	sealed, err := s.Box.Seal(password)
	if err != nil {
		return 0, err
	}

	return s.Store.Credentials().CreateCredential(ctx, domain.RouterCredential{
		RouterModelID:     routerModelID,
		Username:          username,
		PasswordEncrypted: sealed,
		SortOrder:         sortOrder,
	})
}

// Delete removes a credential by id.
func (s *CredentialService) Delete(ctx context.Context, id int64) error {
	return s.Store.Credentials().DeleteCredential(ctx, id)
}
