package service

import (
	"context"
	"errors"
	"strings"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/cryptox"
)

var ErrDuplicateSerial = errors.New("duplicate_serial")

// RouterProfileService manages per-user saved router profiles. Every
// user-facing operation is scoped to the owning user id; the Admin
// methods bypass ownership for fleet-wide maintenance.
type RouterProfileService struct {
	Store store.Store
}

// ProfileInput carries the user-editable fields of a profile. Password is
// plaintext here and hashed before it reaches the store.
type ProfileInput struct {
	IP       string
	Username string
	Password string
	Serial   string
	Model    string
}

func (in *ProfileInput) normalize() {
	in.IP = strings.TrimSpace(in.IP)
	in.Username = strings.TrimSpace(in.Username)
	in.Serial = strings.TrimSpace(in.Serial)
	in.Model = strings.TrimSpace(in.Model)
}

// Create stores a new profile for the user. The serial must be unique
// within that user's profiles; a clash yields ErrDuplicateSerial.
func (s *RouterProfileService) Create(ctx context.Context, userID int64, in ProfileInput) (domain.RouterProfile, error) {
	in.normalize()
	if in.IP == "" || in.Username == "" || in.Password == "" || in.Serial == "" {
		return domain.RouterProfile{}, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.RouterProfile{}, err
	}

	p := domain.RouterProfile{
		UserID:       userID,
		IP:           in.IP,
		Username:     in.Username,
		PasswordHash: hash,
		Serial:       in.Serial,
		Model:        in.Model,
	}

	id, err := s.Store.Profiles().CreateProfile(ctx, p)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.RouterProfile{}, ErrDuplicateSerial
		}
		return domain.RouterProfile{}, err
	}

	return s.Store.Profiles().GetProfile(ctx, id, userID)
}

// List returns the user's profiles, newest first.
func (s *RouterProfileService) List(ctx context.Context, userID int64) ([]domain.RouterProfile, error) {
	return s.Store.Profiles().ListByUser(ctx, userID)
}

// Get returns a single profile owned by the user, or store.ErrNotFound
// when the id doesn't exist or belongs to someone else.
func (s *RouterProfileService) Get(ctx context.Context, id, userID int64) (domain.RouterProfile, error) {
	return s.Store.Profiles().GetProfile(ctx, id, userID)
}

// Update replaces a profile's fields. An empty Password keeps the stored
// hash; a non-empty one is re-hashed.
func (s *RouterProfileService) Update(ctx context.Context, id, userID int64, in ProfileInput) error {
	in.normalize()
	if in.IP == "" || in.Username == "" || in.Serial == "" {
		return ErrInvalidInput
	}

	current, err := s.Store.Profiles().GetProfile(ctx, id, userID)
	if err != nil {
		return err
	}

	hash := current.PasswordHash
	if in.Password != "" {
		hash, err = cryptox.HashPassword(in.Password)
		if err != nil {
			return err
		}
	}

	err = s.Store.Profiles().UpdateProfile(ctx, domain.RouterProfile{
		ID:           id,
		UserID:       userID,
		IP:           in.IP,
		Username:     in.Username,
		PasswordHash: hash,
		Serial:       in.Serial,
		Model:        in.Model,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrDuplicateSerial
	}
	return err
}

// Delete removes a profile owned by the user.
func (s *RouterProfileService) Delete(ctx context.Context, id, userID int64) error {
	return s.Store.Profiles().DeleteProfile(ctx, id, userID)
}

// AdminList returns every profile in the system, newest first.
func (s *RouterProfileService) AdminList(ctx context.Context) ([]domain.RouterProfile, error) {
	return s.Store.Profiles().ListAll(ctx)
}

// AdminDelete removes any profile regardless of owner.
func (s *RouterProfileService) AdminDelete(ctx context.Context, id int64) error {
	return s.Store.Profiles().DeleteAny(ctx, id)
}
