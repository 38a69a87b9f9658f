package service

import (
	"context"
	"strings"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
)

// ProviderService is thin CRUD over providers and their router models.
type ProviderService struct {
	Store store.Store
}

func (s *ProviderService) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	return s.Store.Providers().ListProviders(ctx)
}

func (s *ProviderService) CreateProvider(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidInput
	}
	return s.Store.Providers().CreateProvider(ctx, name)
}

func (s *ProviderService) ListModels(ctx context.Context, providerID int64) ([]domain.RouterModel, error) {
	return s.Store.Providers().ListModels(ctx, providerID)
}

func (s *ProviderService) CreateModel(ctx context.Context, m domain.RouterModel) (int64, error) {
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Identifier) == "" {
		return 0, ErrInvalidInput
	}
	return s.Store.Providers().CreateModel(ctx, m)
}
