package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	users := s.Users()

	empty, err := users.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	id, err := users.CreateUser(ctx, domain.User{
		Username:     "admin@local",
		PasswordHash: "$argon2id$dummy",
		Role:         domain.RoleAdmin,
	})
	require.NoError(t, err)
	require.Positive(t, id)

	_, err = users.CreateUser(ctx, domain.User{Username: "admin@local", PasswordHash: "x", Role: domain.RoleUser})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := users.GetUserByUsername(ctx, "admin@local")
	require.NoError(t, err)
	require.Equal(t, id, got.ID)
	require.Equal(t, domain.RoleAdmin, got.Role)

	byID, err := users.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, got, byID)

	_, err = users.GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestProvidersAndModels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	providers := s.Providers()

	pid, err := providers.CreateProvider(ctx, "Default ISP")
	require.NoError(t, err)

	_, err = providers.CreateProvider(ctx, "Default ISP")
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	mid, err := providers.CreateModel(ctx, domain.RouterModel{
		Name: "AX1000", Identifier: "AX1000", ProviderID: pid,
	})
	require.NoError(t, err)

	m, err := providers.GetModel(ctx, pid, "AX1000")
	require.NoError(t, err)
	require.Equal(t, mid, m.ID)

	_, err = providers.GetModel(ctx, pid, "NOPE")
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := providers.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Default ISP", list[0].Name)

	models, err := providers.ListModels(ctx, pid)
	require.NoError(t, err)
	require.Len(t, models, 1)
}

func TestCredentialsRepoOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pid, err := s.Providers().CreateProvider(ctx, "ISP")
	require.NoError(t, err)
	mid, err := s.Providers().CreateModel(ctx, domain.RouterModel{
		Name: "AX1000", Identifier: "AX1000", ProviderID: pid,
	})
	require.NoError(t, err)

	creds := s.Credentials()
	_, err = creds.CreateCredential(ctx, domain.RouterCredential{
		RouterModelID: mid, Username: "backup", PasswordEncrypted: "enc2", SortOrder: 2,
	})
	require.NoError(t, err)
	_, err = creds.CreateCredential(ctx, domain.RouterCredential{
		RouterModelID: mid, Username: "admin", PasswordEncrypted: "enc1", SortOrder: 1,
	})
	require.NoError(t, err)

	list, err := creds.ListByModel(ctx, mid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "admin", list[0].Username)
	require.Equal(t, "backup", list[1].Username)
}

func TestDevicesRepoUpsertAndTelemetry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pid, err := s.Providers().CreateProvider(ctx, "ISP")
	require.NoError(t, err)
	mid, err := s.Providers().CreateModel(ctx, domain.RouterModel{
		Name: "AX1000", Identifier: "AX1000", ProviderID: pid,
	})
	require.NoError(t, err)

	devices := s.Devices()
	first := domain.Device{
		ID: "01J0000000000000000000DEV1", Serial: "SN1",
		FirmwareVersion: "1.0.0", RouterModelID: mid,
		LastSeen: time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, devices.UpsertDevice(ctx, first))

	// Second upsert for the same serial keeps the original id but
	// refreshes firmware and last_seen.
	second := first
	second.ID = "01J0000000000000000000DEV2"
	second.FirmwareVersion = "1.1.0"
	second.LastSeen = time.Now().UTC()
	require.NoError(t, devices.UpsertDevice(ctx, second))

	got, err := devices.GetDeviceBySerial(ctx, "SN1")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, "1.1.0", got.FirmwareVersion)

	require.NoError(t, devices.AppendTelemetry(ctx, domain.TelemetryLog{
		DeviceID: got.ID, ReportedAt: time.Now().UTC(),
		Uptime: 3600, CPUUsage: 12.5, MemoryUsage: 40.0, ConnectedClients: 3,
	}))

	require.NoError(t, devices.DeleteTelemetryBefore(ctx, time.Now().UTC().Add(-24*time.Hour)))
}

func TestUpdatesRepoSerialAndModelLookups(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	updates := s.Updates()

	_, err := updates.CreateUpdate(ctx, domain.UpdatePackage{
		Name: "fleet-wide", ProviderID: 1, ModelIdentifier: "AX1000", Payload: `{"v":"2.0"}`,
	})
	require.NoError(t, err)
	_, err = updates.CreateUpdate(ctx, domain.UpdatePackage{
		Name: "pinned", ProviderID: 1, ModelIdentifier: "AX1000", Serial: "SN1", Payload: `{"v":"2.1"}`,
	})
	require.NoError(t, err)

	bySerial, err := updates.GetBySerial(ctx, "SN1")
	require.NoError(t, err)
	require.Equal(t, "pinned", bySerial.Name)

	byModel, err := updates.GetByModel(ctx, 1, "AX1000")
	require.NoError(t, err)
	require.Equal(t, "fleet-wide", byModel.Name)

	_, err = updates.GetBySerial(ctx, "SN2")
	require.ErrorIs(t, err, store.ErrNotFound)
}
