package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/internal/api/store/drivers/sqlite"
	"github.com/routefleet/routerman/pkg/cryptox"
	"github.com/routefleet/routerman/pkg/jwtx"
)

var (
	testSecret = bytes.Repeat([]byte{0x01}, 32)
	testIssuer = "routerman-test"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "routerman-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestSigner(t *testing.T) jwtx.Signer {
	t.Helper()
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	return signer
}

func newTestVerifier(t *testing.T) jwtx.Verifier {
	t.Helper()
	v, err := jwtx.NewVerifierHS256(testSecret, testIssuer, jwtx.DefaultLeeway)
	require.NoError(t, err)
	return v
}

func newTestBox(t *testing.T) *cryptox.SecretBox {
	t.Helper()
	box, err := cryptox.NewSecretBox([]byte("unit-test-secret-store-key"))
	require.NoError(t, err)
	return box
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := &AuthService{Store: newTestStore(t), Signer: newTestSigner(t), Issuer: testIssuer}
	verifier := newTestVerifier(t)

	grant, err := auth.Register(ctx, "alice", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, grant.Token)

	claims, err := verifier.Verify(grant.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.NotEmpty(t, claims.Subject)

	_, err = auth.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	grant, err = auth.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	claims, err = verifier.Verify(grant.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)
}

func TestAuthServiceRegisterDevice(t *testing.T) {
	ctx := context.Background()
	auth := &AuthService{Store: newTestStore(t), Signer: newTestSigner(t), Issuer: testIssuer}

	grant, err := auth.RegisterDevice(ctx, "dev-abc")
	require.NoError(t, err)

	claims, err := newTestVerifier(t).Verify(grant.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeBootstrap, claims.Type)
	assert.Equal(t, "dev-abc", claims.DeviceID)
	assert.Empty(t, claims.Serial)

	remaining := claims.TimeRemaining(time.Now().UTC())
	assert.InDelta(t, jwtx.DefaultBootstrapTokenTTL, remaining, float64(time.Minute))

	_, err = auth.RegisterDevice(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIssueProviderTokenStoresOpaqueCopy(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TokenAdminService{Store: st, Signer: newTestSigner(t), Issuer: testIssuer}

	providerID, err := st.Providers().CreateProvider(ctx, "Acme ISP")
	require.NoError(t, err)

	grant, err := svc.IssueProviderToken(ctx, providerID, 30)
	require.NoError(t, err)
	require.NotNil(t, grant.ExpiresAt)

	// Signed view.
	claims, err := newTestVerifier(t).Verify(grant.Token)
	require.NoError(t, err)
	assert.Equal(t, providerID, claims.ProviderID)
	assert.Equal(t, domain.RoleProvider, claims.Role)

	// Opaque view: the same string is registered verbatim.
	rec, err := st.Tokens().GetByToken(ctx, grant.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.KindProvider, rec.Kind)
	assert.Equal(t, providerID, rec.ProviderID)

	// Re-issuing replaces the opaque row; the old token is revoked.
	second, err := svc.IssueProviderToken(ctx, providerID, 30)
	require.NoError(t, err)
	_, err = st.Tokens().GetByToken(ctx, grant.Token)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Tokens().GetByToken(ctx, second.Token)
	assert.NoError(t, err)

	_, err = svc.IssueProviderToken(ctx, 999, 30)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestIssueDeviceTokenClampsLifetime(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TokenAdminService{Store: st, Signer: newTestSigner(t), Issuer: testIssuer}

	grant, err := svc.IssueDeviceToken(ctx, "SN-44", 9999)
	require.NoError(t, err)
	require.NotNil(t, grant.ExpiresAt)

	maxExp := time.Now().UTC().Add(time.Duration(MaxTokenDays)*24*time.Hour + time.Minute)
	assert.True(t, grant.ExpiresAt.Before(maxExp), "lifetime must be clamped to %d days", MaxTokenDays)

	rec, err := st.Tokens().GetByToken(ctx, grant.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.KindDevice, rec.Kind)
	assert.Equal(t, "SN-44", rec.Serial)

	_, err = svc.IssueDeviceToken(ctx, "", 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCredentialRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	box := newTestBox(t)
	svc := &CredentialService{Store: st, Box: box}

	providerID, err := st.Providers().CreateProvider(ctx, "Acme ISP")
	require.NoError(t, err)
	modelID, err := st.Providers().CreateModel(ctx, domain.RouterModel{
		Name: "AX1000", Identifier: "AX1000", ProviderID: providerID,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, modelID, "root", "factory-pass", 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, modelID, "admin", "admin-pass", 0)
	require.NoError(t, err)

	items, err := svc.Lookup(ctx, providerID, "AX1000")
	require.NoError(t, err)
	require.Len(t, items, 2)
	// Ordered by sort order: "admin" (0) before "root" (1).
	assert.Equal(t, domain.CredentialItem{Username: "admin", Password: "admin-pass"}, items[0])
	assert.Equal(t, domain.CredentialItem{Username: "root", Password: "factory-pass"}, items[1])

	// Stored form is not plaintext.
	raw, err := st.Credentials().ListByModel(ctx, modelID)
	require.NoError(t, err)
	for _, c := range raw {
		assert.NotContains(t, c.PasswordEncrypted, "pass")
	}

	_, err = svc.Lookup(ctx, providerID, "NOPE")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestTelemetryReportCreatesDeviceLazily(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TelemetryService{Store: st}

	providerID, err := st.Providers().CreateProvider(ctx, "Acme ISP")
	require.NoError(t, err)
	_, err = st.Providers().CreateModel(ctx, domain.RouterModel{
		Name: "AX1000", Identifier: "AX1000", ProviderID: providerID,
	})
	require.NoError(t, err)

	report := TelemetryReport{
		Serial:          "SN-77",
		ProviderID:      providerID,
		ModelIdentifier: "AX1000",
		FirmwareVersion: "1.0.0",
		Uptime:          3600,
	}
	require.NoError(t, svc.Report(ctx, report))

	device, err := st.Devices().GetDeviceBySerial(ctx, "SN-77")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", device.FirmwareVersion)
	firstID := device.ID

	// Second report updates in place, id is stable.
	report.FirmwareVersion = "1.1.0"
	require.NoError(t, svc.Report(ctx, report))

	device, err = st.Devices().GetDeviceBySerial(ctx, "SN-77")
	require.NoError(t, err)
	assert.Equal(t, firstID, device.ID)
	assert.Equal(t, "1.1.0", device.FirmwareVersion)
}

func TestTelemetryUnknownModelIsDropped(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TelemetryService{Store: st}

	err := svc.Report(ctx, TelemetryReport{
		Serial: "SN-1", ProviderID: 12, ModelIdentifier: "GHOST",
	})
	require.NoError(t, err)

	_, err = st.Devices().GetDeviceBySerial(ctx, "SN-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateCheckSerialPrecedence(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UpdateService{Store: st}

	providerID, err := st.Providers().CreateProvider(ctx, "Acme ISP")
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.UpdatePackage{
		Name: "model wide", ProviderID: providerID,
		ModelIdentifier: "AX1000", Payload: `{"action":"upgrade"}`,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.UpdatePackage{
		Name: "pinned", ProviderID: providerID,
		ModelIdentifier: "AX1000", Serial: "SN-9", Payload: `{"action":"reset"}`,
	})
	require.NoError(t, err)

	pkg, err := svc.Check(ctx, providerID, "AX1000", "1.0.0", "SN-9")
	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.Equal(t, "pinned", pkg.Name)

	pkg, err = svc.Check(ctx, providerID, "AX1000", "1.0.0", "SN-OTHER")
	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.Equal(t, "model wide", pkg.Name)

	pkg, err = svc.Check(ctx, providerID, "GHOST", "1.0.0", "")
	require.NoError(t, err)
	assert.Nil(t, pkg)
}

func TestUpdateCheckSkipsMatchingFirmware(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UpdateService{Store: st}

	providerID, err := st.Providers().CreateProvider(ctx, "Acme ISP")
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.UpdatePackage{
		Name: "to 2.0", ProviderID: providerID, ModelIdentifier: "AX1000",
		FirmwareVersion: "2.0.0", Payload: `{"action":"upgrade"}`,
	})
	require.NoError(t, err)

	pkg, err := svc.Check(ctx, providerID, "AX1000", "2.0.0", "")
	require.NoError(t, err)
	assert.Nil(t, pkg, "device already on the target version")

	pkg, err = svc.Check(ctx, providerID, "AX1000", "1.5.0", "")
	require.NoError(t, err)
	require.NotNil(t, pkg)
}

func TestSeederIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	seeder := &Seeder{
		Store:           st,
		Box:             newTestBox(t),
		Logger:          discardLogger(),
		AdminPassword:   "s3cret-admin",
		GenericAppToken: "fixed-generic-token",
		SuperUserToken:  "fixed-super-token",
	}

	require.NoError(t, seeder.Seed(ctx))
	require.NoError(t, seeder.Seed(ctx))

	// Default provider, model and credential exist exactly once.
	providers, err := st.Providers().ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	models, err := st.Providers().ListModels(ctx, providers[0].ID)
	require.NoError(t, err)
	require.Len(t, models, 1)

	// Admin account works with the configured password.
	auth := &AuthService{Store: st, Signer: newTestSigner(t), Issuer: testIssuer}
	grant, err := auth.Login(ctx, DefaultAdminUsername, "s3cret-admin")
	require.NoError(t, err)
	claims, err := newTestVerifier(t).Verify(grant.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	// Fixed tokens are registered and non-expiring.
	rec, err := st.Tokens().GetByToken(ctx, "fixed-generic-token")
	require.NoError(t, err)
	assert.Equal(t, domain.KindDevice, rec.Kind)
	assert.Equal(t, domain.GenericSerial, rec.Serial)
	assert.Nil(t, rec.ExpiresAt)

	rec, err = st.Tokens().GetByToken(ctx, "fixed-super-token")
	require.NoError(t, err)
	assert.Equal(t, domain.KindUser, rec.Kind)
	assert.Nil(t, rec.ExpiresAt)
}

func TestSeederGeneratesTokensOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	seeder := &Seeder{Store: st, Box: newTestBox(t), Logger: discardLogger()}

	require.NoError(t, seeder.Seed(ctx))
	first, err := st.Tokens().GetDeviceToken(ctx, domain.GenericSerial)
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)

	// Re-seeding must not rotate the generated credential.
	require.NoError(t, seeder.Seed(ctx))
	second, err := st.Tokens().GetDeviceToken(ctx, domain.GenericSerial)
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
}

func TestHousekeepingCleansExpiredTokens(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, st.Tokens().UpsertDeviceToken(ctx, "SN-DEAD", "dead-token", &past))
	require.NoError(t, st.Tokens().UpsertDeviceToken(ctx, "SN-LIVE", "live-token", nil))

	hk := NewHousekeepingService(st, discardLogger(), time.Hour, time.Hour)
	hk.Start()
	hk.Stop()

	_, err := st.Tokens().GetByToken(ctx, "dead-token")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Tokens().GetByToken(ctx, "live-token")
	assert.NoError(t, err)
}
