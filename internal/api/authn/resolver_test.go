package authn

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/jwtx"
)

// fakeTokens is an in-memory store.Tokens that counts lookups, so tests can
// assert the signed path never hits the database.
type fakeTokens struct {
	records map[string]domain.TokenRecord
	lookups int
	err     error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{records: make(map[string]domain.TokenRecord)}
}

func (f *fakeTokens) GetByToken(_ context.Context, token string) (domain.TokenRecord, error) {
	f.lookups++
	if f.err != nil {
		return domain.TokenRecord{}, f.err
	}
	rec, ok := f.records[token]
	if !ok {
		return domain.TokenRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (f *fakeTokens) UpsertDeviceToken(context.Context, string, string, *time.Time) error {
	return nil
}

func (f *fakeTokens) UpsertProviderToken(context.Context, int64, string, *time.Time) error {
	return nil
}

func (f *fakeTokens) UpsertUserToken(context.Context, int64, string, *time.Time) error {
	return nil
}

func (f *fakeTokens) GetDeviceToken(context.Context, string) (domain.TokenGrant, error) {
	return domain.TokenGrant{}, store.ErrNotFound
}

func (f *fakeTokens) DeleteExpired(context.Context) error { return nil }

var testSecret = bytes.Repeat([]byte{0x42}, 32)

func jwtxNumericDate(t time.Time) *jwt.NumericDate { return jwt.NewNumericDate(t) }

const testIssuer = "RM"

func newTestResolver(t *testing.T, tokens store.Tokens) *Resolver {
	t.Helper()

	verifier, err := jwtx.NewVerifierHS256(testSecret, testIssuer, jwtx.DefaultLeeway)
	require.NoError(t, err)

	return NewResolver(
		&SignedStrategy{Verifier: verifier},
		&OpaqueStrategy{Tokens: tokens},
	)
}

func signTestToken(t *testing.T, mutate func(*jwtx.Claims)) string {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	claims := jwtx.NewClaims(testIssuer, time.Hour, time.Now().UTC())
	if mutate != nil {
		mutate(&claims)
	}

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestResolverSignedPathSkipsStore(t *testing.T) {
	tokens := newFakeTokens()
	resolver := newTestResolver(t, tokens)

	token := signTestToken(t, func(c *jwtx.Claims) {
		c.Serial = "SN-100"
	})

	identity := resolver.Authenticate(context.Background(), "Bearer "+token)

	require.NotNil(t, identity)
	assert.Equal(t, domain.SchemeSigned, identity.Scheme)
	assert.Equal(t, "SN-100", identity.Claims.Serial)
	assert.Zero(t, tokens.lookups, "signed authentication must not query the token store")
}

func TestResolverExpiredSignedFallsThroughToOpaque(t *testing.T) {
	tokens := newFakeTokens()
	resolver := newTestResolver(t, tokens)

	stale := signTestToken(t, func(c *jwtx.Claims) {
		past := time.Now().UTC().Add(-48 * time.Hour)
		c.IssuedAt = jwtxNumericDate(past)
		c.NotBefore = jwtxNumericDate(past)
		c.ExpiresAt = jwtxNumericDate(past.Add(time.Hour))
		c.Serial = "SN-STALE"
	})

	// The same string doubles as an opaque token: stored verbatim.
	tokens.records[stale] = domain.TokenRecord{
		Kind:   domain.KindDevice,
		Serial: "SN-STALE",
	}

	identity := resolver.Authenticate(context.Background(), "Bearer "+stale)

	require.NotNil(t, identity)
	assert.Equal(t, domain.SchemeOpaque, identity.Scheme)
	assert.Equal(t, "SN-STALE", identity.Claims.Serial)
	assert.Equal(t, 1, tokens.lookups)
}

func TestResolverUnknownTokenIsAnonymous(t *testing.T) {
	tokens := newFakeTokens()
	resolver := newTestResolver(t, tokens)

	assert.Nil(t, resolver.Authenticate(context.Background(), "Bearer nope"))
	assert.Equal(t, 1, tokens.lookups)
}

func TestResolverEmptyHeader(t *testing.T) {
	tokens := newFakeTokens()
	resolver := newTestResolver(t, tokens)

	assert.Nil(t, resolver.Authenticate(context.Background(), ""))
	assert.Nil(t, resolver.Authenticate(context.Background(), "Bearer "))
	assert.Nil(t, resolver.Authenticate(context.Background(), "   "))
	assert.Zero(t, tokens.lookups)
}

func TestResolverStoreErrorIsUnauthenticated(t *testing.T) {
	tokens := newFakeTokens()
	tokens.err = errors.New("disk on fire")
	resolver := newTestResolver(t, tokens)

	assert.Nil(t, resolver.Authenticate(context.Background(), "Bearer whatever"))
}

func TestResolverBearerPrefixIsOptionalAndCaseInsensitive(t *testing.T) {
	tokens := newFakeTokens()
	tokens.records["raw-token"] = domain.TokenRecord{
		Kind:   domain.KindDevice,
		Serial: "SN-7",
	}
	resolver := newTestResolver(t, tokens)

	for _, header := range []string{"raw-token", "Bearer raw-token", "bearer raw-token"} {
		identity := resolver.Authenticate(context.Background(), header)
		require.NotNil(t, identity, header)
		assert.Equal(t, "SN-7", identity.Claims.Serial)
	}
}

func TestOpaqueExpiredRecordDoesNotAuthenticate(t *testing.T) {
	tokens := newFakeTokens()
	past := time.Now().UTC().Add(-time.Minute)
	tokens.records["old"] = domain.TokenRecord{
		Kind:      domain.KindDevice,
		Serial:    "SN-OLD",
		ExpiresAt: &past,
	}
	resolver := newTestResolver(t, tokens)

	assert.Nil(t, resolver.Authenticate(context.Background(), "Bearer old"))
}

func TestOpaqueClaimDerivation(t *testing.T) {
	cases := []struct {
		name   string
		record domain.TokenRecord
		want   domain.ClaimSet
	}{
		{
			name:   "generic app token carries type not serial",
			record: domain.TokenRecord{Kind: domain.KindDevice, Serial: domain.GenericSerial},
			want:   domain.ClaimSet{Type: domain.TypeGeneric},
		},
		{
			name:   "device token carries serial",
			record: domain.TokenRecord{Kind: domain.KindDevice, Serial: "SN-1"},
			want:   domain.ClaimSet{Serial: "SN-1"},
		},
		{
			name:   "provider token",
			record: domain.TokenRecord{Kind: domain.KindProvider, ProviderID: 9},
			want:   domain.ClaimSet{ProviderID: 9, Role: domain.RoleProvider},
		},
		{
			name:   "user token maps to admin",
			record: domain.TokenRecord{Kind: domain.KindUser, UserID: 3},
			want:   domain.ClaimSet{UserID: 3, Role: domain.RoleAdmin},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := claimSetFromRecord(tc.record)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOpaqueEmptyDerivationFails(t *testing.T) {
	for _, rec := range []domain.TokenRecord{
		{Kind: domain.KindDevice},
		{Kind: domain.KindProvider},
		{Kind: domain.KindUser},
		{Kind: domain.Kind("mystery")},
	} {
		_, err := claimSetFromRecord(rec)
		assert.ErrorIs(t, err, ErrUnsupportedTokenKind, string(rec.Kind))
	}
}
