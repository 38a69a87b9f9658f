package store

import (
	"context"
	"errors"
	"time"

	"github.com/routefleet/routerman/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Tokens() Tokens
	Users() Users
	Providers() Providers
	Credentials() Credentials
	Devices() Devices
	Updates() Updates
	Profiles() Profiles

	// ApplyMigrations brings the schema up to date. Idempotent; safe to
	// call on every startup.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tokens is the opaque-token registry. Upserts guarantee a single active
// token per (kind, identity); serialization relies on the partial unique
// indexes, no application-level locking.
type Tokens interface {
	// UpsertDeviceToken replaces the active token for a device serial.
	UpsertDeviceToken(ctx context.Context, serial, token string, expiresAt *time.Time) error

	// UpsertProviderToken replaces the active token for a provider.
	UpsertProviderToken(ctx context.Context, providerID int64, token string, expiresAt *time.Time) error

	// UpsertUserToken replaces the active token for a user. Used only for
	// the fixed super-admin bootstrap case.
	UpsertUserToken(ctx context.Context, userID int64, token string, expiresAt *time.Time) error

	// GetDeviceToken returns the active token for a device serial or
	// ErrNotFound.
	GetDeviceToken(ctx context.Context, serial string) (domain.TokenGrant, error)

	// GetByToken looks up a row by its verbatim token value. This is the
	// opaque authentication path.
	GetByToken(ctx context.Context, token string) (domain.TokenRecord, error)

	// DeleteExpired removes rows whose expiry has passed (housekeeping).
	DeleteExpired(ctx context.Context) error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user and returns the assigned id.
	// Duplicate usernames yield ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// IsEmpty returns true if there are no users (seed gate).
	IsEmpty(ctx context.Context) (bool, error)
}

type Providers interface {
	GetProviderByID(ctx context.Context, id int64) (domain.Provider, error)
	ListProviders(ctx context.Context) ([]domain.Provider, error)
	CreateProvider(ctx context.Context, name string) (int64, error)

	// GetModel resolves a router model by provider and identifier.
	GetModel(ctx context.Context, providerID int64, identifier string) (domain.RouterModel, error)
	ListModels(ctx context.Context, providerID int64) ([]domain.RouterModel, error)
	CreateModel(ctx context.Context, m domain.RouterModel) (int64, error)

	// IsEmpty returns true if there are no providers (seed gate).
	IsEmpty(ctx context.Context) (bool, error)
}

type Credentials interface {
	// ListByModel returns credentials for a router model ordered by
	// sort_order (smaller first). Passwords are still encrypted.
	ListByModel(ctx context.Context, routerModelID int64) ([]domain.RouterCredential, error)

	CreateCredential(ctx context.Context, c domain.RouterCredential) (int64, error)
	DeleteCredential(ctx context.Context, id int64) error
}

type Devices interface {
	GetDeviceBySerial(ctx context.Context, serial string) (domain.Device, error)

	// UpsertDevice inserts the device or, when the serial already exists,
	// refreshes firmware_version and last_seen.
	UpsertDevice(ctx context.Context, d domain.Device) error

	// AppendTelemetry stores one telemetry report.
	AppendTelemetry(ctx context.Context, log domain.TelemetryLog) error

	// DeleteTelemetryBefore trims telemetry older than the cutoff
	// (housekeeping).
	DeleteTelemetryBefore(ctx context.Context, cutoff time.Time) error
}

// Profiles stores user-owned router profiles. Ownership is enforced here:
// the per-user read/write methods take the owner id and never touch another
// user's rows. The admin methods are the only unscoped ones.
type Profiles interface {
	// ListByUser returns the user's profiles, newest first.
	ListByUser(ctx context.Context, userID int64) ([]domain.RouterProfile, error)
	// GetProfile resolves a profile by id for its owner or ErrNotFound.
	GetProfile(ctx context.Context, id, userID int64) (domain.RouterProfile, error)
	// CreateProfile inserts a profile. A duplicate serial for the same
	// owner yields ErrAlreadyExists.
	CreateProfile(ctx context.Context, p domain.RouterProfile) (int64, error)
	// UpdateProfile rewrites an owned profile in place, ErrNotFound when
	// the row doesn't exist or belongs to someone else.
	UpdateProfile(ctx context.Context, p domain.RouterProfile) error
	// DeleteProfile removes an owned profile, ErrNotFound as above.
	DeleteProfile(ctx context.Context, id, userID int64) error
	// ListAll returns every profile, newest first (admin view).
	ListAll(ctx context.Context) ([]domain.RouterProfile, error)
	// DeleteAny removes a profile regardless of owner (admin).
	DeleteAny(ctx context.Context, id int64) error
}

type Updates interface {
	// GetBySerial returns the newest update order pinned to the serial.
	GetBySerial(ctx context.Context, serial string) (domain.UpdatePackage, error)

	// GetByModel returns the newest serial-less order for the
	// provider+model pair.
	GetByModel(ctx context.Context, providerID int64, modelIdentifier string) (domain.UpdatePackage, error)

	CreateUpdate(ctx context.Context, u domain.UpdatePackage) (int64, error)
}
