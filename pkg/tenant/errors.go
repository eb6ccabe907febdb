package tenant

import "errors"

var (
	// ErrInvalidIdentity is returned when a tax id cannot be normalized.
	ErrInvalidIdentity = errors.New("invalid tenant identity")

	// ErrInvalidConfig is returned when connection settings fail validation.
	ErrInvalidConfig = errors.New("invalid tenant connection config")

	// ErrTenantNotFound is returned when the master directory has no row for a tenant.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrDirectoryUnavailable wraps failures querying the master directory.
	ErrDirectoryUnavailable = errors.New("tenant directory unavailable")

	// ErrPoolBuild is returned when a tenant pool cannot be constructed.
	ErrPoolBuild = errors.New("failed to build tenant pool")

	// ErrCompanyNotIdentified is returned to callers that require a tenant
	// binding and found none. HTTP handlers map it to 403.
	ErrCompanyNotIdentified = errors.New("company not identified, please log in again")

	// ErrHintInvalid is returned when the credential hint header cannot be used.
	ErrHintInvalid = errors.New("invalid tenant config hint")

	// errHintAbsent marks a request that carries no credential hint.
	errHintAbsent = errors.New("tenant config hint absent")
)

// ErrRegistryClosed is returned by Upsert after the registry has been closed.
var ErrRegistryClosed = errors.New("tenant registry closed")
