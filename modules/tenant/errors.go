package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant record matches the id.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrStoreFailure wraps storage errors crossing the provisioner boundary.
	ErrStoreFailure = errors.New("tenant store failure")
)
