package tenantid

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Namespace is the fixed UUID namespace for deriving tenant identifiers
// from user identifiers. Changing this value remaps every user to a new
// tenant, so it is a constant for the lifetime of the system.
var Namespace = uuid.MustParse("1b671a64-40d5-491e-99b0-da01ff1f3341")

var (
	// ErrEmptyUserID is returned when the user identifier is empty or whitespace.
	ErrEmptyUserID = errors.New("empty user id")

	// ErrInvalidTenantID is returned when a tenant identifier is not a
	// canonically formatted UUID.
	ErrInvalidTenantID = errors.New("invalid tenant id")
)

// Derive returns the tenant identifier for the given user identifier using
// name-based (version 5 style) UUID derivation. The mapping is deterministic:
// the same user always derives the same tenant id, whether or not a tenant
// record exists yet.
func Derive(userID string) (uuid.UUID, error) {
	if strings.TrimSpace(userID) == "" {
		return uuid.Nil, ErrEmptyUserID
	}
	return uuid.NewSHA1(Namespace, []byte(userID)), nil
}

// Validate parses a tenant identifier, accepting only the canonical 36
// character hyphenated form. Cheap structural checks run before the full
// parse so malformed input is rejected without allocation.
func Validate(id string) (uuid.UUID, error) {
	if len(id) != 36 {
		return uuid.Nil, ErrInvalidTenantID
	}
	if id[8] != '-' || id[13] != '-' || id[18] != '-' || id[23] != '-' {
		return uuid.Nil, ErrInvalidTenantID
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrInvalidTenantID
	}
	return parsed, nil
}
