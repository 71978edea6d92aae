package tenant

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlaceholderName is the generic business name assigned by onboarding flows
// that did not collect a real one. It is always eligible for replacement and
// never replaces a meaningful name.
const PlaceholderName = "Default Business"

// Tenant is an isolated customer workspace. TenantID mirrors ID on the
// tenant's own row so the row-level isolation predicate can match it like
// any other tenant-scoped row.
type Tenant struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	OwnerID      string     `json:"ownerId"`
	TenantID     *uuid.UUID `json:"tenantId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	RLSEnabled   bool       `json:"rlsEnabled"`
	RLSSetupDate *time.Time `json:"rlsSetupDate"`
}

// shouldUpgradeName decides whether candidate may replace current. A name
// is only ever upgraded: empty and placeholder names lose to anything
// meaningful, and a meaningful name is replaced only by a strictly longer
// one. A placeholder candidate never replaces a meaningful name.
func shouldUpgradeName(current, candidate string) bool {
	current = strings.TrimSpace(current)
	candidate = strings.TrimSpace(candidate)

	if candidate == "" || candidate == current {
		return false
	}
	if current == "" || current == PlaceholderName {
		return true
	}
	if candidate == PlaceholderName {
		return false
	}
	return len(candidate) > len(current)
}
