// Package tenantid derives stable tenant identifiers from user identifiers.
//
// The derivation is a name-based UUID hash over a fixed namespace, so the
// same user always maps to the same tenant id without a database round trip.
// This lets callers address a tenant before its record exists, which is what
// makes idempotent provisioning possible: the onboarding flow, the login
// callback, and the provisioner all compute the same id independently.
//
// Usage:
//
//	id, err := tenantid.Derive("user-42")
//	if err != nil {
//		// empty user id
//	}
//
//	// Validate an identifier received over the wire.
//	id, err = tenantid.Validate(r.URL.Query().Get("tenant_id"))
package tenantid
