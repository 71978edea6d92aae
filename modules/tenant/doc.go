// Package tenant implements idempotent tenant provisioning with row-level
// isolation bootstrap.
//
// The module is built around three pieces. The Provisioner is the write
// path: it validates the tenant id, serializes concurrent attempts through
// an in-process lock registry, and either creates the tenant record inside
// a transaction that also enables row-level security and its policy, or
// opportunistically upgrades the display name of an existing record. The
// Store abstracts the PostgreSQL persistence, including the system catalog
// checks that make the isolation bootstrap idempotent. The Handler maps the
// HTTP contract — including the legacy dual snake_case/camelCase request
// field naming — onto the provisioner.
//
// Provisioning invariants:
//
//   - exactly one tenant row per id; repeated creates converge via upsert
//   - at most one in-flight provisioning operation per tenant id in process
//   - names are only ever upgraded, never replaced with a less specific one
//   - row-level isolation, once enabled, is never disabled here
//
// Status reads bypass the lock entirely and may be served from a cache
// (in-memory, Redis, or both tiers).
package tenant
