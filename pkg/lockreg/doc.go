// Package lockreg provides in-process advisory locking keyed by tenant id.
//
// Provisioning a tenant involves an existence check followed by a
// transactional insert; two concurrent attempts for the same tenant would
// race between those steps. The registry closes that window inside a single
// process: Acquire is a synchronous check-and-set under one mutex, so at
// most one provisioning operation per tenant id is ever in flight.
//
// Locks carry a token returned by Acquire. Release requires the matching
// token unless the lock has outlived the timeout, which guards against a
// slow caller releasing a lock that was reclaimed and reassigned in the
// meantime. SweepExpired reclaims abandoned locks and is expected to run at
// the start of every public entry point.
//
// The registry is advisory and process-local. Multi-replica deployments
// need either a singleton provisioning writer or a store-backed lock with
// the same acquire/release/timeout contract.
package lockreg
