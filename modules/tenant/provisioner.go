package tenant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tenantkit/tenantd/pkg/lockreg"
	"github.com/tenantkit/tenantd/pkg/logger"
	"github.com/tenantkit/tenantd/pkg/tenantid"
)

// opCreateTenant labels provisioning locks in the registry.
const opCreateTenant = "create_tenant"

// Result is the outcome of an Ensure call. Locked marks an attempt that was
// turned away because another provisioning operation held the tenant's
// lock; it is not an error and the caller is expected to poll again.
type Result struct {
	Success  bool    `json:"success"`
	Message  string  `json:"message,omitempty"`
	TenantID string  `json:"tenantId"`
	Exists   bool    `json:"exists"`
	Created  bool    `json:"created"`
	Locked   bool    `json:"locked,omitempty"`
	Tenant   *Tenant `json:"tenantInfo,omitempty"`
}

// StatusResult is the outcome of a Status query.
type StatusResult struct {
	Success  bool    `json:"success"`
	TenantID string  `json:"tenantId"`
	Exists   bool    `json:"exists"`
	Tenant   *Tenant `json:"tenant"`
}

// Provisioner idempotently ensures tenant records exist with row-level
// isolation configured, serializing concurrent attempts per tenant through
// the lock registry.
type Provisioner struct {
	store Store
	locks *lockreg.Registry
	cache Cache
	log   *slog.Logger
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithCache installs a read cache for the status path. Without it the
// provisioner queries the store on every read.
func WithCache(c Cache) ProvisionerOption {
	return func(p *Provisioner) {
		if c != nil {
			p.cache = c
		}
	}
}

// WithLogger sets the provisioner logger.
func WithLogger(l *slog.Logger) ProvisionerOption {
	return func(p *Provisioner) {
		if l != nil {
			p.log = l
		}
	}
}

// NewProvisioner wires a Provisioner over the given store and lock registry.
func NewProvisioner(store Store, locks *lockreg.Registry, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		store: store,
		locks: locks,
		cache: NewNoopCache(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ensure guarantees a tenant record exists for rawID, creating it with
// candidateName and ownerID when absent and upgrading a less specific name
// when present. Store errors are reported through both the Result message
// and the returned error; tenantid.ErrInvalidTenantID identifies rejected
// input. A Result with Locked set means another attempt is in flight and
// nothing was done.
func (p *Provisioner) Ensure(ctx context.Context, rawID, candidateName, ownerID string) (Result, error) {
	id, err := tenantid.Validate(rawID)
	if err != nil {
		return Result{TenantID: rawID, Message: "invalid tenant id"}, err
	}
	candidateName = strings.TrimSpace(candidateName)

	p.locks.SweepExpired()

	token, ok := p.locks.Acquire(id, opCreateTenant)
	if !ok {
		p.log.InfoContext(ctx, "tenant provisioning already in progress",
			slog.String("tenant_id", id.String()))
		return Result{
			TenantID: id.String(),
			Locked:   true,
			Message:  "tenant provisioning already in progress",
		}, nil
	}
	defer p.locks.Release(id, token)

	existing, err := p.store.Get(ctx, id)
	switch {
	case err == nil:
		return p.ensureName(ctx, existing, candidateName)
	case errors.Is(err, ErrTenantNotFound):
		return p.create(ctx, id, candidateName, ownerID)
	default:
		p.log.ErrorContext(ctx, "tenant existence check failed",
			slog.String("tenant_id", id.String()), logger.Error(err))
		return Result{TenantID: id.String(), Message: "tenant lookup failed"}, err
	}
}

// ensureName applies the name-upgrade rule to an existing tenant.
func (p *Provisioner) ensureName(ctx context.Context, existing *Tenant, candidateName string) (Result, error) {
	res := Result{
		Success:  true,
		TenantID: existing.ID.String(),
		Exists:   true,
		Tenant:   existing,
	}
	if !shouldUpgradeName(existing.Name, candidateName) {
		return res, nil
	}

	updated, err := p.store.UpdateName(ctx, existing.ID, candidateName)
	if err != nil {
		p.log.ErrorContext(ctx, "tenant name update failed",
			slog.String("tenant_id", existing.ID.String()), logger.Error(err))
		return Result{TenantID: existing.ID.String(), Exists: true, Message: "failed to update tenant name"}, err
	}

	p.cache.Set(ctx, updated.ID, updated)
	p.log.InfoContext(ctx, "tenant name upgraded",
		slog.String("tenant_id", updated.ID.String()),
		slog.String("name", updated.Name))

	res.Tenant = updated
	return res, nil
}

// create provisions the tenant record and its isolation policy.
func (p *Provisioner) create(ctx context.Context, id uuid.UUID, name, ownerID string) (Result, error) {
	created, err := p.store.CreateWithIsolation(ctx, id, name, ownerID)
	if err != nil {
		p.log.ErrorContext(ctx, "tenant provisioning failed",
			slog.String("tenant_id", id.String()), logger.Error(err))
		return Result{TenantID: id.String(), Message: "failed to provision tenant"}, err
	}

	// Isolation is bootstrapped inside the create transaction; verification
	// afterwards is advisory. The record is the critical artifact, so a
	// verification problem is logged and the creation still succeeds.
	if err := p.store.VerifyIsolation(ctx); err != nil {
		p.log.WarnContext(ctx, "tenant isolation verification failed",
			slog.String("tenant_id", id.String()), logger.Error(err))
	}

	final, err := p.store.Get(ctx, id)
	if err != nil {
		// The row committed; failing the whole call over a read-back would
		// report a provisioned tenant as missing.
		p.log.WarnContext(ctx, "tenant read-back after create failed",
			slog.String("tenant_id", id.String()), logger.Error(err))
	} else {
		p.cache.Set(ctx, id, final)
	}

	p.log.InfoContext(ctx, "tenant provisioned",
		slog.String("tenant_id", id.String()),
		slog.Bool("created", created))

	return Result{
		Success:  true,
		TenantID: id.String(),
		Exists:   !created,
		Created:  created,
		Tenant:   final,
	}, nil
}

// Status answers whether the tenant exists and returns its record. It takes
// no lock: reads carry no mutation risk and must not contend with an
// in-flight provisioning attempt.
func (p *Provisioner) Status(ctx context.Context, rawID string) (StatusResult, error) {
	id, err := tenantid.Validate(rawID)
	if err != nil {
		return StatusResult{TenantID: rawID}, err
	}

	p.locks.SweepExpired()

	if cached, ok := p.cache.Get(ctx, id); ok {
		return StatusResult{Success: true, TenantID: id.String(), Exists: true, Tenant: cached}, nil
	}

	t, err := p.store.Get(ctx, id)
	switch {
	case err == nil:
		p.cache.Set(ctx, id, t)
		return StatusResult{Success: true, TenantID: id.String(), Exists: true, Tenant: t}, nil
	case errors.Is(err, ErrTenantNotFound):
		return StatusResult{Success: true, TenantID: id.String()}, nil
	default:
		p.log.ErrorContext(ctx, "tenant status query failed",
			slog.String("tenant_id", id.String()), logger.Error(err))
		return StatusResult{TenantID: id.String()}, err
	}
}
