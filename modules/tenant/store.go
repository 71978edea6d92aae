package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenantkit/tenantd/pkg/pg"
)

// Store persists tenant records. The pgx-backed implementation is PGStore;
// tests substitute mocks.
type Store interface {
	// Get returns the tenant by primary key, or ErrTenantNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// UpdateName sets the display name and bumps updated_at, returning the
	// updated record.
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*Tenant, error)

	// CreateWithIsolation transactionally inserts the tenant row and
	// bootstraps row-level isolation on the tenants table. The insert is an
	// upsert: a row that appeared concurrently is left untouched and created
	// reports false. Any failure rolls back the whole transaction.
	CreateWithIsolation(ctx context.Context, id uuid.UUID, name, ownerID string) (created bool, err error)

	// VerifyIsolation checks that row-level security is live on the tenants
	// table. Called after a successful create; a failure here is advisory.
	VerifyIsolation(ctx context.Context) error
}

// PolicyName identifies the isolation policy on the tenants table.
const PolicyName = "tenant_isolation"

const tenantColumns = "id, name, owner_id, tenant_id, created_at, updated_at, rls_enabled, rls_setup_date"

// PGStore is the PostgreSQL Store implementation.
type PGStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPGStore returns a Store backed by the given pool.
func NewPGStore(pool *pgxpool.Pool, log *slog.Logger) *PGStore {
	if log == nil {
		log = slog.Default()
	}
	return &PGStore{pool: pool, log: log}
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE id = $1", id)

	var t Tenant
	err := row.Scan(&t.ID, &t.Name, &t.OwnerID, &t.TenantID,
		&t.CreatedAt, &t.UpdatedAt, &t.RLSEnabled, &t.RLSSetupDate)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return &t, nil
}

func (s *PGStore) UpdateName(ctx context.Context, id uuid.UUID, name string) (*Tenant, error) {
	row := s.pool.QueryRow(ctx,
		"UPDATE tenants SET name = $2, updated_at = now() WHERE id = $1 RETURNING "+tenantColumns,
		id, name)

	var t Tenant
	err := row.Scan(&t.ID, &t.Name, &t.OwnerID, &t.TenantID,
		&t.CreatedAt, &t.UpdatedAt, &t.RLSEnabled, &t.RLSSetupDate)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return &t, nil
}

func (s *PGStore) CreateWithIsolation(ctx context.Context, id uuid.UUID, name, ownerID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, errors.Join(ErrStoreFailure, err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO tenants (id, name, owner_id, tenant_id, created_at, updated_at, rls_enabled, rls_setup_date)
		VALUES ($1, $2, $3, $1, now(), now(), TRUE, now())
		ON CONFLICT (id) DO NOTHING`,
		id, name, ownerID)
	if err != nil {
		return false, errors.Join(ErrStoreFailure, err)
	}
	created := tag.RowsAffected() == 1

	// Both isolation steps consult the system catalogs first so re-running
	// them against an already configured table issues no DDL.
	var rlsEnabled bool
	if err := tx.QueryRow(ctx,
		`SELECT relrowsecurity FROM pg_class WHERE oid = 'tenants'::regclass`,
	).Scan(&rlsEnabled); err != nil {
		return false, errors.Join(ErrStoreFailure, err)
	}
	if !rlsEnabled {
		if _, err := tx.Exec(ctx, `ALTER TABLE tenants ENABLE ROW LEVEL SECURITY`); err != nil {
			return false, errors.Join(ErrStoreFailure, err)
		}
	}

	var policyExists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_policies WHERE tablename = 'tenants' AND policyname = $1)`,
		PolicyName,
	).Scan(&policyExists); err != nil {
		return false, errors.Join(ErrStoreFailure, err)
	}
	if !policyExists {
		// The predicate admits the caller's own tenant context by either the
		// scoping column or the row's primary key, plus unscoped bootstrap rows.
		stmt := fmt.Sprintf(`
			CREATE POLICY %s ON tenants
			USING (
				tenant_id::text = current_setting('app.current_tenant_id', true)
				OR id::text = current_setting('app.current_tenant_id', true)
				OR tenant_id IS NULL
			)`, PolicyName)
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return false, errors.Join(ErrStoreFailure, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, errors.Join(ErrStoreFailure, err)
	}
	return created, nil
}

func (s *PGStore) VerifyIsolation(ctx context.Context) error {
	var rlsEnabled, policyExists bool
	err := s.pool.QueryRow(ctx, `
		SELECT c.relrowsecurity,
		       EXISTS (SELECT 1 FROM pg_policies p WHERE p.tablename = 'tenants' AND p.policyname = $1)
		FROM pg_class c WHERE c.oid = 'tenants'::regclass`,
		PolicyName,
	).Scan(&rlsEnabled, &policyExists)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if !rlsEnabled {
		return errors.New("row level security is not enabled on tenants")
	}
	if !policyExists {
		return fmt.Errorf("isolation policy %s is missing on tenants", PolicyName)
	}
	return nil
}
