package tenant_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tenantkit/tenantd/modules/tenant"
)

// mockStore is an in-memory tenant.Store with injectable failures. A
// createErr mimics a rolled-back transaction: no row is left behind.
type mockStore struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]tenant.Tenant

	getErr    error
	updateErr error
	createErr error
	verifyErr error

	getCalls    int
	createCalls int

	// createBarrier, when set, blocks CreateWithIsolation until closed so
	// tests can hold a provisioning attempt in flight.
	createBarrier chan struct{}
}

func newMockStore() *mockStore {
	return &mockStore{tenants: make(map[uuid.UUID]tenant.Tenant)}
}

func (m *mockStore) Get(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	if m.getErr != nil {
		return nil, m.getErr
	}
	t, ok := m.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return &t, nil
}

func (m *mockStore) UpdateName(ctx context.Context, id uuid.UUID, name string) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return nil, m.updateErr
	}
	t, ok := m.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	t.Name = name
	t.UpdatedAt = time.Now()
	m.tenants[id] = t
	return &t, nil
}

func (m *mockStore) CreateWithIsolation(ctx context.Context, id uuid.UUID, name, ownerID string) (bool, error) {
	m.mu.Lock()
	barrier := m.createBarrier
	m.createCalls++
	m.mu.Unlock()

	if barrier != nil {
		<-barrier
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return false, m.createErr
	}
	if _, exists := m.tenants[id]; exists {
		return false, nil
	}

	now := time.Now()
	scopeID := id
	m.tenants[id] = tenant.Tenant{
		ID:           id,
		Name:         name,
		OwnerID:      ownerID,
		TenantID:     &scopeID,
		CreatedAt:    now,
		UpdatedAt:    now,
		RLSEnabled:   true,
		RLSSetupDate: &now,
	}
	return true, nil
}

func (m *mockStore) VerifyIsolation(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyErr
}

func (m *mockStore) rowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tenants)
}

func (m *mockStore) getCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

func (m *mockStore) createCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}
