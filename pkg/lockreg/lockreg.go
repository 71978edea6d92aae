package lockreg

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the age after which a held lock is presumed abandoned.
const DefaultTimeout = 30 * time.Second

// Registry is an in-process advisory lock table keyed by tenant id. It
// serializes provisioning attempts for the same tenant within a single
// process. It is NOT a distributed lock: when the service runs as multiple
// replicas the registry only protects against races inside each replica,
// so provisioning must be deployed as a singleton writer.
type Registry struct {
	mu      sync.Mutex
	locks   map[uuid.UUID]lock
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time
}

type lock struct {
	op         string
	token      uuid.UUID
	acquiredAt time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithTimeout overrides the stale-lock timeout.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("lockreg: WithTimeout requires a positive duration")
	}
	return func(r *Registry) { r.timeout = d }
}

// WithLogger sets the logger used for stale-lock warnings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock replaces the time source, letting tests age locks without sleeping.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New returns an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		locks:   make(map[uuid.UUID]lock),
		timeout: DefaultTimeout,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire records an exclusive lock for tenantID and returns the release
// token. It fails immediately when an unexpired lock is already held: the
// caller must report "operation in progress" rather than block or retry.
// An expired entry is reclaimed in place, so a crashed attempt never blocks
// the tenant past the timeout.
func (r *Registry) Acquire(tenantID uuid.UUID, op string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if held, ok := r.locks[tenantID]; ok {
		age := r.now().Sub(held.acquiredAt)
		if age < r.timeout {
			return uuid.Nil, false
		}
		r.log.Warn("reclaiming expired tenant lock",
			slog.String("tenant_id", tenantID.String()),
			slog.String("operation", held.op),
			slog.Duration("age", age),
		)
	}

	token := uuid.New()
	r.locks[tenantID] = lock{op: op, token: token, acquiredAt: r.now()}
	return token, true
}

// Release removes the lock for tenantID. The supplied token must match the
// held token, except when the held lock has already expired: a slow caller
// may then no longer own the lock, and releasing someone else's fresh lock
// would reopen the race Acquire exists to prevent.
func (r *Registry) Release(tenantID, token uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	held, ok := r.locks[tenantID]
	if !ok {
		return false
	}
	if held.token != token && r.now().Sub(held.acquiredAt) < r.timeout {
		return false
	}
	delete(r.locks, tenantID)
	return true
}

// SweepExpired removes every lock older than the timeout and returns the
// number reclaimed. Public entry points call it first so stale locks never
// accumulate even when a release was lost to a crash.
func (r *Registry) SweepExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	reclaimed := 0
	now := r.now()
	for id, held := range r.locks {
		age := now.Sub(held.acquiredAt)
		if age < r.timeout {
			continue
		}
		r.log.Warn("sweeping expired tenant lock",
			slog.String("tenant_id", id.String()),
			slog.String("operation", held.op),
			slog.Duration("age", age),
		)
		delete(r.locks, id)
		reclaimed++
	}
	return reclaimed
}

// Reset drops all locks. Intended for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.locks)
}

// Len reports the number of currently held locks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
