package tenant

import "net/http"

// RequestContext carries identity fields recovered from ambient request
// state (session, cookies, gateway headers) when the body omits them.
type RequestContext struct {
	UserID       string
	TenantID     string
	BusinessName string
}

// ContextProvider supplies best-effort fallbacks for create requests. A
// provider that cannot resolve anything returns the zero RequestContext;
// it never fails the request. Lookup problems are swallowed by contract.
type ContextProvider interface {
	TryGet(r *http.Request) RequestContext
}

// HeaderContext resolves ambient identity from gateway-injected headers.
// It is the default ContextProvider for deployments where an upstream
// auth proxy authenticates the session and forwards the claims.
type HeaderContext struct{}

func (HeaderContext) TryGet(r *http.Request) RequestContext {
	return RequestContext{
		UserID:       r.Header.Get("X-User-ID"),
		TenantID:     r.Header.Get("X-Tenant-ID"),
		BusinessName: r.Header.Get("X-Business-Name"),
	}
}
