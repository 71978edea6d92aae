package tenant_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/tenantd/modules/tenant"
	"github.com/tenantkit/tenantd/pkg/lockreg"
)

func newTestServer(t *testing.T, store tenant.Store, opts ...tenant.HandlerOption) *httptest.Server {
	t.Helper()

	prov := newProvisioner(store, lockreg.New())
	opts = append([]tenant.HandlerOption{tenant.WithHandlerLogger(discardLogger())}, opts...)
	srv := httptest.NewServer(tenant.Router(tenant.NewHandler(prov, opts...)))
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func postJSON(t *testing.T, url, payload string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/tenant", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestHandler_GetTenant(t *testing.T) {
	t.Parallel()

	t.Run("missing_identifier", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMockStore())
		resp, err := http.Get(srv.URL + "/tenant")
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid tenant ID", body["message"])
	})

	t.Run("malformed_tenant_id", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		srv := newTestServer(t, store)
		resp, err := http.Get(srv.URL + "/tenant?tenant_id=not-a-uuid")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, 0, store.getCallCount(), "no store call for invalid input")
	})

	t.Run("unprovisioned_tenant_by_user_id", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMockStore())
		resp, err := http.Get(srv.URL + "/tenant?user_id=u-1")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, false, body["exists"])
		assert.Equal(t, mustDerive(t, "u-1"), body["tenantId"])
	})

	t.Run("existing_tenant_by_tenant_id", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		srv := newTestServer(t, store)
		id := mustDerive(t, "u-1")

		resp := postJSON(t, srv.URL, `{"tenant_id":"`+id+`","business_name":"Acme"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp, err := http.Get(srv.URL + "/tenant?tenant_id=" + id)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["exists"])
		record, ok := body["tenant"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Acme", record["name"])
	})

	t.Run("store_failure", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.getErr = assert.AnError
		srv := newTestServer(t, store)

		resp, err := http.Get(srv.URL + "/tenant?user_id=u-1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.NotContains(t, body, "stack")
	})
}

func TestHandler_CreateTenant(t *testing.T) {
	t.Parallel()

	t.Run("fresh_store_scenario", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMockStore())

		// First call provisions.
		resp := postJSON(t, srv.URL, `{"user_id":"u-1","business_name":"Acme"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)

		assert.Equal(t, true, body["success"])
		assert.Equal(t, true, body["created"])
		assert.Equal(t, mustDerive(t, "u-1"), body["tenantId"])

		info, ok := body["tenantInfo"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Acme", info["name"])
		assert.Equal(t, true, info["rlsEnabled"])

		// Second identical call reports existing.
		resp = postJSON(t, srv.URL, `{"user_id":"u-1","business_name":"Acme"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body = decodeBody(t, resp)

		assert.Equal(t, true, body["success"])
		assert.Equal(t, true, body["exists"])
		assert.Equal(t, false, body["created"])
	})

	t.Run("camel_case_fields", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMockStore())
		resp := postJSON(t, srv.URL, `{"userId":"u-1","businessName":"Acme"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, true, body["created"])
	})

	t.Run("missing_identifiers", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMockStore())
		resp := postJSON(t, srv.URL, `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Invalid or missing tenant ID", body["message"])
	})

	t.Run("malformed_tenant_id", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMockStore())
		resp := postJSON(t, srv.URL, `{"tenant_id":"not-a-uuid"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "not-a-uuid", body["tenant_id"])
	})

	t.Run("ambient_context_fallback", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMockStore(),
			tenant.WithContextProvider(tenant.HeaderContext{}))

		req, err := http.NewRequest(http.MethodPost, srv.URL+"/tenant", strings.NewReader(`{}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "u-1")
		req.Header.Set("X-Business-Name", "Acme")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["created"])
		info, ok := body["tenantInfo"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Acme", info["name"])
	})

	t.Run("body_fields_win_over_ambient_context", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMockStore(),
			tenant.WithContextProvider(tenant.HeaderContext{}))

		req, err := http.NewRequest(http.MethodPost, srv.URL+"/tenant",
			strings.NewReader(`{"user_id":"u-1","business_name":"Acme"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Business-Name", "Other Corp")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body := decodeBody(t, resp)

		info, ok := body["tenantInfo"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Acme", info["name"])
	})

	t.Run("store_failure_without_diagnostics", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.createErr = assert.AnError
		srv := newTestServer(t, store)

		resp := postJSON(t, srv.URL, `{"user_id":"u-1"}`)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.NotContains(t, body, "stack")
	})

	t.Run("store_failure_with_diagnostics", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.createErr = assert.AnError
		srv := newTestServer(t, store, tenant.WithDiagnostics(true))

		resp := postJSON(t, srv.URL, `{"user_id":"u-1"}`)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body, "stack")
	})

	t.Run("malformed_body", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMockStore())
		resp := postJSON(t, srv.URL, `{"tenant_id":`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
