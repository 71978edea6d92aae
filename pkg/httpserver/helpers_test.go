package httpserver_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testResponse struct {
	code int
	body string
}

func doRequest(t *testing.T, h http.HandlerFunc) testResponse {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return testResponse{code: rec.Code, body: string(body)}
}
