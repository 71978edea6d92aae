package httpserver_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/tenantd/pkg/httpserver"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServer_RunAndShutdown(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	srv := httpserver.New(httpserver.Config{
		Addr:            addr,
		ShutdownTimeout: time.Second,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "ok")
		}))
	}()

	var resp *http.Response
	var err error
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + addr + "/")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		h := httpserver.HealthCheckHandler(noopLogger())
		resp := doRequest(t, h)
		assert.Equal(t, http.StatusOK, resp.code)
		assert.Equal(t, "ALIVE", resp.body)
	})

	t.Run("readiness_ok", func(t *testing.T) {
		t.Parallel()

		h := httpserver.HealthCheckHandler(noopLogger(), func(context.Context) error { return nil })
		resp := doRequest(t, h)
		assert.Equal(t, http.StatusOK, resp.code)
		assert.Equal(t, "READY", resp.body)
	})

	t.Run("readiness_failed", func(t *testing.T) {
		t.Parallel()

		h := httpserver.HealthCheckHandler(noopLogger(), func(context.Context) error { return assert.AnError })
		resp := doRequest(t, h)
		assert.Equal(t, http.StatusInternalServerError, resp.code)
		assert.Equal(t, "NOT_READY", resp.body)
	})
}
