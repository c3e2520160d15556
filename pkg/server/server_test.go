package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/apisim/pkg/config"
	"github.com/getmockd/apisim/pkg/engine"
	"github.com/getmockd/apisim/pkg/logging"
	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
	"github.com/getmockd/apisim/pkg/store/memory"
)

func testConfig(mutate ...func(*config.Config)) *config.Config {
	cfg := config.Default()
	cfg.Backend = string(store.BackendMemory)
	cfg.Port = 0
	cfg.RateLimit.RPS = 0
	cfg.ShutdownTimeout = 2 * time.Second
	for _, fn := range mutate {
		fn(cfg)
	}
	return cfg
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	srv := New(testConfig(mutate...), st)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func request(t *testing.T, h http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// seed creates a project, a collection and one GET /users/:id mock through
// the management API.
func seed(t *testing.T, h http.Handler) *mock.API {
	t.Helper()

	rec := request(t, h, http.MethodPost, "/projects", map[string]string{"name": "Shop"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var project mock.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))

	rec = request(t, h, http.MethodPost, "/projects/"+project.ID+"/collections", map[string]string{"name": "V1", "slug": "v1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var collection mock.Collection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &collection))

	rec = request(t, h, http.MethodPost, "/collections/"+collection.ID+"/apis", map[string]any{
		"method":        "GET",
		"endpoint":      "/users/:id",
		"response_body": `{"id":"{{params.id}}"}`,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var api mock.API
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &api))
	return &api
}

func TestServer_EndToEnd(t *testing.T) {
	t.Parallel()

	srv, st := newTestServer(t)
	h := srv.Handler()
	api := seed(t, h)

	rec := request(t, h, http.MethodGet, "/mock/shop/v1/users/7", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"7"}`, rec.Body.String())
	assert.Equal(t, api.ID, rec.Header().Get(engine.HeaderAPIID))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	require.NoError(t, srv.Shutdown(context.Background()))

	logs, err := st.ListRequestLogs(context.Background(), store.RequestLogFilter{APIID: api.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, api.ID, *logs[0].APIID)
}

func TestServer_CustomPrefix(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, func(c *config.Config) { c.MockPrefix = "stub" })
	h := srv.Handler()
	seed(t, h)

	assert.Equal(t, "/stub", srv.MockPrefix())
	assert.Equal(t, http.StatusOK, request(t, h, http.MethodGet, "/stub/shop/v1/users/1", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, request(t, h, http.MethodGet, "/mock/shop/v1/users/1", nil, nil).Code)
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := request(t, srv.Handler(), http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","app":"apisim"}`, rec.Body.String())
}

func TestServer_CORS(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	h := srv.Handler()

	t.Run("preflight", func(t *testing.T) {
		rec := request(t, h, http.MethodOptions, "/projects", nil, http.Header{
			"Origin":                        {"http://localhost:3000"},
			"Access-Control-Request-Method": {http.MethodPatch},
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})

	t.Run("simple request", func(t *testing.T) {
		rec := request(t, h, http.MethodGet, "/health", nil, http.Header{
			"Origin": {"http://localhost:3000"},
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestServer_CORSRestrictedOrigins(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, func(c *config.Config) {
		c.CORSOrigins = []string{"http://allowed.test"}
	})
	h := srv.Handler()

	rec := request(t, h, http.MethodGet, "/health", nil, http.Header{"Origin": {"http://allowed.test"}})
	assert.Equal(t, "http://allowed.test", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = request(t, h, http.MethodGet, "/health", nil, http.Header{"Origin": {"http://other.test"}})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RateLimitAppliesToManagementOnly(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, func(c *config.Config) {
		c.RateLimit.RPS = 1
		c.RateLimit.Burst = 1
	})
	h := srv.Handler()

	assert.Equal(t, http.StatusOK, request(t, h, http.MethodGet, "/health", nil, nil).Code)
	limited := request(t, h, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	for range 3 {
		rec := request(t, h, http.MethodGet, "/mock/none/none/x", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), recoverer(logging.Nop()))

	rec := request(t, h, http.MethodGet, "/", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mw("a"), mw("b"), mw("c"))

	request(t, h, http.MethodGet, "/", nil, nil)

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", ln.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestOpenStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		st, err := OpenStore(ctx, store.Config{Backend: store.BackendMemory}, nil)
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, st)
		assert.NoError(t, st.Close())
	})

	t.Run("sqlite creates the data directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "data")
		st, err := OpenStore(ctx, store.Config{Backend: store.BackendSQLite, DataDir: dir}, nil)
		require.NoError(t, err)
		defer st.Close()

		_, err = os.Stat(filepath.Join(dir, store.DatabaseFile))
		assert.NoError(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := OpenStore(ctx, store.Config{Backend: "postgres"}, nil)
		assert.Error(t, err)
	})
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	h := srv.Handler()
	seed(t, h)

	request(t, h, http.MethodGet, "/mock/shop/v1/users/1", nil, nil)
	request(t, h, http.MethodGet, "/mock/shop/v1/nothing", nil, nil)

	rec := request(t, h, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `apisim_http_requests_total{method="GET",status="200",surface="mock"} 1`)
	assert.Contains(t, out, `apisim_http_requests_total{method="GET",status="404",surface="mock"} 1`)
	assert.Contains(t, out, `apisim_http_requests_total{method="POST",status="201",surface="admin"} 3`)
	assert.Contains(t, out, "apisim_uptime_seconds ")
	assert.Contains(t, out, "apisim_request_log_dropped_total 0")
}
