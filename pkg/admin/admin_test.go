package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
	"github.com/getmockd/apisim/pkg/store/memory"
)

type testServer struct {
	t       *testing.T
	store   *memory.Store
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := memory.New()
	return &testServer{t: t, store: st, handler: NewAPI(st).Handler()}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createProject(name string) *mock.Project {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/projects", map[string]string{"name": name})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*mock.Project](s.t, rec)
}

func (s *testServer) createCollection(projectID, name, slug string) *mock.Collection {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/projects/"+projectID+"/collections", map[string]string{"name": name, "slug": slug})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*mock.Collection](s.t, rec)
}

func (s *testServer) createAPI(collectionID string, body map[string]any) *mock.API {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/collections/"+collectionID+"/apis", body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*mock.API](s.t, rec)
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	return decode[map[string]string](t, rec)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","app":"apisim"}`, rec.Body.String())
}

func TestProjects(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	first := s.createProject("Smoke Test Project")
	assert.Equal(t, "smoke-test-project", first.Slug)
	second := s.createProject("Café Orders")
	assert.Equal(t, "cafe-orders", second.Slug)

	t.Run("list newest first", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/projects", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		projects := decode[[]*mock.Project](t, rec)
		require.Len(t, projects, 2)
		assert.Equal(t, second.ID, projects[0].ID)
		assert.Equal(t, first.ID, projects[1].ID)
	})

	t.Run("get", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/projects/"+first.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, first.Name, decode[*mock.Project](t, rec).Name)
	})

	t.Run("get unknown", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/projects/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, ErrMsgProjectNotFound, errorBody(t, rec)["message"])
	})

	t.Run("name required", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/projects", map[string]string{"description": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name is required", errorBody(t, rec)["message"])
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/projects", map[string]string{"name": "smoke test project!"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, errorBody(t, rec)["message"], "smoke-test-project")
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/projects", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_json", errorBody(t, rec)["error"])
	})

	t.Run("empty list is an array", func(t *testing.T) {
		rec := newTestServer(t).do(http.MethodGet, "/projects", nil)
		assert.Equal(t, "[]\n", rec.Body.String())
	})
}

func TestDeleteProjectCascades(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ctx := context.Background()

	p := s.createProject("Shop")
	c := s.createCollection(p.ID, "V1", "v1")
	api := s.createAPI(c.ID, map[string]any{"method": "GET", "endpoint": "/x", "response_body": "{}"})

	rec := s.do(http.MethodDelete, "/projects/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	_, err := s.store.GetCollection(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.store.GetAPI(ctx, api.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	rec = s.do(http.MethodDelete, "/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollections(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	p := s.createProject("Shop")

	t.Run("slug is sanitized", func(t *testing.T) {
		c := s.createCollection(p.ID, "Public API", "  Public API!! v2 ")
		assert.Equal(t, "public-api-v2", c.Slug)
		assert.Equal(t, p.ID, c.ProjectID)
	})

	t.Run("missing name or slug", func(t *testing.T) {
		for _, body := range []map[string]string{
			{"name": "", "slug": "ok"},
			{"name": "ok", "slug": "!!!"},
		} {
			rec := s.do(http.MethodPost, "/projects/"+p.ID+"/collections", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/projects/nope/collections", map[string]string{"name": "a", "slug": "a"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, ErrMsgProjectNotFound, errorBody(t, rec)["message"])

		rec = s.do(http.MethodGet, "/projects/nope/collections", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list and get", func(t *testing.T) {
		c := s.createCollection(p.ID, "Internal", "internal")

		rec := s.do(http.MethodGet, "/projects/"+p.ID+"/collections", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]*mock.Collection](t, rec)
		require.NotEmpty(t, list)
		assert.Equal(t, c.ID, list[0].ID)

		rec = s.do(http.MethodGet, "/collections/"+c.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "internal", decode[*mock.Collection](t, rec).Slug)

		rec = s.do(http.MethodGet, "/collections/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete cascades to apis", func(t *testing.T) {
		c := s.createCollection(p.ID, "Temp", "temp")
		api := s.createAPI(c.ID, map[string]any{"method": "GET", "endpoint": "/x", "response_body": "{}"})

		rec := s.do(http.MethodDelete, "/collections/"+c.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(http.MethodGet, "/apis/"+api.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateAPI(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	p := s.createProject("Shop")
	c := s.createCollection(p.ID, "V1", "v1")

	t.Run("defaults and normalization", func(t *testing.T) {
		api := s.createAPI(c.ID, map[string]any{"method": "get", "endpoint": " users/:id ", "response_body": `{"id":"{{params.id}}"}`})
		assert.Equal(t, mock.MethodGet, api.Method)
		assert.Equal(t, "/users/:id", api.Endpoint)
		assert.Equal(t, 200, api.StatusCode)
		assert.Equal(t, mock.ResponseJSON, api.ResponseType)
		assert.Equal(t, 0, api.DelayMs)
		assert.Nil(t, api.UpdatedAt)
	})

	tests := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{"missing method", map[string]any{"endpoint": "/a", "response_body": "x"}, http.StatusBadRequest, "Method, endpoint, and response_body are required"},
		{"missing body", map[string]any{"method": "GET", "endpoint": "/a"}, http.StatusBadRequest, "Method, endpoint, and response_body are required"},
		{"unsupported method", map[string]any{"method": "TRACE", "endpoint": "/a", "response_body": "x"}, http.StatusBadRequest, "Unsupported method TRACE. Must be one of: GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS"},
		{"invalid response type", map[string]any{"method": "GET", "endpoint": "/a", "response_body": "x", "response_type": "application/xml"}, http.StatusBadRequest, "Invalid response_type. Must be one of: application/json, text/plain, text/html"},
		{"negative delay", map[string]any{"method": "GET", "endpoint": "/a", "response_body": "x", "delay_ms": -1}, http.StatusBadRequest, "delay_ms must be >= 0"},
		{"status too low", map[string]any{"method": "GET", "endpoint": "/a", "response_body": "x", "status_code": 99}, http.StatusBadRequest, "status_code must be >= 100"},
		{"status too high", map[string]any{"method": "GET", "endpoint": "/a", "response_body": "x", "status_code": 600}, http.StatusBadRequest, "status_code must be <= 599"},
		{"collision", map[string]any{"method": "GET", "endpoint": "/users/:id", "response_body": "x"}, http.StatusConflict, "An API with method GET and endpoint /users/:id already exists in this collection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/collections/"+c.ID+"/apis", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec)["message"])
		})
	}

	t.Run("collision error code", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/collections/"+c.ID+"/apis", map[string]any{"method": "GET", "endpoint": "users/:id", "response_body": "x"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, CodeCollision, errorBody(t, rec)["error"])
	})

	t.Run("unknown collection", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/collections/nope/apis", map[string]any{"method": "GET", "endpoint": "/a", "response_body": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, ErrMsgCollectionNotFound, errorBody(t, rec)["message"])
	})

	t.Run("empty response body is allowed", func(t *testing.T) {
		api := s.createAPI(c.ID, map[string]any{"method": "DELETE", "endpoint": "/users/:id", "response_body": "", "status_code": 204, "response_type": "text/plain"})
		assert.Equal(t, "", api.ResponseBody)
		assert.Equal(t, 204, api.StatusCode)
	})
}

func TestUpdateAPI(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	p := s.createProject("Shop")
	c := s.createCollection(p.ID, "V1", "v1")
	users := s.createAPI(c.ID, map[string]any{"method": "GET", "endpoint": "/users", "response_body": "[]"})
	orders := s.createAPI(c.ID, map[string]any{"method": "GET", "endpoint": "/orders", "response_body": "[]"})

	t.Run("partial update", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/apis/"+users.ID, map[string]any{"status_code": 202, "delay_ms": 50})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[*mock.API](t, rec)
		assert.Equal(t, 202, updated.StatusCode)
		assert.Equal(t, 50, updated.DelayMs)
		assert.Equal(t, "/users", updated.Endpoint)
		assert.Equal(t, "[]", updated.ResponseBody)
		assert.NotNil(t, updated.UpdatedAt)
	})

	t.Run("same values are not a collision", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/apis/"+users.ID, map[string]any{"method": "GET", "endpoint": "/users"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("collision with sibling", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/apis/"+orders.ID, map[string]any{"endpoint": "users"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "An API with method GET and endpoint /users already exists in this collection", errorBody(t, rec)["message"])
	})

	t.Run("validation", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/apis/"+orders.ID, map[string]any{"delay_ms": -5})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = s.do(http.MethodPut, "/apis/"+orders.ID, map[string]any{"response_type": "image/png"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown api", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/apis/nope", map[string]any{"status_code": 201})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, ErrMsgAPINotFound, errorBody(t, rec)["message"])
	})

	t.Run("get and delete", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/apis/"+orders.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(http.MethodDelete, "/apis/"+orders.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())

		rec = s.do(http.MethodDelete, "/apis/"+orders.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/collections/"+c.ID+"/apis", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		apis := decode[[]*mock.API](t, rec)
		require.Len(t, apis, 1)
		assert.Equal(t, users.ID, apis[0].ID)
	})
}

func TestExportCollection(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	p := s.createProject("Shop")
	c := s.createCollection(p.ID, "V1", "v1")
	s.createAPI(c.ID, map[string]any{"method": "GET", "endpoint": "/users", "response_body": "[]"})

	t.Run("json", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/collections/"+c.ID+"/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		export := decode[mock.CollectionExport](t, rec)
		assert.Equal(t, c.ID, export.Collection.ID)
		require.Len(t, export.APIs, 1)
		assert.Equal(t, "/users", export.APIs[0].Endpoint)
	})

	t.Run("yaml", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/collections/"+c.ID+"/export?format=yaml", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

		var export mock.CollectionExport
		require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &export))
		assert.Equal(t, "v1", export.Collection.Slug)
		require.Len(t, export.APIs, 1)
		assert.Equal(t, mock.MethodGet, export.APIs[0].Method)
	})

	t.Run("bad format", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/collections/"+c.ID+"/export?format=xml", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown collection", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/collections/nope/export", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRequestLogs(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/request-logs", map[string]any{
		"apiId":      "api-1",
		"url":        "http://localhost:5050/mock/shop/v1/users",
		"method":     "GET",
		"headers":    map[string]string{"accept": "application/json"},
		"query":      map[string]string{"page": "2"},
		"body":       strings.Repeat("x", 10_050),
		"response":   map[string]any{"status": 200},
		"durationMs": 12.5,
		"timestamp":  "2026-01-02T03:04:05Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, true, created["success"])
	logID, _ := created["id"].(string)
	require.NotEmpty(t, logID)

	rec = s.do(http.MethodPost, "/request-logs", map[string]any{"body": map[string]int{"a": 1}})
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("list newest first", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/request-logs", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		logs := decode[[]*mock.RequestLog](t, rec)
		require.Len(t, logs, 2)
		assert.Nil(t, logs[0].APIID)
		assert.Equal(t, `{"a":1}`, logs[0].RequestBody)
	})

	t.Run("filter by api id", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/request-logs?api_id=api-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		logs := decode[[]*mock.RequestLog](t, rec)
		require.Len(t, logs, 1)
		entry := logs[0]
		assert.Equal(t, logID, entry.ID)
		assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), entry.Timestamp.UTC())
		assert.Len(t, entry.RequestBody, 10_000+len("...(truncated)"))
		assert.True(t, strings.HasSuffix(entry.RequestBody, "...(truncated)"))
		assert.JSONEq(t, `{"status":200}`, string(entry.ResponseSent))

		var meta map[string]any
		require.NoError(t, json.Unmarshal(entry.RequestMeta, &meta))
		assert.Equal(t, "GET", meta["method"])
		assert.InDelta(t, 12.5, meta["durationMs"], 0.001)
	})

	t.Run("limit", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/request-logs?limit=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]*mock.RequestLog](t, rec), 1)

		rec = s.do(http.MethodGet, "/request-logs?limit=zero", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPreview(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	t.Run("renders json", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/preview", map[string]any{
			"response_body": `{"id": "{{params.id}}", "name": "{{body.name}}", "page": "{{query.page}}"}`,
			"params":        map[string]string{"id": "9"},
			"query":         map[string]string{"page": "3"},
			"body":          map[string]string{"name": "Ada"},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[PreviewResponse](t, rec)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "application/json", resp.ContentType)
		assert.JSONEq(t, `{"id":"9","name":"Ada","page":"3"}`, resp.Body)
	})

	t.Run("html escapes", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/preview", map[string]any{
			"response_type": "text/html",
			"response_body": "<p>{{headers.x-name}}</p>",
			"headers":       map[string]string{"X-Name": "<script>"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<p>&lt;script&gt;</p>", decode[PreviewResponse](t, rec).Body)
	})

	t.Run("template error", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/preview", map[string]any{"response_body": "{{unclosed"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "template_error", errorBody(t, rec)["error"])
	})

	t.Run("validation", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/preview", map[string]any{"response_type": "text/plain"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(http.MethodPost, "/preview", map[string]any{"response_body": "x", "response_type": "text/csv"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("nothing is persisted", func(t *testing.T) {
		projects, err := s.store.ListProjects(context.Background())
		require.NoError(t, err)
		assert.Empty(t, projects)
	})
}
