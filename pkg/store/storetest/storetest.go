// Package storetest holds a conformance suite run against every
// store.Store backend.
package storetest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite.
func Run(t *testing.T, newStore Factory) {
	tests := map[string]func(t *testing.T, s store.Store){
		"ProjectLifecycle":          testProjectLifecycle,
		"ProjectSlugConflict":       testProjectSlugConflict,
		"CollectionRequiresProject": testCollectionRequiresProject,
		"CollectionsBySlugOrder":    testCollectionsBySlugOrder,
		"APICollision":              testAPICollision,
		"APIUpdate":                 testAPIUpdate,
		"APIsByMethodOrder":         testAPIsByMethodOrder,
		"DeleteProjectCascades":     testDeleteProjectCascades,
		"DeleteCollectionCascades":  testDeleteCollectionCascades,
		"RequestLogs":               testRequestLogs,
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

var base = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func at(i int) time.Time { return base.Add(time.Duration(i) * time.Second) }

func seedProject(t *testing.T, s store.Store, id, slug string, i int) *mock.Project {
	t.Helper()
	p := &mock.Project{ID: id, Name: slug, Slug: slug, CreatedAt: at(i)}
	require.NoError(t, s.CreateProject(context.Background(), p))
	return p
}

func seedCollection(t *testing.T, s store.Store, id, projectID, slug string, i int) *mock.Collection {
	t.Helper()
	c := &mock.Collection{ID: id, ProjectID: projectID, Name: slug, Slug: slug, CreatedAt: at(i)}
	require.NoError(t, s.CreateCollection(context.Background(), c))
	return c
}

func seedAPI(t *testing.T, s store.Store, id, collectionID string, method mock.Method, endpoint string, i int) *mock.API {
	t.Helper()
	a := &mock.API{
		ID: id, CollectionID: collectionID, Method: method, Endpoint: endpoint,
		StatusCode: 200, ResponseType: mock.ResponseJSON, ResponseBody: `{"id":"` + id + `"}`,
		CreatedAt: at(i),
	}
	require.NoError(t, s.CreateAPI(context.Background(), a))
	return a
}

func testProjectLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedProject(t, s, "p1", "alpha", 1)
	seedProject(t, s, "p2", "beta", 2)

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Slug)
	assert.True(t, got.CreatedAt.Equal(at(1)))

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID, "newest first")

	require.NoError(t, s.DeleteProject(ctx, "p1"))
	_, err = s.GetProject(ctx, "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProject(ctx, "p1"), store.ErrNotFound)
}

func testProjectSlugConflict(t *testing.T, s store.Store) {
	seedProject(t, s, "p1", "alpha", 1)
	err := s.CreateProject(context.Background(), &mock.Project{ID: "p2", Name: "Alpha", Slug: "alpha", CreatedAt: at(2)})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func testCollectionRequiresProject(t *testing.T, s store.Store) {
	err := s.CreateCollection(context.Background(), &mock.Collection{ID: "c1", ProjectID: "missing", Slug: "x", CreatedAt: at(1)})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetCollection(context.Background(), "c1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testCollectionsBySlugOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedProject(t, s, "p1", "alpha", 1)
	seedProject(t, s, "p2", "beta", 2)
	// same timestamp, so only insertion order can decide
	seedCollection(t, s, "c-b", "p2", "shared", 5)
	seedCollection(t, s, "c-a", "p1", "shared", 5)
	seedCollection(t, s, "c-x", "p1", "other", 6)

	got, err := s.CollectionsBySlug(ctx, "shared")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c-b", got[0].ID)
	assert.Equal(t, "c-a", got[1].ID)

	list, err := s.ListCollections(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c-x", list[0].ID)

	none, err := s.CollectionsBySlug(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testAPICollision(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedProject(t, s, "p1", "alpha", 1)
	seedCollection(t, s, "c1", "p1", "col", 2)
	seedCollection(t, s, "c2", "p1", "col2", 3)
	seedAPI(t, s, "a1", "c1", mock.MethodGet, "/users/:id", 4)

	dup := &mock.API{ID: "a2", CollectionID: "c1", Method: mock.MethodGet, Endpoint: "/users/:id", StatusCode: 200, ResponseType: mock.ResponseJSON, CreatedAt: at(5)}
	assert.ErrorIs(t, s.CreateAPI(ctx, dup), store.ErrConflict)

	// different method or different collection is fine
	seedAPI(t, s, "a3", "c1", mock.MethodPost, "/users/:id", 6)
	seedAPI(t, s, "a4", "c2", mock.MethodGet, "/users/:id", 7)

	orphan := &mock.API{ID: "a5", CollectionID: "missing", Method: mock.MethodGet, Endpoint: "/x", CreatedAt: at(8)}
	assert.ErrorIs(t, s.CreateAPI(ctx, orphan), store.ErrNotFound)
}

func testAPIUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedProject(t, s, "p1", "alpha", 1)
	seedCollection(t, s, "c1", "p1", "col", 2)
	a1 := seedAPI(t, s, "a1", "c1", mock.MethodGet, "/one", 3)
	seedAPI(t, s, "a2", "c1", mock.MethodGet, "/two", 4)

	// updating without changing the key must not collide with itself
	updated := *a1
	updated.StatusCode = 201
	ts := at(10)
	updated.UpdatedAt = &ts
	require.NoError(t, s.UpdateAPI(ctx, &updated))

	got, err := s.GetAPI(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 201, got.StatusCode)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.Equal(ts))

	clash := *got
	clash.Endpoint = "/two"
	assert.ErrorIs(t, s.UpdateAPI(ctx, &clash), store.ErrConflict)

	missing := *got
	missing.ID = "nope"
	assert.ErrorIs(t, s.UpdateAPI(ctx, &missing), store.ErrNotFound)

	require.NoError(t, s.DeleteAPI(ctx, "a2"))
	assert.ErrorIs(t, s.DeleteAPI(ctx, "a2"), store.ErrNotFound)
}

func testAPIsByMethodOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedProject(t, s, "p1", "alpha", 1)
	seedCollection(t, s, "c1", "p1", "col", 2)
	seedAPI(t, s, "a1", "c1", mock.MethodGet, "/users/:id", 3)
	seedAPI(t, s, "a2", "c1", mock.MethodGet, "/users/me", 3)
	seedAPI(t, s, "a3", "c1", mock.MethodPost, "/users", 3)

	got, err := s.APIsByCollectionMethod(ctx, "c1", mock.MethodGet)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "a2", got[1].ID)

	// an update keeps the creation position
	a1, err := s.GetAPI(ctx, "a1")
	require.NoError(t, err)
	a1.ResponseBody = "changed"
	require.NoError(t, s.UpdateAPI(ctx, a1))
	got, err = s.APIsByCollectionMethod(ctx, "c1", mock.MethodGet)
	require.NoError(t, err)
	assert.Equal(t, "a1", got[0].ID)

	list, err := s.ListAPIs(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func testDeleteProjectCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedProject(t, s, "p1", "alpha", 1)
	seedProject(t, s, "p2", "beta", 2)
	seedCollection(t, s, "c1", "p1", "col", 3)
	seedCollection(t, s, "c2", "p2", "col", 4)
	seedAPI(t, s, "a1", "c1", mock.MethodGet, "/x", 5)
	seedAPI(t, s, "a2", "c2", mock.MethodGet, "/x", 6)

	require.NoError(t, s.DeleteProject(ctx, "p1"))

	_, err := s.GetCollection(ctx, "c1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetAPI(ctx, "a1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetAPI(ctx, "a2")
	assert.NoError(t, err)
	cols, err := s.CollectionsBySlug(ctx, "col")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "c2", cols[0].ID)
}

func testDeleteCollectionCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedProject(t, s, "p1", "alpha", 1)
	seedCollection(t, s, "c1", "p1", "col", 2)
	seedAPI(t, s, "a1", "c1", mock.MethodGet, "/x", 3)

	require.NoError(t, s.DeleteCollection(ctx, "c1"))
	_, err := s.GetAPI(ctx, "a1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCollection(ctx, "c1"), store.ErrNotFound)

	_, err = s.GetProject(ctx, "p1")
	assert.NoError(t, err)
}

func testRequestLogs(t *testing.T, s store.Store) {
	ctx := context.Background()
	a1, a2 := "a1", "a2"
	entries := []*mock.RequestLog{
		{ID: "01", APIID: &a1, Timestamp: at(1), RequestMeta: json.RawMessage(`{"query":{}}`), RequestBody: "one", ResponseSent: json.RawMessage(`{"status_code":200}`)},
		{ID: "02", APIID: &a2, Timestamp: at(2), RequestBody: "two"},
		{ID: "03", APIID: &a1, Timestamp: at(3), RequestBody: "three"},
		{ID: "04", Timestamp: at(4), RequestBody: "four"},
	}
	for _, e := range entries {
		require.NoError(t, s.WriteRequestLog(ctx, e))
	}

	all, err := s.ListRequestLogs(ctx, store.RequestLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "04", all[0].ID)
	assert.Nil(t, all[0].APIID)

	forA1, err := s.ListRequestLogs(ctx, store.RequestLogFilter{APIID: "a1"})
	require.NoError(t, err)
	require.Len(t, forA1, 2)
	assert.Equal(t, "03", forA1[0].ID)
	assert.Equal(t, "01", forA1[1].ID)
	assert.JSONEq(t, `{"query":{}}`, string(forA1[1].RequestMeta))
	assert.JSONEq(t, `{"status_code":200}`, string(forA1[1].ResponseSent))

	limited, err := s.ListRequestLogs(ctx, store.RequestLogFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "04", limited[0].ID)
}
