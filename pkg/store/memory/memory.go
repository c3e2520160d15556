// Package memory is a non-persistent store.Store backed by maps.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
)

// record wraps a stored value with its insertion sequence, which gives
// creation order independent of clock resolution.
type record[T any] struct {
	seq uint64
	val T
}

// Store is a thread-safe in-memory implementation of store.Store.
type Store struct {
	mu          sync.RWMutex
	seq         uint64
	projects    map[string]record[mock.Project]
	collections map[string]record[mock.Collection]
	apis        map[string]record[mock.API]
	logs        []record[mock.RequestLog]
}

var _ store.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		projects:    make(map[string]record[mock.Project]),
		collections: make(map[string]record[mock.Collection]),
		apis:        make(map[string]record[mock.API]),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

// CreateProject inserts p.
func (s *Store) CreateProject(_ context.Context, p *mock.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.projects {
		if r.val.Slug == p.Slug {
			return fmt.Errorf("project slug %q: %w", p.Slug, store.ErrConflict)
		}
	}
	s.projects[p.ID] = record[mock.Project]{seq: s.next(), val: *p}
	return nil
}

// GetProject returns a project by ID.
func (s *Store) GetProject(_ context.Context, id string) (*mock.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p := r.val
	return &p, nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(_ context.Context) ([]*mock.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]record[mock.Project], 0, len(s.projects))
	for _, r := range s.projects {
		recs = append(recs, r)
	}
	sortNewest(recs)
	out := make([]*mock.Project, len(recs))
	for i := range recs {
		out[i] = &recs[i].val
	}
	return out, nil
}

// DeleteProject removes a project, its collections and their APIs.
func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return store.ErrNotFound
	}
	for cid, c := range s.collections {
		if c.val.ProjectID == id {
			s.deleteCollectionLocked(cid)
		}
	}
	delete(s.projects, id)
	return nil
}

// CreateCollection inserts c.
func (s *Store) CreateCollection(_ context.Context, c *mock.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[c.ProjectID]; !ok {
		return fmt.Errorf("project %s: %w", c.ProjectID, store.ErrNotFound)
	}
	s.collections[c.ID] = record[mock.Collection]{seq: s.next(), val: *c}
	return nil
}

// GetCollection returns a collection by ID.
func (s *Store) GetCollection(_ context.Context, id string) (*mock.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.collections[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := r.val
	return &c, nil
}

// ListCollections returns the collections of a project, newest first.
func (s *Store) ListCollections(_ context.Context, projectID string) ([]*mock.Collection, error) {
	recs := s.filterCollections(func(c *mock.Collection) bool { return c.ProjectID == projectID })
	sortNewest(recs)
	return collectionValues(recs), nil
}

// CollectionsBySlug returns collections with slug in creation order.
func (s *Store) CollectionsBySlug(_ context.Context, slug string) ([]*mock.Collection, error) {
	recs := s.filterCollections(func(c *mock.Collection) bool { return c.Slug == slug })
	sortOldest(recs)
	return collectionValues(recs), nil
}

// DeleteCollection removes a collection and its APIs.
func (s *Store) DeleteCollection(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[id]; !ok {
		return store.ErrNotFound
	}
	s.deleteCollectionLocked(id)
	return nil
}

func (s *Store) deleteCollectionLocked(id string) {
	for aid, a := range s.apis {
		if a.val.CollectionID == id {
			delete(s.apis, aid)
		}
	}
	delete(s.collections, id)
}

func (s *Store) filterCollections(keep func(*mock.Collection) bool) []record[mock.Collection] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []record[mock.Collection]
	for _, r := range s.collections {
		if keep(&r.val) {
			recs = append(recs, r)
		}
	}
	return recs
}

func collectionValues(recs []record[mock.Collection]) []*mock.Collection {
	out := make([]*mock.Collection, len(recs))
	for i := range recs {
		out[i] = &recs[i].val
	}
	return out
}

// CreateAPI inserts a.
func (s *Store) CreateAPI(_ context.Context, a *mock.API) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[a.CollectionID]; !ok {
		return fmt.Errorf("collection %s: %w", a.CollectionID, store.ErrNotFound)
	}
	if err := s.checkCollisionLocked(a, ""); err != nil {
		return err
	}
	s.apis[a.ID] = record[mock.API]{seq: s.next(), val: *a}
	return nil
}

// GetAPI returns an API by ID.
func (s *Store) GetAPI(_ context.Context, id string) (*mock.API, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.apis[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a := r.val
	return &a, nil
}

// ListAPIs returns the APIs of a collection, newest first.
func (s *Store) ListAPIs(_ context.Context, collectionID string) ([]*mock.API, error) {
	recs := s.filterAPIs(func(a *mock.API) bool { return a.CollectionID == collectionID })
	sortNewest(recs)
	return apiValues(recs), nil
}

// APIsByCollectionMethod returns matching APIs in creation order.
func (s *Store) APIsByCollectionMethod(_ context.Context, collectionID string, method mock.Method) ([]*mock.API, error) {
	recs := s.filterAPIs(func(a *mock.API) bool {
		return a.CollectionID == collectionID && a.Method == method
	})
	sortOldest(recs)
	return apiValues(recs), nil
}

// UpdateAPI replaces an existing API, keeping its creation order.
func (s *Store) UpdateAPI(_ context.Context, a *mock.API) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.apis[a.ID]
	if !ok {
		return store.ErrNotFound
	}
	if err := s.checkCollisionLocked(a, a.ID); err != nil {
		return err
	}
	r.val = *a
	s.apis[a.ID] = r
	return nil
}

// DeleteAPI removes an API.
func (s *Store) DeleteAPI(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apis[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.apis, id)
	return nil
}

func (s *Store) checkCollisionLocked(a *mock.API, excludeID string) error {
	for id, r := range s.apis {
		if id == excludeID {
			continue
		}
		if r.val.CollectionID == a.CollectionID && r.val.Method == a.Method && r.val.Endpoint == a.Endpoint {
			return fmt.Errorf("%s %s: %w", a.Method, a.Endpoint, store.ErrConflict)
		}
	}
	return nil
}

func (s *Store) filterAPIs(keep func(*mock.API) bool) []record[mock.API] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []record[mock.API]
	for _, r := range s.apis {
		if keep(&r.val) {
			recs = append(recs, r)
		}
	}
	return recs
}

func apiValues(recs []record[mock.API]) []*mock.API {
	out := make([]*mock.API, len(recs))
	for i := range recs {
		out[i] = &recs[i].val
	}
	return out
}

// WriteRequestLog appends a request log entry.
func (s *Store) WriteRequestLog(_ context.Context, e *mock.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, record[mock.RequestLog]{seq: s.next(), val: *e})
	return nil
}

// ListRequestLogs returns entries newest first.
func (s *Store) ListRequestLogs(_ context.Context, f store.RequestLogFilter) ([]*mock.RequestLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit := f.EffectiveLimit()
	out := make([]*mock.RequestLog, 0, min(limit, len(s.logs)))
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.logs[i].val
		if f.APIID != "" && (e.APIID == nil || *e.APIID != f.APIID) {
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

func sortOldest[T any](recs []record[T]) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
}

func sortNewest[T any](recs []record[T]) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
}
