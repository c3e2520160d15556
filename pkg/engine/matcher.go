package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/apisim/internal/matching"
	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
)

var (
	// ErrCollectionNotFound means no project/collection pair matched the
	// first two path segments.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrAPINotFound means the collection exists but none of its APIs
	// matched the method and remaining path.
	ErrAPINotFound = errors.New("api not found")
)

// Target is a mock request path split into its routing parts.
type Target struct {
	Project    string
	Collection string
	// Rest is the remainder of the path, always starting with "/".
	Rest string
}

// ParseTarget splits "/{project}/{collection}/{rest...}". ok is false when
// fewer than two non-empty segments are present.
func ParseTarget(path string) (Target, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Target{}, false
	}
	t := Target{Project: parts[0], Collection: parts[1], Rest: "/"}
	if len(parts) == 3 {
		t.Rest = "/" + parts[2]
	}
	return t, true
}

// Match is a resolved mock API.
type Match struct {
	Project    *mock.Project
	Collection *mock.Collection
	API        *mock.API
	Params     map[string]string
}

// RouteStore is the subset of the store the matcher reads.
type RouteStore interface {
	GetProject(ctx context.Context, id string) (*mock.Project, error)
	CollectionsBySlug(ctx context.Context, slug string) ([]*mock.Collection, error)
	APIsByCollectionMethod(ctx context.Context, collectionID string, method mock.Method) ([]*mock.API, error)
	ListAPIs(ctx context.Context, collectionID string) ([]*mock.API, error)
}

// Matcher resolves mock requests against the stored definitions.
type Matcher struct {
	store RouteStore
}

// NewMatcher creates a Matcher reading from s.
func NewMatcher(s RouteStore) *Matcher {
	return &Matcher{store: s}
}

// Resolve finds the API answering method and path, where path is relative
// to the mock prefix. The first collection whose project slug matches wins,
// then the first API (in creation order) whose endpoint pattern matches.
func (m *Matcher) Resolve(ctx context.Context, method, path string) (*Match, error) {
	target, ok := ParseTarget(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, path)
	}

	project, collection, err := m.resolveCollection(ctx, target)
	if err != nil {
		return nil, err
	}

	apis, err := m.store.APIsByCollectionMethod(ctx, collection.ID, mock.Method(strings.ToUpper(method)))
	if err != nil {
		return nil, fmt.Errorf("list apis: %w", err)
	}
	for _, api := range apis {
		if params, ok := matching.MatchPath(api.Endpoint, target.Rest); ok {
			return &Match{
				Project:    project,
				Collection: collection,
				API:        api,
				Params:     params,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", ErrAPINotFound, strings.ToUpper(method), target.Rest)
}

// NearMisses explains a miss: it ranks every API of the addressed
// collection by how close it came to method and path.
func (m *Matcher) NearMisses(ctx context.Context, method, path string, limit int) ([]matching.NearMiss, error) {
	target, ok := ParseTarget(path)
	if !ok {
		return nil, nil
	}
	_, collection, err := m.resolveCollection(ctx, target)
	if err != nil {
		return nil, err
	}
	apis, err := m.store.ListAPIs(ctx, collection.ID)
	if err != nil {
		return nil, fmt.Errorf("list apis: %w", err)
	}

	candidates := make([]matching.Candidate, 0, len(apis))
	for _, api := range apis {
		candidates = append(candidates, matching.Candidate{
			ID:       api.ID,
			Method:   string(api.Method),
			Endpoint: api.Endpoint,
		})
	}
	return matching.FindNearMisses(candidates, method, target.Rest, limit), nil
}

func (m *Matcher) resolveCollection(ctx context.Context, target Target) (*mock.Project, *mock.Collection, error) {
	collections, err := m.store.CollectionsBySlug(ctx, target.Collection)
	if err != nil {
		return nil, nil, fmt.Errorf("list collections: %w", err)
	}
	for _, c := range collections {
		project, err := m.store.GetProject(ctx, c.ProjectID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("get project: %w", err)
		}
		if project.Slug == target.Project {
			return project, c, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s/%s", ErrCollectionNotFound, target.Project, target.Collection)
}
