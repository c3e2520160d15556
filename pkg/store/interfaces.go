package store

import (
	"context"

	"github.com/getmockd/apisim/pkg/mock"
)

// ProjectStore persists projects.
type ProjectStore interface {
	// CreateProject inserts p. Returns ErrConflict when p.Slug is taken.
	CreateProject(ctx context.Context, p *mock.Project) error
	GetProject(ctx context.Context, id string) (*mock.Project, error)
	// ListProjects returns all projects, newest first.
	ListProjects(ctx context.Context) ([]*mock.Project, error)
	// DeleteProject removes the project with its collections and their APIs.
	DeleteProject(ctx context.Context, id string) error
}

// CollectionStore persists collections.
type CollectionStore interface {
	// CreateCollection inserts c. Returns ErrNotFound when the project is missing.
	CreateCollection(ctx context.Context, c *mock.Collection) error
	GetCollection(ctx context.Context, id string) (*mock.Collection, error)
	// ListCollections returns the collections of a project, newest first.
	ListCollections(ctx context.Context, projectID string) ([]*mock.Collection, error)
	// CollectionsBySlug returns every collection with the given slug across
	// all projects, in creation order.
	CollectionsBySlug(ctx context.Context, slug string) ([]*mock.Collection, error)
	// DeleteCollection removes the collection and its APIs.
	DeleteCollection(ctx context.Context, id string) error
}

// APIStore persists mock API definitions.
type APIStore interface {
	// CreateAPI inserts a. Returns ErrNotFound when the collection is
	// missing and ErrConflict when method+endpoint is already used in it.
	CreateAPI(ctx context.Context, a *mock.API) error
	GetAPI(ctx context.Context, id string) (*mock.API, error)
	// ListAPIs returns the APIs of a collection, newest first.
	ListAPIs(ctx context.Context, collectionID string) ([]*mock.API, error)
	// APIsByCollectionMethod returns the APIs of a collection answering to
	// method, in creation order.
	APIsByCollectionMethod(ctx context.Context, collectionID string, method mock.Method) ([]*mock.API, error)
	// UpdateAPI replaces the stored API with the same ID. The collision
	// check excludes the API itself.
	UpdateAPI(ctx context.Context, a *mock.API) error
	DeleteAPI(ctx context.Context, id string) error
}

// RequestLogFilter narrows ListRequestLogs.
type RequestLogFilter struct {
	APIID string
	Limit int
}

// DefaultRequestLogLimit applies when RequestLogFilter.Limit is not positive.
const DefaultRequestLogLimit = 100

// EffectiveLimit returns f.Limit or the default.
func (f RequestLogFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultRequestLogLimit
	}
	return f.Limit
}

// RequestLogStore persists request log entries.
type RequestLogStore interface {
	WriteRequestLog(ctx context.Context, e *mock.RequestLog) error
	// ListRequestLogs returns matching entries, newest first.
	ListRequestLogs(ctx context.Context, f RequestLogFilter) ([]*mock.RequestLog, error)
}

// Store aggregates every persistence concern.
type Store interface {
	ProjectStore
	CollectionStore
	APIStore
	RequestLogStore
	Close() error
}
