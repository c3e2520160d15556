package admin

import (
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/apisim/pkg/httputil"
	"github.com/getmockd/apisim/pkg/mock"
)

// handleListCollections handles GET /projects/{id}/collections.
func (a *API) handleListCollections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")
	if _, err := a.store.GetProject(ctx, projectID); err != nil {
		a.writeError(w, err, "get project", ErrMsgProjectNotFound)
		return
	}
	collections, err := a.store.ListCollections(ctx, projectID)
	if err != nil {
		a.writeError(w, err, "list collections", "")
		return
	}
	httputil.WriteOK(w, nonNil(collections))
}

// handleCreateCollection handles POST /projects/{id}/collections.
func (a *API) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var in mock.CollectionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := in.Build(r.PathValue("id"), a.now())
	if err != nil {
		a.writeError(w, err, "create collection", "")
		return
	}
	if err := a.store.CreateCollection(r.Context(), c); err != nil {
		a.writeError(w, err, "create collection", ErrMsgProjectNotFound)
		return
	}
	a.log.Info("collection created", "id", c.ID, "project_id", c.ProjectID, "slug", c.Slug)
	httputil.WriteCreated(w, c)
}

// handleGetCollection handles GET /collections/{id}.
func (a *API) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	c, err := a.store.GetCollection(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err, "get collection", ErrMsgCollectionNotFound)
		return
	}
	httputil.WriteOK(w, c)
}

// handleDeleteCollection handles DELETE /collections/{id}.
func (a *API) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.store.DeleteCollection(r.Context(), id); err != nil {
		a.writeError(w, err, "delete collection", ErrMsgCollectionNotFound)
		return
	}
	a.log.Info("collection deleted", "id", id)
	httputil.WriteSuccess(w)
}

// handleExportCollection handles GET /collections/{id}/export.
// ?format=yaml returns YAML instead of JSON.
func (a *API) handleExportCollection(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "yaml" {
		httputil.WriteBadRequest(w, httputil.CodeValidation, "format must be json or yaml")
		return
	}

	ctx := r.Context()
	c, err := a.store.GetCollection(ctx, r.PathValue("id"))
	if err != nil {
		a.writeError(w, err, "export collection", ErrMsgCollectionNotFound)
		return
	}
	apis, err := a.store.ListAPIs(ctx, c.ID)
	if err != nil {
		a.writeError(w, err, "export collection", "")
		return
	}
	export := mock.CollectionExport{Collection: c, APIs: nonNil(apis)}

	if format != "yaml" {
		httputil.WriteOK(w, export)
		return
	}
	out, err := yaml.Marshal(export)
	if err != nil {
		a.writeError(w, err, "export collection", "")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
