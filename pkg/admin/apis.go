package admin

import (
	"net/http"

	"github.com/getmockd/apisim/pkg/httputil"
	"github.com/getmockd/apisim/pkg/mock"
)

// handleListAPIs handles GET /collections/{id}/apis.
func (a *API) handleListAPIs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collectionID := r.PathValue("id")
	if _, err := a.store.GetCollection(ctx, collectionID); err != nil {
		a.writeError(w, err, "get collection", ErrMsgCollectionNotFound)
		return
	}
	apis, err := a.store.ListAPIs(ctx, collectionID)
	if err != nil {
		a.writeError(w, err, "list apis", "")
		return
	}
	httputil.WriteOK(w, nonNil(apis))
}

// handleCreateAPI handles POST /collections/{id}/apis.
func (a *API) handleCreateAPI(w http.ResponseWriter, r *http.Request) {
	var in mock.APIInput
	if !decodeJSON(w, r, &in) {
		return
	}
	api, err := in.Build(r.PathValue("id"), a.now())
	if err != nil {
		a.writeError(w, err, "create api", "")
		return
	}
	if err := a.store.CreateAPI(r.Context(), api); err != nil {
		a.writeAPIError(w, err, api, "create api", ErrMsgCollectionNotFound)
		return
	}
	a.log.Info("api created", "id", api.ID, "method", api.Method, "endpoint", api.Endpoint)
	httputil.WriteCreated(w, api)
}

// handleGetAPI handles GET /apis/{id}.
func (a *API) handleGetAPI(w http.ResponseWriter, r *http.Request) {
	api, err := a.store.GetAPI(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err, "get api", ErrMsgAPINotFound)
		return
	}
	httputil.WriteOK(w, api)
}

// handleUpdateAPI handles PUT /apis/{id}. Only the fields present in the
// body are changed.
func (a *API) handleUpdateAPI(w http.ResponseWriter, r *http.Request) {
	var patch mock.APIPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	ctx := r.Context()
	current, err := a.store.GetAPI(ctx, r.PathValue("id"))
	if err != nil {
		a.writeError(w, err, "get api", ErrMsgAPINotFound)
		return
	}
	updated, err := patch.Apply(current, a.now())
	if err != nil {
		a.writeError(w, err, "update api", "")
		return
	}
	if err := a.store.UpdateAPI(ctx, updated); err != nil {
		a.writeAPIError(w, err, updated, "update api", ErrMsgAPINotFound)
		return
	}
	a.log.Info("api updated", "id", updated.ID, "method", updated.Method, "endpoint", updated.Endpoint)
	httputil.WriteOK(w, updated)
}

// handleDeleteAPI handles DELETE /apis/{id}.
func (a *API) handleDeleteAPI(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.store.DeleteAPI(r.Context(), id); err != nil {
		a.writeError(w, err, "delete api", ErrMsgAPINotFound)
		return
	}
	a.log.Info("api deleted", "id", id)
	httputil.WriteSuccess(w)
}
