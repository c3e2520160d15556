package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getmockd/apisim/pkg/httputil"
	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
)

// handleListProjects handles GET /projects.
func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.store.ListProjects(r.Context())
	if err != nil {
		a.writeError(w, err, "list projects", "")
		return
	}
	httputil.WriteOK(w, nonNil(projects))
}

// handleCreateProject handles POST /projects.
func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in mock.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := in.Build(a.now())
	if err != nil {
		a.writeError(w, err, "create project", "")
		return
	}
	if err := a.store.CreateProject(r.Context(), p); err != nil {
		if errors.Is(err, store.ErrConflict) {
			httputil.WriteConflict(w, httputil.CodeConflict,
				fmt.Sprintf("A project with slug %q already exists", p.Slug))
			return
		}
		a.writeError(w, err, "create project", "")
		return
	}
	a.log.Info("project created", "id", p.ID, "slug", p.Slug)
	httputil.WriteCreated(w, p)
}

// handleGetProject handles GET /projects/{id}.
func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err, "get project", ErrMsgProjectNotFound)
		return
	}
	httputil.WriteOK(w, p)
}

// handleDeleteProject handles DELETE /projects/{id}.
func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.store.DeleteProject(r.Context(), id); err != nil {
		a.writeError(w, err, "delete project", ErrMsgProjectNotFound)
		return
	}
	a.log.Info("project deleted", "id", id)
	httputil.WriteSuccess(w)
}
