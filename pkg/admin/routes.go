// Route registration for the management API.

package admin

import (
	"net/http"
)

// RegisterRoutes adds every management route to mux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", a.handleHealth)

	// Projects
	mux.HandleFunc("GET /projects", a.handleListProjects)
	mux.HandleFunc("POST /projects", a.handleCreateProject)
	mux.HandleFunc("GET /projects/{id}", a.handleGetProject)
	mux.HandleFunc("DELETE /projects/{id}", a.handleDeleteProject)

	// Collections
	mux.HandleFunc("GET /projects/{id}/collections", a.handleListCollections)
	mux.HandleFunc("POST /projects/{id}/collections", a.handleCreateCollection)
	mux.HandleFunc("GET /collections/{id}", a.handleGetCollection)
	mux.HandleFunc("DELETE /collections/{id}", a.handleDeleteCollection)
	mux.HandleFunc("GET /collections/{id}/export", a.handleExportCollection)

	// Mock APIs
	mux.HandleFunc("GET /collections/{id}/apis", a.handleListAPIs)
	mux.HandleFunc("POST /collections/{id}/apis", a.handleCreateAPI)
	mux.HandleFunc("GET /apis/{id}", a.handleGetAPI)
	mux.HandleFunc("PUT /apis/{id}", a.handleUpdateAPI)
	mux.HandleFunc("DELETE /apis/{id}", a.handleDeleteAPI)

	// Request logs
	mux.HandleFunc("POST /request-logs", a.handleCreateRequestLog)
	mux.HandleFunc("GET /request-logs", a.handleListRequestLogs)

	// Template preview
	mux.HandleFunc("POST /preview", a.handlePreview)
}
