// Error handling utilities for the management API.

package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getmockd/apisim/pkg/httputil"
	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
)

// Messages for resources that do not exist.
const (
	ErrMsgProjectNotFound    = "Project not found"
	ErrMsgCollectionNotFound = "Collection not found"
	ErrMsgAPINotFound        = "API not found"
)

// CodeCollision is the error code of a method+endpoint conflict.
const CodeCollision = "API collision detected"

// writeError maps err to a response. notFound is the message used when err
// is store.ErrNotFound; store failures are logged and sanitized.
func (a *API) writeError(w http.ResponseWriter, err error, operation, notFound string) {
	if errors.Is(err, store.ErrNotFound) && notFound != "" {
		httputil.WriteNotFound(w, httputil.CodeNotFound, notFound)
		return
	}
	httputil.WriteDomainError(w, a.log, err, operation)
}

// writeAPIError is writeError for API create/update, where a conflict is a
// method+endpoint collision within the collection.
func (a *API) writeAPIError(w http.ResponseWriter, err error, api *mock.API, operation, notFound string) {
	if errors.Is(err, store.ErrConflict) {
		httputil.WriteConflict(w, CodeCollision, fmt.Sprintf(
			"An API with method %s and endpoint %s already exists in this collection", api.Method, api.Endpoint))
		return
	}
	a.writeError(w, err, operation, notFound)
}
