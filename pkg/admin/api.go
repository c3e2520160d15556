package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/apisim/pkg/engine"
	"github.com/getmockd/apisim/pkg/httputil"
	"github.com/getmockd/apisim/pkg/logging"
	"github.com/getmockd/apisim/pkg/store"
)

// AppName is reported by the health endpoint.
const AppName = "apisim"

// MaxRequestBodySize bounds management request bodies.
const MaxRequestBodySize = 2 << 20

// API exposes the management REST API over a store.
type API struct {
	store    store.Store
	renderer *engine.Renderer
	log      *slog.Logger
	now      func() time.Time
}

// NewAPI creates an API backed by st.
func NewAPI(st store.Store, opts ...Option) *API {
	a := &API{
		store:    st,
		renderer: engine.NewRenderer(nil),
		log:      logging.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns a mux serving every management route.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	return mux
}

// decodeJSON reads r's body into v. On failure it writes a 400 and
// returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body exceeds maximum allowed size")
			return false
		}
		httputil.WriteBadRequest(w, httputil.CodeInvalidJSON, httputil.ErrMsgInvalidJSON)
		return false
	}
	return true
}
