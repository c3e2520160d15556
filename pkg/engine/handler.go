package engine

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/apisim/pkg/httputil"
	"github.com/getmockd/apisim/pkg/logging"
	"github.com/getmockd/apisim/pkg/requestlog"
	"github.com/getmockd/apisim/pkg/template"
)

// MaxRequestBodySize bounds how much of a mock request body is read.
const MaxRequestBodySize = 10 << 20

// HeaderAPIID carries the id of the API that served a mock response.
const HeaderAPIID = "X-Apisim-Api-Id"

// MaxNearMisses caps the candidates listed when no API matches.
const MaxNearMisses = 3

// Handler is the mock gateway. It expects paths relative to the mock
// prefix, as produced by http.StripPrefix.
type Handler struct {
	matcher  *Matcher
	renderer *Renderer
	logs     requestlog.Logger
	log      *slog.Logger
	sleep    func(time.Duration)
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithRequestLog sets where served calls are recorded.
func WithRequestLog(l requestlog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logs = l
		}
	}
}

// WithTemplateEngine replaces the template engine used for responses.
func WithTemplateEngine(e *template.Engine) Option {
	return func(h *Handler) {
		h.renderer = NewRenderer(e)
	}
}

// NewHandler creates the gateway over s.
func NewHandler(s RouteStore, opts ...Option) *Handler {
	h := &Handler{
		matcher:  NewMatcher(s),
		renderer: NewRenderer(nil),
		logs:     requestlog.Discard,
		log:      logging.Nop(),
		sleep:    sleepTimer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles one mock request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.log.Warn("request body too large", "path", r.URL.Path, "limit", MaxRequestBodySize)
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body exceeds maximum allowed size")
			return
		}
		httputil.WriteError(w, http.StatusBadRequest, "invalid_body", "Failed to read request body")
		return
	}

	match, err := h.matcher.Resolve(r.Context(), r.Method, r.URL.EscapedPath())
	if err != nil {
		h.writeResolveError(w, r, err)
		return
	}
	api := match.API

	h.log.Debug("request matched",
		"method", r.Method,
		"path", r.URL.Path,
		"api_id", api.ID,
		"endpoint", api.Endpoint,
	)

	tctx := template.NewRequestContext(r, body, match.Params)
	meta := requestlog.Meta{
		Query:   tctx.Query,
		Headers: tctx.Headers,
		Params:  tctx.Params,
	}

	rendered, err := h.renderer.Render(api, tctx)
	if err != nil {
		h.log.Error("failed to render mock response", "api_id", api.ID, "error", err)
		h.logs.Log(requestlog.NewFailureEntry(api.ID, meta, string(body), err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to process mock request", err.Error())
		return
	}

	if d := api.Delay(); d > 0 {
		h.sleep(d)
	}

	w.Header().Set("Content-Type", rendered.ContentType)
	w.Header().Set(HeaderAPIID, api.ID)
	w.WriteHeader(rendered.StatusCode)
	if r.Method != http.MethodHead {
		_, _ = w.Write(rendered.Body)
	}

	h.logs.Log(requestlog.NewSuccessEntry(api.ID, meta, string(body), requestlog.Response{
		StatusCode:   rendered.StatusCode,
		ResponseType: api.ResponseType,
		ResponseBody: rendered.Value,
	}))
}

func (h *Handler) writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	target, _ := ParseTarget(r.URL.Path)
	switch {
	case errors.Is(err, ErrCollectionNotFound):
		h.log.Warn("mock collection not found", "method", r.Method, "path", r.URL.Path)
		httputil.WriteError(w, http.StatusNotFound, "collection_not_found",
			"Project or collection not found: "+target.Project+"/"+target.Collection)
	case errors.Is(err, ErrAPINotFound):
		h.log.Warn("no mock api matched",
			"method", r.Method,
			"path", r.URL.Path,
			"near_misses", h.nearMissReasons(r),
		)
		httputil.WriteError(w, http.StatusNotFound, "api_not_found",
			"No mock API matches "+r.Method+" "+target.Rest)
	default:
		h.log.Error("failed to resolve mock request", "method", r.Method, "path", r.URL.Path, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", httputil.ErrMsgInternalError)
	}
}

// nearMissReasons summarizes the closest APIs for the 404 warning.
func (h *Handler) nearMissReasons(r *http.Request) []string {
	misses, err := h.matcher.NearMisses(r.Context(), r.Method, r.URL.EscapedPath(), MaxNearMisses)
	if err != nil {
		h.log.Debug("near miss lookup failed", "error", err)
		return nil
	}
	reasons := make([]string, 0, len(misses))
	for _, nm := range misses {
		reasons = append(reasons, nm.Method+" "+nm.Endpoint+": "+nm.Reason)
	}
	return reasons
}

// sleepTimer waits for d. It does not return early when the client goes away.
func sleepTimer(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	<-t.C
}
