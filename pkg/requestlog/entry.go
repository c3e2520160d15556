package requestlog

import (
	"encoding/json"
	"time"

	"github.com/getmockd/apisim/internal/id"
	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/util"
)

// Entry is a persisted request log record.
type Entry = mock.RequestLog

// Meta describes the request side of a served mock call.
type Meta struct {
	Error   string            `json:"error,omitempty"`
	URL     string            `json:"url,omitempty"`
	Method  string            `json:"method,omitempty"`
	Query   map[string]string `json:"query"`
	Headers map[string]string `json:"headers"`
	Params  map[string]string `json:"params"`
	// DurationMs is only set for client-submitted logs.
	DurationMs *float64 `json:"durationMs,omitempty"`
}

// Response describes what the gateway sent back.
type Response struct {
	StatusCode   int               `json:"status_code"`
	ResponseType mock.ResponseType `json:"response_type"`
	// ResponseBody is the parsed JSON value for JSON responses that parsed,
	// otherwise the rendered string.
	ResponseBody any `json:"response_body"`
}

// Failure is recorded as the response of a call that failed to render.
type Failure struct {
	Error string `json:"error"`
}

// NewSuccessEntry builds the entry for a successfully served call.
func NewSuccessEntry(apiID string, meta Meta, requestBody string, resp Response) *Entry {
	if s, ok := resp.ResponseBody.(string); ok {
		resp.ResponseBody = util.TruncateBody(s, util.MaxLogBodySize)
	} else if raw := marshal(resp.ResponseBody); len(raw) > util.MaxLogBodySize {
		resp.ResponseBody = util.TruncateBody(string(raw), util.MaxLogBodySize)
	}
	return newEntry(&apiID, meta, requestBody, resp, time.Now())
}

// NewFailureEntry builds the entry for a call that failed after matching.
func NewFailureEntry(apiID string, meta Meta, requestBody string, err error) *Entry {
	meta.Error = err.Error()
	return newEntry(&apiID, meta, requestBody, Failure{Error: err.Error()}, time.Now())
}

// NewEntry builds an entry from already-encoded parts, truncating the
// request body. A nil apiID records a log not tied to any API.
func NewEntry(apiID *string, meta any, requestBody string, response any, at time.Time) *Entry {
	return newEntry(apiID, meta, requestBody, response, at)
}

func newEntry(apiID *string, meta any, requestBody string, response any, at time.Time) *Entry {
	if apiID != nil && *apiID == "" {
		apiID = nil
	}
	if at.IsZero() {
		at = time.Now()
	}
	return &Entry{
		ID:           id.Sortable(),
		APIID:        apiID,
		Timestamp:    at.UTC(),
		RequestMeta:  marshal(meta),
		RequestBody:  util.TruncateBody(requestBody, util.MaxLogBodySize),
		ResponseSent: marshal(response),
	}
}

func marshal(v any) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
