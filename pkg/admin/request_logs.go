package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/getmockd/apisim/pkg/httputil"
	"github.com/getmockd/apisim/pkg/requestlog"
	"github.com/getmockd/apisim/pkg/store"
)

// RequestLogInput is a log submitted by a client that called a mock itself,
// such as an API tester.
type RequestLogInput struct {
	APIID      string            `json:"apiId"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	Query      map[string]string `json:"query"`
	Params     map[string]string `json:"params"`
	Body       json.RawMessage   `json:"body"`
	Response   json.RawMessage   `json:"response"`
	DurationMs *float64          `json:"durationMs"`
	Timestamp  *time.Time        `json:"timestamp"`
}

// handleCreateRequestLog handles POST /request-logs.
func (a *API) handleCreateRequestLog(w http.ResponseWriter, r *http.Request) {
	var in RequestLogInput
	if !decodeJSON(w, r, &in) {
		return
	}

	at := a.now()
	if in.Timestamp != nil {
		at = *in.Timestamp
	}
	meta := requestlog.Meta{
		URL:        in.URL,
		Method:     in.Method,
		Headers:    in.Headers,
		Query:      in.Query,
		Params:     in.Params,
		DurationMs: in.DurationMs,
	}
	var response any
	if len(in.Response) > 0 {
		response = in.Response
	}

	var apiID *string
	if in.APIID != "" {
		apiID = &in.APIID
	}
	entry := requestlog.NewEntry(apiID, meta, rawText(in.Body), response, at)
	if err := a.store.WriteRequestLog(r.Context(), entry); err != nil {
		a.writeError(w, err, "save request log", "")
		return
	}
	httputil.WriteOK(w, map[string]any{"success": true, "id": entry.ID})
}

// handleListRequestLogs handles GET /request-logs.
func (a *API) handleListRequestLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RequestLogFilter{APIID: q.Get("api_id")}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			httputil.WriteBadRequest(w, httputil.CodeValidation, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	logs, err := a.store.ListRequestLogs(r.Context(), filter)
	if err != nil {
		a.writeError(w, err, "list request logs", "")
		return
	}
	httputil.WriteOK(w, nonNil(logs))
}

// rawText returns a JSON string's contents, or any other JSON value as
// compact text. null and absent values are empty.
func rawText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
