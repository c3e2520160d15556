package admin

import (
	"encoding/json"
	"net/http"

	"github.com/getmockd/apisim/pkg/httputil"
	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/template"
)

// PreviewRequest is the body of POST /preview.
type PreviewRequest struct {
	StatusCode   int               `json:"status_code"`
	ResponseType mock.ResponseType `json:"response_type"`
	ResponseBody *string           `json:"response_body"`
	Params       map[string]string `json:"params"`
	Query        map[string]string `json:"query"`
	Headers      map[string]string `json:"headers"`
	Body         json.RawMessage   `json:"body"`
}

// PreviewResponse is what the gateway would send for the request.
type PreviewResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// handlePreview handles POST /preview.
func (a *API) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ResponseBody == nil {
		a.writeError(w, &mock.ValidationError{Field: "response_body", Message: "response_body is required"}, "preview", "")
		return
	}
	if req.ResponseType == "" {
		req.ResponseType = mock.DefaultResponseType
	}
	if !req.ResponseType.Valid() {
		a.writeError(w, &mock.ValidationError{
			Field:   "response_type",
			Message: "Invalid response_type. Must be one of: application/json, text/plain, text/html",
		}, "preview", "")
		return
	}

	tctx := &template.Context{
		Query:   nonNilMap(req.Query),
		Headers: lowerKeys(req.Headers),
		Params:  nonNilMap(req.Params),
		Body:    template.DecodeBody("application/json", rawBody(req.Body)),
		Now:     a.now(),
	}
	api := &mock.API{
		StatusCode:   req.StatusCode,
		ResponseType: req.ResponseType,
		ResponseBody: *req.ResponseBody,
	}
	rendered, err := a.renderer.Render(api, tctx)
	if err != nil {
		a.writeError(w, err, "preview", "")
		return
	}
	httputil.WriteOK(w, PreviewResponse{
		StatusCode:  rendered.StatusCode,
		ContentType: rendered.ContentType,
		Body:        string(rendered.Body),
	})
}

func rawBody(raw json.RawMessage) []byte {
	if string(raw) == "null" {
		return nil
	}
	return raw
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func lowerKeys(h map[string]string) map[string]string {
	hdr := make(map[string][]string, len(h))
	for k, v := range h {
		hdr[k] = []string{v}
	}
	return template.LowerHeaders(hdr)
}
