package engine

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/template"
)

// Rendered is a response ready to be written.
type Rendered struct {
	StatusCode  int
	ContentType string
	Body        []byte
	// Value is what gets recorded in the request log: the parsed JSON value
	// when a JSON body parsed, otherwise the rendered string.
	Value any
}

// Renderer turns an API definition into a response for one request.
type Renderer struct {
	templates *template.Engine
}

// NewRenderer creates a Renderer. A nil engine gets a fresh template.Engine.
func NewRenderer(engine *template.Engine) *Renderer {
	if engine == nil {
		engine = template.New()
	}
	return &Renderer{templates: engine}
}

// Render processes api.ResponseBody against tctx. JSON responses that do
// not parse after rendering are sent as-is with the JSON content type.
func (r *Renderer) Render(api *mock.API, tctx *template.Context) (*Rendered, error) {
	responseType := api.ResponseType
	if responseType == "" {
		responseType = mock.DefaultResponseType
	}
	tctx.EscapeHTML = responseType == mock.ResponseHTML

	out, err := r.templates.Process(api.ResponseBody, tctx)
	if err != nil {
		return nil, err
	}

	rendered := &Rendered{
		StatusCode:  api.StatusCode,
		ContentType: contentType(responseType),
		Body:        []byte(out),
		Value:       out,
	}
	if rendered.StatusCode == 0 {
		rendered.StatusCode = mock.DefaultStatusCode
	}

	if responseType == mock.ResponseJSON {
		var v any
		if err := json.Unmarshal([]byte(out), &v); err == nil {
			var buf bytes.Buffer
			if err := json.Compact(&buf, []byte(out)); err == nil {
				rendered.Body = buf.Bytes()
			}
			rendered.Value = v
		}
	}
	return rendered, nil
}

func contentType(t mock.ResponseType) string {
	if strings.HasPrefix(string(t), "text/") {
		return string(t) + "; charset=utf-8"
	}
	return string(t)
}
