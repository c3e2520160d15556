package template

import (
	"encoding/json"
	mathrand "math/rand/v2"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Context holds the data a template can reference.
type Context struct {
	// Query holds the first value of each query parameter.
	Query map[string]string
	// Headers holds request headers with lowercase names; repeated headers
	// are joined with ", ".
	Headers map[string]string
	// Params holds path parameters bound by the endpoint pattern.
	Params map[string]string
	// Body is the decoded request body: a JSON value, form values, a raw
	// string, or an empty object when there was no body.
	Body any
	// Now is rendered as RFC3339Nano in UTC.
	Now time.Time

	// EscapeHTML enables HTML escaping of {{ }} output.
	EscapeHTML bool
	// Rand makes faker and random helpers deterministic when set.
	Rand *mathrand.Rand
}

// NewRequestContext builds a Context from an incoming request, its
// already-read body, and the bound path parameters.
func NewRequestContext(r *http.Request, body []byte, params map[string]string) *Context {
	ctx := &Context{
		Query:   FirstValues(r.URL.Query()),
		Headers: LowerHeaders(r.Header),
		Params:  params,
		Body:    DecodeBody(r.Header.Get("Content-Type"), body),
		Now:     time.Now(),
	}
	if ctx.Params == nil {
		ctx.Params = map[string]string{}
	}
	return ctx
}

// FirstValues flattens multi-valued query parameters to their first value.
func FirstValues(v url.Values) map[string]string {
	out := make(map[string]string, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			out[k] = vals[0]
		}
	}
	return out
}

// LowerHeaders lowercases header names and joins repeated values.
func LowerHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		out[strings.ToLower(k)] = strings.Join(vals, ", ")
	}
	return out
}

// DecodeBody decodes a request body according to its content type.
func DecodeBody(contentType string, body []byte) any {
	if len(body) == 0 {
		return map[string]any{}
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.Contains(mediaType, "json"):
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
	case mediaType == "application/x-www-form-urlencoded":
		if vals, err := url.ParseQuery(string(body)); err == nil {
			form := make(map[string]any, len(vals))
			for k, v := range FirstValues(vals) {
				form[k] = v
			}
			return form
		}
	}
	return string(body)
}

// lookup resolves a dotted path against the context roots.
func (c *Context) lookup(path []string) (any, bool) {
	if c == nil || len(path) == 0 {
		return nil, false
	}
	var cur any
	switch path[0] {
	case "query":
		cur = c.Query
	case "headers":
		cur = c.Headers
		if len(path) > 1 {
			path = append([]string{path[0], strings.ToLower(path[1])}, path[2:]...)
		}
	case "params":
		cur = c.Params
	case "body":
		cur = c.Body
	case "now":
		cur = c.nowString()
	default:
		return nil, false
	}
	for _, seg := range path[1:] {
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (c *Context) nowString() string {
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}
	return now.UTC().Format(time.RFC3339Nano)
}

// isRoot reports whether name is a context root.
func isRoot(name string) bool {
	switch name {
	case "query", "headers", "params", "body", "now":
		return true
	}
	return false
}

func step(v any, seg string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		x, ok := m[seg]
		return x, ok
	case map[string]string:
		x, ok := m[seg]
		return x, ok
	case []any:
		if seg == "length" {
			return len(m), true
		}
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(m) {
			return nil, false
		}
		return m[i], true
	case string:
		if seg == "length" {
			return len([]rune(m)), true
		}
	}
	return nil, false
}
