package mock

import (
	"encoding/json"
	"time"
)

// Method is an HTTP method a mock API answers to. Always uppercase.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// Methods lists every supported method in display order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions}

// ResponseType is the content type a mock API responds with.
type ResponseType string

const (
	ResponseJSON ResponseType = "application/json"
	ResponseText ResponseType = "text/plain"
	ResponseHTML ResponseType = "text/html"
)

// ResponseTypes lists every supported response type.
var ResponseTypes = []ResponseType{ResponseJSON, ResponseText, ResponseHTML}

// Valid reports whether t is one of the supported response types.
func (t ResponseType) Valid() bool {
	switch t {
	case ResponseJSON, ResponseText, ResponseHTML:
		return true
	}
	return false
}

// Defaults applied when an API is created without the field.
const (
	DefaultStatusCode   = 200
	DefaultResponseType = ResponseJSON
	DefaultDelayMs      = 0
)

// Project is the top-level grouping. Slug is derived from Name once, at
// creation, and is what the gateway matches in /mock/<slug>/...
type Project struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Slug        string    `json:"slug" yaml:"slug"`
	Description string    `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Collection groups mock APIs inside a project.
type Collection struct {
	ID        string    `json:"id" yaml:"id"`
	ProjectID string    `json:"project_id" yaml:"project_id"`
	Name      string    `json:"name" yaml:"name"`
	Slug      string    `json:"slug" yaml:"slug"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// API is a single mock endpoint definition.
type API struct {
	ID           string       `json:"id" yaml:"id"`
	CollectionID string       `json:"collection_id" yaml:"collection_id"`
	Method       Method       `json:"method" yaml:"method"`
	Endpoint     string       `json:"endpoint" yaml:"endpoint"`
	StatusCode   int          `json:"status_code" yaml:"status_code"`
	ResponseType ResponseType `json:"response_type" yaml:"response_type"`
	ResponseBody string       `json:"response_body" yaml:"response_body"`
	DelayMs      int          `json:"delay_ms" yaml:"delay_ms"`
	CreatedAt    time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Delay returns the configured response delay.
func (a *API) Delay() time.Duration {
	if a.DelayMs <= 0 {
		return 0
	}
	return time.Duration(a.DelayMs) * time.Millisecond
}

// RequestLog records one served mock call. APIID is nil when the log was
// submitted without an api id. RequestMeta and ResponseSent hold JSON
// documents.
type RequestLog struct {
	ID           string          `json:"id" yaml:"id"`
	APIID        *string         `json:"api_id" yaml:"api_id"`
	Timestamp    time.Time       `json:"timestamp" yaml:"timestamp"`
	RequestMeta  json.RawMessage `json:"request_meta" yaml:"-"`
	RequestBody  string          `json:"request_body" yaml:"request_body"`
	ResponseSent json.RawMessage `json:"response_sent" yaml:"-"`
}

// CollectionExport is the document returned by a collection export.
type CollectionExport struct {
	Collection *Collection `json:"collection" yaml:"collection"`
	APIs       []*API      `json:"apis" yaml:"apis"`
}
