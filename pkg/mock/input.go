package mock

import (
	"strings"
	"time"

	"github.com/getmockd/apisim/internal/id"
	"github.com/getmockd/apisim/internal/matching"
	"github.com/getmockd/apisim/pkg/util"
)

// ProjectInput is the body of a project create request.
type ProjectInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Build validates the input and returns a new Project with a fresh ID and
// a slug derived from the name.
func (in *ProjectInput) Build(now time.Time) (*Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	slug := util.Slugify(in.Name)
	if slug == "" {
		return nil, &ValidationError{Field: "name", Message: "Project name must contain at least one letter or digit"}
	}
	return &Project{
		ID:          id.New(),
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		CreatedAt:   now.UTC(),
	}, nil
}

// CollectionInput is the body of a collection create request.
type CollectionInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Build sanitizes the slug and returns a new Collection under projectID.
func (in *CollectionInput) Build(projectID string, now time.Time) (*Collection, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = util.SanitizeCollectionSlug(in.Slug)
	if in.Name == "" || in.Slug == "" {
		return nil, &ValidationError{Field: "name", Message: "Name and slug are required"}
	}
	return &Collection{
		ID:        id.New(),
		ProjectID: projectID,
		Name:      in.Name,
		Slug:      in.Slug,
		CreatedAt: now.UTC(),
	}, nil
}

// APIInput is the body of a mock API create request. Pointer fields are
// optional and take the package defaults when nil.
type APIInput struct {
	Method       string  `json:"method" validate:"oneof=GET POST PUT DELETE PATCH HEAD OPTIONS"`
	Endpoint     string  `json:"endpoint"`
	StatusCode   *int    `json:"status_code" validate:"omitempty,min=100,max=599"`
	ResponseType *string `json:"response_type" validate:"omitempty,oneof=application/json text/plain text/html"`
	ResponseBody *string `json:"response_body"`
	DelayMs      *int    `json:"delay_ms" validate:"omitempty,gte=0"`
}

// Build normalizes and validates the input and returns a new API in
// collectionID.
func (in *APIInput) Build(collectionID string, now time.Time) (*API, error) {
	in.Method = strings.ToUpper(strings.TrimSpace(in.Method))
	if in.Method == "" || strings.TrimSpace(in.Endpoint) == "" || in.ResponseBody == nil {
		return nil, &ValidationError{Field: "method", Message: "Method, endpoint, and response_body are required"}
	}
	in.Endpoint = util.NormalizeEndpoint(in.Endpoint)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := validateEndpoint(in.Endpoint); err != nil {
		return nil, err
	}

	api := &API{
		ID:           id.New(),
		CollectionID: collectionID,
		Method:       Method(in.Method),
		Endpoint:     in.Endpoint,
		StatusCode:   DefaultStatusCode,
		ResponseType: DefaultResponseType,
		ResponseBody: *in.ResponseBody,
		DelayMs:      DefaultDelayMs,
		CreatedAt:    now.UTC(),
	}
	if in.StatusCode != nil {
		api.StatusCode = *in.StatusCode
	}
	if in.ResponseType != nil {
		api.ResponseType = ResponseType(*in.ResponseType)
	}
	if in.DelayMs != nil {
		api.DelayMs = *in.DelayMs
	}
	return api, nil
}

// APIPatch is the body of a mock API update request. Only non-nil fields
// are applied.
type APIPatch struct {
	Method       *string `json:"method" validate:"omitempty,oneof=GET POST PUT DELETE PATCH HEAD OPTIONS"`
	Endpoint     *string `json:"endpoint"`
	StatusCode   *int    `json:"status_code" validate:"omitempty,min=100,max=599"`
	ResponseType *string `json:"response_type" validate:"omitempty,oneof=application/json text/plain text/html"`
	ResponseBody *string `json:"response_body"`
	DelayMs      *int    `json:"delay_ms" validate:"omitempty,gte=0"`
}

// Apply validates the patch and returns a copy of api with the patch
// applied and UpdatedAt set. api itself is not modified.
func (p *APIPatch) Apply(api *API, now time.Time) (*API, error) {
	if p.Method != nil {
		m := strings.ToUpper(strings.TrimSpace(*p.Method))
		if m == "" {
			return nil, &ValidationError{Field: "method", Message: "method cannot be empty"}
		}
		p.Method = &m
	}
	if p.Endpoint != nil {
		if strings.TrimSpace(*p.Endpoint) == "" {
			return nil, &ValidationError{Field: "endpoint", Message: "endpoint cannot be empty"}
		}
		e := util.NormalizeEndpoint(*p.Endpoint)
		p.Endpoint = &e
	}
	if err := validateStruct(p); err != nil {
		return nil, err
	}

	out := *api
	if p.Method != nil {
		out.Method = Method(*p.Method)
	}
	if p.Endpoint != nil {
		if err := validateEndpoint(*p.Endpoint); err != nil {
			return nil, err
		}
		out.Endpoint = *p.Endpoint
	}
	if p.StatusCode != nil {
		out.StatusCode = *p.StatusCode
	}
	if p.ResponseType != nil {
		out.ResponseType = ResponseType(*p.ResponseType)
	}
	if p.ResponseBody != nil {
		out.ResponseBody = *p.ResponseBody
	}
	if p.DelayMs != nil {
		out.DelayMs = *p.DelayMs
	}
	ts := now.UTC()
	out.UpdatedAt = &ts
	return &out, nil
}

func validateEndpoint(endpoint string) error {
	if err := matching.ValidatePattern(endpoint); err != nil {
		return &ValidationError{Field: "endpoint", Message: err.Error()}
	}
	return nil
}
