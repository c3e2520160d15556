package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/template"
)

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		api        mock.API
		ctx        template.Context
		wantBody   string
		wantType   string
		wantStatus int
		wantValue  any
	}{
		{
			name:       "json is compacted",
			api:        mock.API{StatusCode: 201, ResponseType: mock.ResponseJSON, ResponseBody: "{\n  \"id\": \"{{params.id}}\"\n}"},
			ctx:        template.Context{Params: map[string]string{"id": "7"}},
			wantBody:   `{"id":"7"}`,
			wantType:   "application/json",
			wantStatus: 201,
			wantValue:  map[string]any{"id": "7"},
		},
		{
			name:       "invalid json falls back to raw text",
			api:        mock.API{StatusCode: 200, ResponseType: mock.ResponseJSON, ResponseBody: "not {json"},
			wantBody:   "not {json",
			wantType:   "application/json",
			wantStatus: 200,
			wantValue:  "not {json",
		},
		{
			name:       "text gets a charset",
			api:        mock.API{StatusCode: 200, ResponseType: mock.ResponseText, ResponseBody: "hi {{query.name}}"},
			ctx:        template.Context{Query: map[string]string{"name": "<b>"}},
			wantBody:   "hi <b>",
			wantType:   "text/plain; charset=utf-8",
			wantStatus: 200,
			wantValue:  "hi <b>",
		},
		{
			name:       "html escapes double braces only",
			api:        mock.API{StatusCode: 200, ResponseType: mock.ResponseHTML, ResponseBody: "{{query.q}}|{{{query.q}}}"},
			ctx:        template.Context{Query: map[string]string{"q": "<i>"}},
			wantBody:   "&lt;i&gt;|<i>",
			wantType:   "text/html; charset=utf-8",
			wantStatus: 200,
			wantValue:  "&lt;i&gt;|<i>",
		},
		{
			name:       "zero values take defaults",
			api:        mock.API{ResponseBody: "[1, 2]"},
			wantBody:   "[1,2]",
			wantType:   "application/json",
			wantStatus: 200,
			wantValue:  []any{float64(1), float64(2)},
		},
	}

	r := NewRenderer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := tt.ctx
			got, err := r.Render(&tt.api, &ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(got.Body))
			assert.Equal(t, tt.wantType, got.ContentType)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantValue, got.Value)
		})
	}
}

func TestRenderer_TemplateError(t *testing.T) {
	t.Parallel()

	r := NewRenderer(nil)
	_, err := r.Render(&mock.API{ResponseBody: `{"a": "{{params.id"}`}, &template.Context{})
	require.Error(t, err)
	assert.True(t, template.IsError(err))
}
