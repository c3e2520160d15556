package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPath(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		path       string
		wantMatch  bool
		wantParams map[string]string
	}{
		{
			name:       "exact literal",
			pattern:    "/hello",
			path:       "/hello",
			wantMatch:  true,
			wantParams: map[string]string{},
		},
		{
			name:      "literal mismatch",
			pattern:   "/hello",
			path:      "/goodbye",
			wantMatch: false,
		},
		{
			name:      "literal is case sensitive",
			pattern:   "/Hello",
			path:      "/hello",
			wantMatch: false,
		},
		{
			name:       "named param",
			pattern:    "/users/:id",
			path:       "/users/42",
			wantMatch:  true,
			wantParams: map[string]string{"id": "42"},
		},
		{
			name:      "no suffix matching",
			pattern:   "/users/:id",
			path:      "/users/42/extra",
			wantMatch: false,
		},
		{
			name:      "param requires a segment",
			pattern:   "/users/:id",
			path:      "/users",
			wantMatch: false,
		},
		{
			name:      "param rejects empty segment",
			pattern:   "/users/:id/posts",
			path:      "/users//posts",
			wantMatch: false,
		},
		{
			name:       "trailing slash ignored",
			pattern:    "/users/:id",
			path:       "/users/42/",
			wantMatch:  true,
			wantParams: map[string]string{"id": "42"},
		},
		{
			name:       "multiple params",
			pattern:    "/orgs/:org/repos/:repo",
			path:       "/orgs/acme/repos/widgets",
			wantMatch:  true,
			wantParams: map[string]string{"org": "acme", "repo": "widgets"},
		},
		{
			name:       "param is url decoded",
			pattern:    "/files/:name",
			path:       "/files/my%20report.pdf",
			wantMatch:  true,
			wantParams: map[string]string{"name": "my report.pdf"},
		},
		{
			name:       "encoded slash stays inside segment",
			pattern:    "/files/:name",
			path:       "/files/a%2Fb",
			wantMatch:  true,
			wantParams: map[string]string{"name": "a/b"},
		},
		{
			name:       "root pattern",
			pattern:    "/",
			path:       "/",
			wantMatch:  true,
			wantParams: map[string]string{},
		},
		{
			name:      "root pattern does not match deeper path",
			pattern:   "/",
			path:      "/x",
			wantMatch: false,
		},
		{
			name:      "bare colon never matches",
			pattern:   "/users/:",
			path:      "/users/1",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, ok := MatchPath(tt.pattern, tt.path)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				require.NotNil(t, params)
				assert.Equal(t, tt.wantParams, params)
			} else {
				assert.Nil(t, params)
			}
		})
	}
}

func TestValidatePattern(t *testing.T) {
	valid := []string{"/", "/hello", "/users/:id", "/a/:b_1/c/:D2"}
	for _, p := range valid {
		assert.NoError(t, ValidatePattern(p), p)
	}

	invalid := []string{"hello", "/users/:", "/users/:id/:id", "/x/:bad-name"}
	for _, p := range invalid {
		err := ValidatePattern(p)
		require.Error(t, err, p)
		assert.ErrorIs(t, err, ErrInvalidPattern)
	}
}

func TestParamNames(t *testing.T) {
	assert.Equal(t, []string{"org", "repo"}, ParamNames("/orgs/:org/repos/:repo"))
	assert.Nil(t, ParamNames("/static/path"))
}
