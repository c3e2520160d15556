package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Smoke Test Project", "smoke-test-project"},
		{"version suffix", "Users Service v2", "users-service-v2"},
		{"already slugged", "payment-api", "payment-api"},
		{"single word", "Default", "default"},
		{"extra spaces", "  My  Project  ", "my-project"},
		{"underscores", "my_project_test", "my-project-test"},
		{"mixed separators", "My_Cool - API v3", "my-cool-api-v3"},
		{"numbers only", "123", "123"},
		{"special chars dropped", "Hello@World!", "helloworld"},
		{"dots dropped", "api.v2", "apiv2"},
		{"diacritics folded", "Café Orders", "cafe-orders"},
		{"non latin dropped", "日本 shop", "shop"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"only separators", "-_- -", ""},
		{"trailing dash", "foo-", "foo"},
		{"leading dash", "--foo", "foo"},
		{"separator around dropped char", "a - ! - b", "a-b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Smoke Test Project", "  --Weird__Name--  ", "Ünïcödë Tëst", "a!!b  c", "x_y-z",
		"İstanbul API", "Tab\tSeparated\nName", "",
	}
	for _, in := range inputs {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "Slugify not idempotent for %q", in)
	}
}

func TestSanitizeCollectionSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"smoke-test", "smoke-test"},
		{"Smoke Test", "smoke-test"},
		{"  users   v2 ", "users-v2"},
		{"keep_under_score", "keep_under_score"},
		{"drop!@#chars", "dropchars"},
		{"a--b", "a--b"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, SanitizeCollectionSlug(tt.input))
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/users/:id", NormalizeEndpoint("users/:id"))
	assert.Equal(t, "/users/:id", NormalizeEndpoint("/users/:id"))
	assert.Equal(t, "/hello", NormalizeEndpoint("  hello "))
	assert.Equal(t, "/", NormalizeEndpoint(""))

	for _, ep := range []string{"users", "/a/b", " x "} {
		once := NormalizeEndpoint(ep)
		assert.Equal(t, once, NormalizeEndpoint(once))
	}
}
