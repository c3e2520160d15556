package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a display name into a URL-safe token.
// "Smoke Test Project" → "smoke-test-project", "Café Orders!" → "cafe-orders".
//
// Diacritics are folded first, then every rune that is not an ASCII word
// character, whitespace or hyphen is dropped. Runs of whitespace, underscores
// and hyphens collapse into a single hyphen and the result never starts or
// ends with one. Slugify(Slugify(s)) == Slugify(s) for every s.
func Slugify(text string) string {
	folded, _, err := transform.String(markFolder(), text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			pendingSep = true
		case isASCIIAlnum(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// markFolder returns a fresh transformer that strips combining marks.
// Transformers carry state, so one is built per call.
func markFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

var (
	whitespaceRun     = regexp.MustCompile(`\s+`)
	nonCollectionChar = regexp.MustCompile(`[^a-z0-9_-]`)
)

// SanitizeCollectionSlug cleans a user-supplied collection slug: lowercase,
// whitespace runs become hyphens and only [a-z0-9-_] survive. Unlike Slugify
// it keeps underscores and repeated hyphens as typed.
func SanitizeCollectionSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonCollectionChar.ReplaceAllString(s, "")
}

// NormalizeEndpoint trims an endpoint pattern and makes sure it starts with "/".
// "users/:id" → "/users/:id"; already normalized input is returned unchanged.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.HasPrefix(endpoint, "/") {
		return "/" + endpoint
	}
	return endpoint
}
