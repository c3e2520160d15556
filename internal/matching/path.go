package matching

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidPattern is returned by ValidatePattern for malformed endpoint patterns.
var ErrInvalidPattern = errors.New("invalid endpoint pattern")

// MatchPath checks if the request path matches the endpoint pattern.
// Returns the bound named parameters and true on a match.
// Examples:
//   - "/hello" matches "/hello" with no params
//   - "/users/:id" matches "/users/42" with {"id": "42"}
//   - "/users/:id" does not match "/users/42/extra" or "/users/"
//
// A single trailing slash on the request path is ignored.
func MatchPath(pattern, path string) (map[string]string, bool) {
	patternParts := splitSegments(pattern)
	pathParts := splitSegments(path)

	// Must have same number of segments
	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)
	for i, patternPart := range patternParts {
		segment := pathParts[i]

		if name, ok := paramName(patternPart); ok {
			if name == "" || segment == "" {
				return nil, false
			}
			params[name] = decodeSegment(segment)
			continue
		}

		// Literal parts must match exactly
		if patternPart != segment && patternPart != decodeSegment(segment) {
			return nil, false
		}
	}

	return params, true
}

// ValidatePattern checks that an endpoint pattern can be matched.
// Parameter names must be non-empty, made of letters, digits or underscores,
// and unique within the pattern.
func ValidatePattern(pattern string) error {
	if !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, pattern)
	}
	seen := make(map[string]bool)
	for _, part := range splitSegments(pattern) {
		name, ok := paramName(part)
		if !ok {
			continue
		}
		if !isIdentifier(name) {
			return fmt.Errorf("%w: bad parameter name %q in %q", ErrInvalidPattern, part, pattern)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate parameter %q in %q", ErrInvalidPattern, name, pattern)
		}
		seen[name] = true
	}
	return nil
}

// ParamNames returns the parameter names of a pattern in declaration order.
func ParamNames(pattern string) []string {
	var names []string
	for _, part := range splitSegments(pattern) {
		if name, ok := paramName(part); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

// splitSegments splits a path into its segments. "/" yields no segments and a
// single trailing slash is dropped, so "/a/b/" and "/a/b" split the same way.
func splitSegments(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func paramName(segment string) (string, bool) {
	if !strings.HasPrefix(segment, ":") {
		return "", false
	}
	return segment[1:], true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

func decodeSegment(segment string) string {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return decoded
}
