// Package matching provides path-pattern matching for mock API endpoints.
//
// Endpoint patterns are slash-separated segments. A segment is either a
// literal, which must equal the request segment exactly, or a named parameter
// written ":name", which matches any single non-empty segment and binds its
// URL-decoded value to name. Patterns and paths must have the same number of
// segments; there is no wildcard or suffix matching.
//
//	params, ok := matching.MatchPath("/users/:id", "/users/42")
//	// ok == true, params["id"] == "42"
//
// FindNearMisses ranks endpoints that almost matched a request, for
// diagnostics when nothing matched.
//
// Selection between several patterns is not this package's concern: callers
// iterate candidates in registration order and take the first match.
package matching
