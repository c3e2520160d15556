// Package template renders mock response bodies.
//
// Templates are logic-less. Text outside {{ }} is copied verbatim and each
// expression is one of:
//
//	{{path}}              value lookup, HTML-escaped when escaping is on
//	{{{path}}}            value lookup, never escaped
//	{{helper arg ...}}    helper call; args are paths, "strings" or numbers
//	{{faker.ns.method}}   generated sample data (a trailing () is accepted)
//	{{! comment }}        dropped from the output
//
// Paths start at one of the request roots: query, headers, params, body or
// now. Missing values render as the empty string; objects and arrays render
// as compact JSON. Malformed templates, unknown helpers and unknown faker
// generators fail with *Error.
//
// Example:
//
//	{"id": "{{params.id}}", "name": "{{faker.person.fullName}}", "at": "{{now}}"}
package template
