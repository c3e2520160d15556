// Package admin provides the REST API for managing mock definitions.
//
// Endpoints:
//
//	GET    /health                       - Server health check
//	GET    /projects                     - List projects, newest first
//	POST   /projects                     - Create a project
//	GET    /projects/{id}                - Get a project
//	DELETE /projects/{id}                - Delete a project with its collections and APIs
//	GET    /projects/{id}/collections    - List a project's collections
//	POST   /projects/{id}/collections    - Create a collection
//	GET    /collections/{id}             - Get a collection
//	DELETE /collections/{id}             - Delete a collection with its APIs
//	GET    /collections/{id}/export      - Export a collection (?format=yaml for YAML)
//	GET    /collections/{id}/apis        - List a collection's APIs
//	POST   /collections/{id}/apis        - Create a mock API
//	GET    /apis/{id}                    - Get a mock API
//	PUT    /apis/{id}                    - Partially update a mock API
//	DELETE /apis/{id}                    - Delete a mock API
//	POST   /request-logs                 - Record a client-side request log
//	GET    /request-logs                 - List request logs (?api_id=&limit=)
//	POST   /preview                      - Render a response template without saving it
//
// Every error response has the shape {"error": ..., "message": ...}.
//
// Usage:
//
//	api := admin.NewAPI(st, admin.WithLogger(log))
//	mux := http.NewServeMux()
//	api.RegisterRoutes(mux)
package admin
