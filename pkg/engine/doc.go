// Package engine serves mock APIs under the reserved mock prefix.
//
// A request to /{prefix}/{project}/{collection}/{rest...} flows through
// three parts:
//
//   - Matcher resolves the project, collection and API from the live store
//   - Renderer processes the API's response template against the request
//   - Handler ties them together, applies the delay and records a request log
//
// # Basic Usage
//
//	st := memory.New()
//	sink := requestlog.NewAsyncLogger(requestlog.StoreWriter(st))
//	defer sink.Close(ctx)
//
//	h := engine.NewHandler(st, engine.WithRequestLog(sink))
//	mux.Handle("/mock/", http.StripPrefix("/mock", h))
//
// Routes are never cached: every request reads the store, so definitions
// created through the management API take effect immediately.
package engine
