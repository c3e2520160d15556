// Package requestlog captures served mock calls for later inspection.
//
// It is distinct from operational logging (log/slog): entries are user
// data, persisted through a Writer (normally the store) and listed by the
// management API.
//
// The gateway never writes entries inline. It hands them to an AsyncLogger,
// which queues them and writes from a single background goroutine, so a
// slow or failing store never delays or fails a mock response.
//
//	sink := requestlog.NewAsyncLogger(requestlog.StoreWriter(st), requestlog.WithLogger(log))
//	defer sink.Close(ctx)
//	sink.Log(requestlog.NewSuccessEntry(api.ID, meta, body, resp))
package requestlog
