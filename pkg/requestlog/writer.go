package requestlog

import (
	"context"

	"github.com/getmockd/apisim/pkg/store"
)

// Logger is the minimal interface for recording entries. Log must not
// block the caller.
type Logger interface {
	Log(entry *Entry)
}

// Writer persists one entry.
type Writer interface {
	Write(ctx context.Context, entry *Entry) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, entry *Entry) error

// Write calls f.
func (f WriterFunc) Write(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

// StoreWriter writes entries to a request log store.
func StoreWriter(s store.RequestLogStore) Writer {
	return WriterFunc(s.WriteRequestLog)
}

// Discard is a Logger that drops every entry.
var Discard Logger = discard{}

type discard struct{}

func (discard) Log(*Entry) {}
