package requestlog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getmockd/apisim/pkg/logging"
)

// Defaults for AsyncLogger.
const (
	DefaultQueueSize    = 1024
	DefaultWriteTimeout = 5 * time.Second
)

// AsyncLogger queues entries and writes them from one background
// goroutine. Log never blocks: when the queue is full the entry is dropped
// and a warning is logged. Write errors are logged and otherwise ignored.
type AsyncLogger struct {
	w            Writer
	log          *slog.Logger
	queue        chan *Entry
	done         chan struct{}
	writeTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	written atomic.Int64
}

// AsyncOption configures an AsyncLogger.
type AsyncOption func(*asyncConfig)

type asyncConfig struct {
	log          *slog.Logger
	queueSize    int
	writeTimeout time.Duration
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) AsyncOption {
	return func(c *asyncConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithQueueSize sets the queue capacity. Values below 1 use the default.
func WithQueueSize(n int) AsyncOption {
	return func(c *asyncConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithWriteTimeout bounds each Write call.
func WithWriteTimeout(d time.Duration) AsyncOption {
	return func(c *asyncConfig) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// NewAsyncLogger starts the background writer. Call Close to drain it.
func NewAsyncLogger(w Writer, opts ...AsyncOption) *AsyncLogger {
	cfg := asyncConfig{
		log:          logging.Nop(),
		queueSize:    DefaultQueueSize,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, o := range opts {
		o(&cfg)
	}
	l := &AsyncLogger{
		w:            w,
		log:          cfg.log,
		queue:        make(chan *Entry, cfg.queueSize),
		done:         make(chan struct{}),
		writeTimeout: cfg.writeTimeout,
	}
	go l.run()
	return l
}

// Log enqueues entry without blocking.
func (l *AsyncLogger) Log(entry *Entry) {
	if entry == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.drop(entry, "closed")
		return
	}
	select {
	case l.queue <- entry:
	default:
		l.drop(entry, "queue full")
	}
}

func (l *AsyncLogger) drop(entry *Entry, reason string) {
	n := l.dropped.Add(1)
	l.log.Warn("request log entry dropped",
		"reason", reason,
		"entryId", entry.ID,
		"droppedTotal", n,
	)
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for entry := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), l.writeTimeout)
		err := l.w.Write(ctx, entry)
		cancel()
		if err != nil {
			l.log.Error("failed to write request log",
				"entryId", entry.ID,
				"error", err,
			)
			continue
		}
		l.written.Add(1)
	}
}

// Close stops accepting entries and waits for queued ones to be written,
// or for ctx to end.
func (l *AsyncLogger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped returns how many entries were discarded.
func (l *AsyncLogger) Dropped() int64 { return l.dropped.Load() }

// Written returns how many entries were written successfully.
func (l *AsyncLogger) Written() int64 { return l.written.Load() }
