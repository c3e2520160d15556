package admin

import (
	"log/slog"
	"time"

	"github.com/getmockd/apisim/pkg/engine"
	"github.com/getmockd/apisim/pkg/template"
)

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger used for server-side error details.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

// WithTemplateEngine sets the engine used by the preview endpoint. Sharing
// the gateway's engine keeps sequences consistent between the two.
func WithTemplateEngine(e *template.Engine) Option {
	return func(a *API) {
		a.renderer = engine.NewRenderer(e)
	}
}

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(a *API) {
		if now != nil {
			a.now = now
		}
	}
}
