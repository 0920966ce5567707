package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN         string
	Enabled     bool
	Environment string
	Release     string

	// SampleRate is the share of errors reported; zero means all of them.
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
}

var sentryEnabled atomic.Bool

// InitSentry initializes the Sentry client and returns the function that
// flushes pending events on shutdown. Without a DSN reporting stays off and
// every function in this file is a no-op.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	noop := func() {}
	if !cfg.Enabled || cfg.DSN == "" {
		sentryEnabled.Store(false)
		logger.Info("Sentry disabled", "dsn_set", cfg.DSN != "")
		return noop, nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return scrubEvent(event)
		},
	})
	if err != nil {
		return noop, fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	sentryEnabled.Store(true)

	logger.Info("Sentry initialized", "environment", cfg.Environment, "release", cfg.Release, "sample_rate", sampleRate)
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// IsEnabled returns whether Sentry is currently enabled
func IsEnabled() bool {
	return sentryEnabled.Load()
}

// scrubEvent drops what identifies a customer before an event leaves the
// process: the posted address form, the session and CSRF cookies, and the
// CEP in lookup URLs.
func scrubEvent(event *sentry.Event) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}
	req := event.Request
	req.Data = ""
	req.Cookies = ""
	req.QueryString = ""
	delete(req.Headers, "Cookie")
	delete(req.Headers, "X-Csrf-Token")
	return event
}

// CaptureError reports err on the hub of ctx (set by SentryMiddleware) or
// the global hub. extras are attached to this event only.
func CaptureError(ctx context.Context, err error, extras map[string]interface{}) {
	if !IsEnabled() || err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range extras {
			scope.SetExtra(key, value)
		}
		hub.CaptureException(err)
	})
}

// AddBreadcrumb records a step that later events will carry. Lookups run
// outside any request, so breadcrumbs go to the global hub.
func AddBreadcrumb(category, message string, data map[string]interface{}) {
	if !IsEnabled() {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Data:     data,
		Level:    sentry.LevelInfo,
	})
}

// SentryMiddleware gives each request its own hub carrying the request and
// its id. Panics are left to router.Recovery, which reports them.
func SentryMiddleware(requestID func(context.Context) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(r)
			if id := requestID(r.Context()); id != "" {
				hub.Scope().SetTag("request_id", id)
			}
			next.ServeHTTP(w, r.WithContext(sentry.SetHubOnContext(r.Context(), hub)))
		})
	}
}
