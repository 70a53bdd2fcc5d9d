// Package monitoring wires optional Sentry error reporting. When no DSN is
// configured the reporter stays disabled and every call is a no-op.
package monitoring

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/user/banconova-go/config"
)

// SentryReporter sends server-side failures to Sentry.
type SentryReporter struct {
	initialized bool
}

// NewSentryReporter initializes the Sentry SDK from cfg. A missing DSN or a
// failed initialization yields a disabled reporter rather than an error, so
// the service still starts without error tracking.
func NewSentryReporter(cfg *config.SentryConfig, logger *slog.Logger) *SentryReporter {
	if cfg.DSN == "" {
		logger.Info("SENTRY_DSN not set, Sentry disabled")
		return &SentryReporter{}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: 1.0,
		EnableTracing:    true,
	})
	if err != nil {
		logger.Warn("sentry initialization failed", "error", err)
		return &SentryReporter{}
	}

	logger.Info("sentry initialized", "environment", cfg.Environment)
	return &SentryReporter{initialized: true}
}

// Enabled reports whether events are actually sent.
func (s *SentryReporter) Enabled() bool {
	return s.initialized
}

// CaptureException captures an error and sends it to Sentry.
func (s *SentryReporter) CaptureException(err error) {
	if !s.initialized || err == nil {
		return
	}
	sentry.CaptureException(err)
}

// Flush waits for buffered events to be delivered.
func (s *SentryReporter) Flush(timeout time.Duration) bool {
	if !s.initialized {
		return true
	}
	return sentry.Flush(timeout)
}

// Close flushes pending events before shutdown.
func (s *SentryReporter) Close() {
	s.Flush(2 * time.Second)
}

// Recoverer reports panics to Sentry and re-panics so the outer chi
// Recoverer still turns them into a 500.
func (s *SentryReporter) Recoverer(next http.Handler) http.Handler {
	if !s.initialized {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr != http.ErrAbortHandler {
					sentry.CurrentHub().RecoverWithContext(r.Context(), rvr)
					sentry.Flush(2 * time.Second)
				}
				panic(rvr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
