package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/user/banconova-go/config"
	"github.com/user/banconova-go/logging"
)

func TestDisabledReporterIsNoop(t *testing.T) {
	r := NewSentryReporter(&config.SentryConfig{}, logging.Discard())

	assert.False(t, r.Enabled())
	assert.NotPanics(t, func() { r.CaptureException(errors.New("boom")) })
	assert.True(t, r.Flush(time.Millisecond))
}

func TestDisabledRecovererPassesThrough(t *testing.T) {
	r := NewSentryReporter(&config.SentryConfig{}, logging.Discard())
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.Recoverer(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestInvalidDSNDisablesReporter(t *testing.T) {
	r := NewSentryReporter(&config.SentryConfig{DSN: "not a dsn", Environment: "test"}, logging.Discard())
	assert.False(t, r.Enabled())
}
