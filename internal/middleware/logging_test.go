// internal/middleware/logging_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMiddlewareRecordsStatusAndPath(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/game/state?name=x", nil))

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, "http request", entry.Message)
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, "/game/state", entry.Data["path"])
	assert.Equal(t, http.MethodGet, entry.Data["method"])
}

func TestLogMiddlewareDefaultsToOK(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/game/create", nil))

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])
}

// The WebSocket upgrade hijacks the connection through
// http.ResponseController, which walks Unwrap to reach the real writer.
func TestStatusRecorderUnwrapsToUnderlyingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	assert.Same(t, rec, sr.Unwrap())
}
