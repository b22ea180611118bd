// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// statusRecorder captures the response code written by the wrapped handler.
// Unwrap keeps http.ResponseController features (notably the hijack the
// WebSocket upgrade needs) working through the wrapper.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LogMiddleware logs every request with its method, path, response status,
// duration, and remote address.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("http request")
		})
	}
}

// LogWebSocketConnect records a seat joining a game room.
func LogWebSocketConnect(logger *logrus.Logger, gameName, player, remoteAddr string) {
	logger.WithFields(logrus.Fields{
		"game":   gameName,
		"player": player,
		"remote": remoteAddr,
	}).Info("websocket connected")
}

// LogWebSocketDisconnect records a seat leaving a game room.
func LogWebSocketDisconnect(logger *logrus.Logger, gameName, player string, err error) {
	fields := logrus.Fields{
		"game":   gameName,
		"player": player,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("websocket disconnected")
}
