package route

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventdesk/src-server/metric"
	"eventdesk/src-server/utils"

	"github.com/google/uuid"
	"github.com/rs/cors"
)

type RequestIDCtxKeyType string

const (
	RequestIDCtxKey RequestIDCtxKeyType = "request-id"
	RequestIDHeader string              = "X-Request-ID"
)

func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(RequestIDCtxKey).(string)
	return requestID
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

// Tags the request with an id, logs it once finished, records the HTTP
// metrics and turns panics into a 500.
func RequestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()

		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), RequestIDCtxKey, requestID))

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				writeServerError(rec, r, "handler panicked", fmt.Errorf("%v", recovered))
			}

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(startTimer)

			// ServeMux fills in the matched pattern on the way through
			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			metric.ObserveHTTPRequest(r.Method, pattern, status, duration)

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			slog.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", duration,
				"request_id", requestID,
			)
		}()

		next.ServeHTTP(rec, r)
	})
}

// Lets the configured web client origins call the API from a browser.
func CORSMiddleware(as *utils.AppState, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   as.Config.GetCorsAllowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
	}).Handler(next)
}
