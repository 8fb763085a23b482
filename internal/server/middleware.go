package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/effective-security/xlog"
	"github.com/nirb28/dsp-adk2/pkg/envresolver"
	"github.com/nirb28/dsp-adk2/pkg/llms"
	"github.com/nirb28/dsp-adk2/pkg/validate"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON decodes a JSON request body into the target struct.
func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// statusForError maps engine failures to HTTP statuses: invalid input
// to 400, backend LLM failures to 502, the rest to 500.
func statusForError(err error) int {
	if validate.IsValidationError(err) || envresolver.IsMissingVariable(err) {
		return http.StatusBadRequest
	}
	if _, ok := llms.AsProviderError(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.ContextKV(r.Context(), xlog.DEBUG,
			"status", "request",
			"method", r.Method,
			"path", r.URL.Path,
			"code", rec.status,
			"elapsed", time.Since(started).String(),
		)
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ContextKV(r.Context(), xlog.ERROR,
					"status", "panic",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
