package common

import (
	"errors"
	"net/http"

	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	"go.uber.org/zap"
)

// HttpError lets a handler choose the status code of a failure.
type HttpError struct {
	Status int
	Err    error
}

func (e *HttpError) Error() string { return e.Err.Error() }

func (e *HttpError) Unwrap() error { return e.Err }

func BadRequest(err error) error {
	return &HttpError{Status: http.StatusBadRequest, Err: err}
}

// JsonHandler writes whatever fn returns as json. Errors are logged and answered
// with their HttpError status, or 502 when the failure came from further down.
func JsonHandler(logger *zap.Logger, fn func(w http.ResponseWriter, r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		data, err := fn(w, r)
		if err != nil {
			status := http.StatusBadGateway
			var httpErr *HttpError
			if errors.As(err, &httpErr) {
				status = httpErr.Status
			}
			logger.Warn("error handling request", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		if err := jsoncompat.Encode(w, data); err != nil {
			logger.Error("error encoding response", zap.Error(err))
		}
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
