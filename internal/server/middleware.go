package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cardgraph/pkg/buildinfo"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
	"github.com/matzehuels/cardgraph/pkg/observability"
)

// observe reports every request to the HTTP hooks and logs it at debug
// level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			d := time.Since(start)
			observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, d)
			s.logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", d.Round(time.Microsecond),
				"id", middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}

func serverHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", buildinfo.UserAgent())
		next.ServeHTTP(w, r)
	})
}

// decode reads a JSON body of at most the configured size into v.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := io.Reader(r.Body)
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errTooLarge(tooLarge.Limit)
		}
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "decode request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string        `json:"error"`
	Code  cgerrors.Code `json:"code,omitempty"`
}

// writeError answers with the status mapped from err's code. Internal
// failures are logged; their message is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	var sized *sizeError
	status := cgerrors.HTTPStatus(err)
	if errors.As(err, &sized) {
		status = http.StatusRequestEntityTooLarge
	}
	body := errorBody{Error: cgerrors.UserMessage(err), Code: cgerrors.GetCode(err)}
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		logger.Error("request failed", "path", r.URL.Path, "err", err, "id", middleware.GetReqID(r.Context()))
		body.Error = http.StatusText(status)
	}
	writeJSON(w, status, body)
}

// sizeError marks an oversized request body.
type sizeError struct{ limit int64 }

func (e *sizeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.limit)
}

func errTooLarge(limit int64) error {
	return cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, &sizeError{limit: limit}, "request body larger than %d bytes", limit)
}

func errNotFound(path string) error {
	return cgerrors.New(cgerrors.ErrCodeNotFound, "no route for %s", path)
}
