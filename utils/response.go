package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"go-storefront/apperror"
)

type requestIDKey struct{}

// WithRequestID stores the request id in ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or ""
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Error     string            `json:"error,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// Responder writes JSON responses and maps classified errors to statuses.
// Underlying error text is only exposed when ExposeErrors is set.
type Responder struct {
	Logger       *logrus.Logger
	ExposeErrors bool
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		rs.Logger.WithError(err).Warn("failed to encode response")
	}
}

func (rs *Responder) NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := apperror.Status(kind)
	body := ErrorResponse{Message: http.StatusText(status), RequestID: RequestID(r.Context())}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Details = appErr.Details
	}
	if rs.ExposeErrors && err != nil {
		body.Error = err.Error()
	}

	entry := rs.Logger.WithFields(logrus.Fields{
		"request_id": body.RequestID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	rs.JSON(w, status, body)
}
