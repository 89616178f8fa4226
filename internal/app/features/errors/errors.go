// internal/app/features/errors/errors.go
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/payments"
	"github.com/samaquete/admin/internal/app/system/requestid"
	"go.uber.org/zap"
)

// body is the JSON shape of every error response.
type body struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorLogger logs request failures with request context and answers with
// a JSON error body.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	var ve *apperr.ValidationError
	var up *payments.UpstreamStatusError
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.As(err, &ve):
		return http.StatusBadRequest
	case stderrors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case stderrors.Is(err, apperr.ErrPermissionDenied):
		return http.StatusForbidden
	case stderrors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusBadRequest
	case stderrors.Is(err, apperr.ErrInvalidTransition):
		return http.StatusConflict
	case stderrors.As(err, &up):
		if up.Status >= 400 && up.Status < 600 {
			return up.Status
		}
		return http.StatusBadGateway
	case stderrors.Is(err, apperr.ErrUpstream):
		return http.StatusBadGateway
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func message(status int, err error) string {
	switch status {
	case http.StatusInternalServerError:
		return "erreur interne du serveur"
	case http.StatusUnauthorized:
		return "authentification requise"
	case http.StatusForbidden:
		return "accès refusé"
	case http.StatusNotFound:
		return "introuvable"
	case http.StatusGatewayTimeout:
		return "délai dépassé"
	}
	var ve *apperr.ValidationError
	if stderrors.As(err, &ve) {
		return ve.Message
	}
	if stderrors.Is(err, apperr.ErrAlreadyExists) {
		return "cet email est déjà utilisé"
	}
	return err.Error()
}

// Write logs err at a level matching its status and sends the JSON error.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	b := body{Error: message(status, err), RequestID: requestid.FromContext(r.Context())}
	var ve *apperr.ValidationError
	if stderrors.As(err, &ve) {
		b.Field = ve.Field
	}

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", b.RequestID),
		zap.Error(err),
	}
	switch {
	case status >= 500:
		e.log.Error("request failed", fields...)
	case status == http.StatusForbidden:
		e.log.Info("request denied", fields...)
	default:
		e.log.Debug("request rejected", fields...)
	}
	httpjson.Write(w, status, b)
}

// LogServerError logs msg with err and answers 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	id := requestid.FromContext(r.Context())
	e.log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", id),
	)
	httpjson.Write(w, http.StatusInternalServerError, body{Error: userMsg, RequestID: id})
}

// LogBadRequest logs msg at warn level and answers 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	id := requestid.FromContext(r.Context())
	e.log.Warn(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", id),
	)
	httpjson.Write(w, http.StatusBadRequest, body{Error: userMsg, RequestID: id})
}
