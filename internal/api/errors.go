package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pf-verify-go/internal/buildinfo"
	"github.com/MJE43/pf-verify-go/internal/engine"
	"github.com/MJE43/pf-verify-go/internal/games"
	"github.com/MJE43/pf-verify-go/internal/scan"
)

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]any
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]any),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause adds the underlying cause error
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build(now time.Time) EngineError {
	var ctx map[string]any
	if len(eb.context) > 0 {
		ctx = eb.context
	}
	return EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   ctx,
		RequestID: eb.requestID,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// classifyError maps an engine, game or scan error to its HTTP status and
// error type.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, games.ErrGameNotFound):
		return http.StatusBadRequest, ErrTypeGameNotFound
	case errors.Is(err, scan.ErrNotScannable):
		return http.StatusBadRequest, ErrTypeNotScannable
	case errors.Is(err, engine.ErrMissingSeed):
		return http.StatusBadRequest, ErrTypeInvalidSeed
	case errors.Is(err, engine.ErrUnsupportedParameter):
		return http.StatusBadRequest, ErrTypeInvalidParams
	case errors.Is(err, engine.ErrInvalidHashLength),
		errors.Is(err, engine.ErrInsufficientHashLength),
		errors.Is(err, engine.ErrInvalidInput):
		return http.StatusBadRequest, ErrTypeInvalidHash
	case errors.Is(err, scan.ErrInvalidRange),
		errors.Is(err, scan.ErrRangeTooLarge),
		errors.Is(err, scan.ErrInvalidTarget):
		return http.StatusBadRequest, ErrTypeValidation
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, ErrTypeTimeout
	default:
		return http.StatusInternalServerError, ErrTypeInternal
	}
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger         *log.Logger
	securityLogger *SecurityLogger
	now            func() time.Time
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *log.Logger, securityLogger *SecurityLogger, now func() time.Time) *ErrorHandler {
	return &ErrorHandler{
		logger:         logger,
		securityLogger: securityLogger,
		now:            now,
	}
}

// HandleError classifies err and writes the matching structured response.
// Extra context pairs are attached to the body.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error, context map[string]any) {
	var engineErr EngineError
	if errors.As(err, &engineErr) {
		eh.logError(r, engineErr, http.StatusBadRequest)
		eh.writeErrorResponse(w, http.StatusBadRequest, engineErr)
		return
	}

	status, errType := classifyError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}

	builder := NewError(errType, message).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("path", r.URL.Path)
	for k, v := range context {
		builder.WithContext(k, v)
	}
	if status == http.StatusInternalServerError {
		builder.WithCause(err)
	}

	built := builder.Build(eh.now())
	eh.logError(r, built, status)
	eh.writeErrorResponse(w, status, built)
}

// HandleValidationError handles validation-specific errors
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	requestID := middleware.GetReqID(r.Context())

	engineErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(requestID).
		WithContext("field", field).
		WithContext("path", r.URL.Path).
		Build(eh.now())

	eh.securityLogger.LogSecurityEvent(requestID, "validation_failure", message, map[string]any{
		"field": field,
		"path":  r.URL.Path,
	}, r.RemoteAddr)

	eh.logError(r, engineErr, http.StatusBadRequest)
	eh.writeErrorResponse(w, http.StatusBadRequest, engineErr)
}

// logError logs the error with a level matching its category
func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)

	keyvals := []any{
		"type", engineErr.Type,
		"category", category,
		"status", status,
		"request_id", engineErr.RequestID,
		"method", r.Method,
		"path", r.URL.Path,
		"message", engineErr.Message,
	}
	for key, value := range engineErr.Context {
		// Never log raw seeds, only hashes
		if key == "server_seed" || key == "client_seed" || key == "path" {
			continue
		}
		keyvals = append(keyvals, key, value)
	}

	if status >= http.StatusInternalServerError {
		eh.logger.Error("error_occurred", keyvals...)
		return
	}
	eh.logger.Warn("error_occurred", keyvals...)
}

// writeErrorResponse writes the error response as JSON
func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", buildinfo.Version)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		eh.logger.Error("error_response_encode_failed", "err", err)
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())

				eh.logger.Error("panic_recovered",
					"request_id", requestID,
					"path", r.URL.Path,
					"method", r.Method,
					"panic", fmt.Sprint(rvr),
				)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build(eh.now())

				eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
