package errors

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mtorres1190/MATT-Report/internal/infrastructure"
)

// ErrorHandler converts application errors into RFC 7807 responses and
// logs them with request context.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{logger: logger.With(slog.String("component", "error_handler"))}
}

// HandleError renders err as a problem-details response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := infrastructure.GetTraceID(r.Context())
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := h.ErrorToProblem(err, r)
	if reqID != "" {
		problem.WithExtension("trace_id", reqID)
	}
	render.Render(w, r, problem)
}

// ErrorToProblem maps an error to RFC 7807 problem details.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return h.appErrorToProblem(appErr, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing the request",
		r.URL.Path,
	)
}

func (h *ErrorHandler) appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	var problem *ProblemDetails
	switch appErr.Type {
	case ErrTypeValidation:
		problem = NewProblemDetails(
			http.StatusBadRequest, TypeValidation, "Validation Failed",
			appErr.Message, r.URL.Path,
		)
	case ErrTypeUpload, ErrTypeParsing:
		problem = NewProblemDetails(
			http.StatusUnprocessableEntity, TypeUploadInvalid, "Invalid MATT Report",
			appErr.Message, r.URL.Path,
		)
	case ErrTypeNotFound:
		problem = NewProblemDetails(
			http.StatusNotFound, TypeNotFound, "Resource Not Found",
			appErr.Message, r.URL.Path,
		)
	case ErrTypePermission:
		problem = NewProblemDetails(
			http.StatusUnauthorized, TypeUnauthorized, "Unauthorized",
			appErr.Message, r.URL.Path,
		)
	case ErrTypeNetwork:
		problem = NewProblemDetails(
			http.StatusBadGateway, TypeInternal, "Upstream Failure",
			appErr.Message, r.URL.Path,
		)
	default:
		problem = NewProblemDetails(
			http.StatusInternalServerError, TypeInternal, "Internal Server Error",
			appErr.Message, r.URL.Path,
		)
	}
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

// NotFound is the router's 404 handler.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(
		http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource does not exist", r.URL.Path,
	))
}

// MethodNotAllowed is the router's 405 handler.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(
		http.StatusMethodNotAllowed, TypeValidation, "Method Not Allowed",
		"The requested method is not allowed for this resource", r.URL.Path,
	))
}
