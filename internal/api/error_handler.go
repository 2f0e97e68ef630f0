package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/moogar0880/problems"
	"github.com/vytor/conceptpulse/internal/errors"
	"github.com/vytor/conceptpulse/internal/logger"
)

const problemContentType = "application/problem+json"

// problem is an RFC 7807 document carrying the application error code.
type problem struct {
	*problems.Problem
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	appErr := errors.As(err)
	if stderrors.Is(err, context.DeadlineExceeded) && r.Context().Err() != nil {
		appErr = errors.NewUnavailableError("request timed out", err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	writeProblem(w, r, appErr)
}

func writeProblem(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
	p := problem{
		Problem: problems.NewStatusProblem(appErr.Status).
			WithInstance(r.URL.Path).
			WithType(problemType(appErr.Code)).
			WithDetail(appErr.Message),
		Code:      appErr.Code,
		RequestID: requestIDFromContext(r.Context()),
	}

	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(appErr.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode problem: %v", err)
	}
}

func problemType(code string) string {
	switch code {
	case errors.ErrCodeNotFound:
		return "not_found"
	case errors.ErrCodeValidation:
		return "validation_error"
	case errors.ErrCodeBadRequest:
		return "bad_request"
	case errors.ErrCodeConflict:
		return "conflict"
	case errors.ErrCodeUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeProblem(w, r, &errors.AppError{
		Code:    errors.ErrCodeNotFound,
		Message: "no route for " + r.Method + " " + r.URL.Path,
		Status:  http.StatusNotFound,
	})
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeProblem(w, r, &errors.AppError{
		Code:    errors.ErrCodeBadRequest,
		Message: r.Method + " is not allowed on " + r.URL.Path,
		Status:  http.StatusMethodNotAllowed,
	})
}
