// Package errors defines the sentinel errors shared by the indexer, the
// query pipeline and the search service, plus the typed errors that carry
// extra context (query syntax position, HTTP status).
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrQuerySyntax      = errors.New("query syntax error")
	ErrMissingField     = errors.New("missing required field")
	ErrUnreadableSource = errors.New("unreadable source")
	ErrFeatureDisabled  = errors.New("index feature disabled")
	ErrIndexFrozen      = errors.New("index is frozen")
	ErrInvalidInput     = errors.New("invalid input")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

// QuerySyntaxError reports a malformed query. Token is the zero-based index
// of the offending token in the lexed query, or -1 when the error is not
// tied to a single token.
type QuerySyntaxError struct {
	Query string
	Token int
	Msg   string
}

func (e *QuerySyntaxError) Error() string {
	if e.Token < 0 {
		return fmt.Sprintf("%s: %s", ErrQuerySyntax.Error(), e.Msg)
	}
	return fmt.Sprintf("%s at token %d: %s", ErrQuerySyntax.Error(), e.Token, e.Msg)
}

func (e *QuerySyntaxError) Unwrap() error {
	return ErrQuerySyntax
}

// Syntaxf builds a QuerySyntaxError for the given query and token index.
func Syntaxf(query string, token int, format string, args ...any) *QuerySyntaxError {
	return &QuerySyntaxError{
		Query: query,
		Token: token,
		Msg:   fmt.Sprintf(format, args...),
	}
}

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error chain to the status the search API answers
// with.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrQuerySyntax), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrFeatureDisabled):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
