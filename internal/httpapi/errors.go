package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"subclash/internal/convert"
	"subclash/internal/fetch"
)

const usageHint = "Usage: GET /{mode}/{subscription-url} where mode is whitelist or blacklist. " +
	"Format: /{mode}/{subscription-url}, e.g. /blacklist/https://example.com/sub?token=abc"

// Stages reported in the error envelope.
const (
	stageRequest = "parse_request"
	stageFetch   = "fetch_sub"
	stageConvert = "convert"
	stageRender  = "render"
	stageError   = "internal"
)

// Error codes reported in the error envelope.
const (
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeNoValidProxies   = "NO_VALID_PROXIES"
	CodeInternal         = "INTERNAL_ERROR"
)

// AppError is the JSON error payload.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage"`
	Hint    string `json:"hint,omitempty"`
}

type ErrorResponse struct {
	Error AppError `json:"error"`
}

// APIError is an error produced by the HTTP layer itself.
type APIError struct {
	Status   int
	AppError AppError
	Cause    error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *APIError) Unwrap() error { return e.Cause }

func requestError(message string) error {
	return &APIError{
		Status: http.StatusBadRequest,
		AppError: AppError{
			Code:    CodeInvalidArgument,
			Message: message,
			Stage:   stageRequest,
			Hint:    usageHint,
		},
	}
}

// classify maps any pipeline error onto a status and payload.
func classify(err error) (int, AppError) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status, ae.AppError
	}

	var fe *fetch.FetchError
	if errors.As(err, &fe) {
		return fe.Status, AppError{Code: fe.Code, Message: fe.Message, Stage: stageFetch}
	}

	if errors.Is(err, convert.ErrEmptySubscription) {
		return http.StatusBadRequest, AppError{
			Code:    CodeNoValidProxies,
			Message: "No valid proxies found in subscription",
			Stage:   stageConvert,
			Hint:    "only ss:// and vmess:// links are recognized",
		}
	}

	return http.StatusInternalServerError, AppError{
		Code:    CodeInternal,
		Message: "Internal error",
		Stage:   stageError,
	}
}
