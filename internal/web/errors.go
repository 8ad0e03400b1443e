package web

// errors.go turns service errors into JSON responses.
//
// The flow:
//  1. Handler encounters an error and calls respondError(w, r, err)
//  2. statusFor picks the HTTP status from the error's type
//  3. core.MapError supplies the user-facing message, action and code
//  4. The technical error is logged with the request id for correlation

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/logging"
)

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errNoFile       = errors.New("no file provided")
	errFileTooLarge = errors.New("file too large")
	errInvalidBody  = errors.New("invalid request body")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case core.IsInsufficientStock(err),
		errors.Is(err, core.ErrReferenced),
		errors.Is(err, core.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrUnknownEntity):
		return http.StatusNotFound
	case core.IsValidationError(err),
		errors.Is(err, core.ErrEmptyCart),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrInvalidPrice),
		errors.Is(err, core.ErrInvalidDiscount),
		errors.Is(err, core.ErrInvalidDiscountType),
		errors.Is(err, errNoFile),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, errFileTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped JSON error response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	resp := errorResponse(msg)
	if status < http.StatusInternalServerError {
		resp.Error = clientDetail(err)
	}
	writeJSON(w, r, status, resp)
}

// respondMessage writes msg without logging.
func respondMessage(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	writeJSON(w, r, status, errorResponse(msg))
}

func errorResponse(msg core.UserMessage) ErrorResponse {
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}

// clientDetail is the specific reason shown for a 4xx response. Domain
// errors carry no internals, so their text is safe to return.
func clientDetail(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var stock *core.InsufficientStockError
	if errors.As(err, &stock) {
		return stock.Error()
	}
	var missing *core.ProductNotFoundError
	if errors.As(err, &missing) {
		return missing.Error()
	}
	return err.Error()
}
