package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
)

// HeaderCorrelationID carries the per-request correlation identifier.
const HeaderCorrelationID = "X-Correlation-ID"

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorBody struct {
	Message       string            `json:"message"`
	Code          string            `json:"code"`
	CorrelationID string            `json:"correlationId"`
	Details       map[string]string `json:"details,omitempty"`
	RetryAfter    int               `json:"retryAfter,omitempty"`
	Provider      string            `json:"provider,omitempty"`
	ProviderCode  int               `json:"providerCode,omitempty"`
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// NewPagination builds the pagination block for a page of returned items.
func NewPagination(page, limit, returned int, total int64) Pagination {
	offset := (page - 1) * limit
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: int64(offset+returned) < total,
	}
}

func Ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
	})
}

func OkWithMessage(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Ack answers a provider webhook with a plain 200 OK.
func Ack(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// CorrelationID returns the request's correlation id, as set by the request id
// middleware or sent by the caller.
func CorrelationID(c echo.Context) string {
	if id := c.Response().Header().Get(HeaderCorrelationID); id != "" {
		return id
	}
	if id := c.Request().Header.Get(HeaderCorrelationID); id != "" {
		return id
	}
	return "err_" + uuid.NewString()
}

// Error renders any error as the standard error envelope. Known error kinds
// keep their code and status; anything else is a generic 500.
func Error(c echo.Context, err error) error {
	body := ErrorBody{CorrelationID: CorrelationID(c)}
	status := http.StatusInternalServerError

	var appErr domain.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Error()
		body.Code = appErr.Code()
		status = appErr.HTTPStatus()
	} else {
		body.Message = "Internal server error"
		body.Code = domain.CodeInternal
	}

	var (
		validationErr *domain.ValidationError
		rateLimitErr  *domain.RateLimitError
		providerErr   *domain.ProviderError
		databaseErr   *domain.DatabaseError
	)
	switch {
	case errors.As(err, &validationErr):
		body.Details = validationErr.Details
	case errors.As(err, &rateLimitErr):
		body.RetryAfter = rateLimitErr.RetryAfterSeconds()
		c.Response().Header().Set("Retry-After", strconv.Itoa(body.RetryAfter))
	case errors.As(err, &providerErr):
		body.Provider = providerErr.Provider
		body.ProviderCode = providerErr.StatusCode
	case errors.As(err, &databaseErr):
		body.Message = "Database operation failed"
	}

	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("correlationId", body.CorrelationID).
			Str("code", body.Code).
			Str("method", c.Request().Method).
			Str("uri", c.Request().RequestURI).
			Msg("request failed")
	} else {
		logger.Warn().
			Str("correlationId", body.CorrelationID).
			Str("code", body.Code).
			Str("uri", c.Request().RequestURI).
			Msg(body.Message)
	}

	return c.JSON(status, ErrorResponse{Success: false, Error: body})
}

// HTTPErrorHandler replaces echo's default handler so router and bind errors
// use the same envelope as application errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		err = fromHTTPError(c, he)
	}

	if writeErr := Error(c, err); writeErr != nil {
		logger.Errorf("failed to write error response: %v", writeErr)
	}
}

// httpError adapts a framework error that has no domain counterpart.
type httpError struct {
	status  int
	code    string
	message string
}

func (e *httpError) Error() string   { return e.message }
func (e *httpError) Code() string    { return e.code }
func (e *httpError) HTTPStatus() int { return e.status }

func fromHTTPError(c echo.Context, he *echo.HTTPError) error {
	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	}

	switch he.Code {
	case http.StatusNotFound:
		return &httpError{
			status:  http.StatusNotFound,
			code:    domain.CodeRouteNotFound,
			message: "Route " + c.Request().Method + " " + c.Request().URL.Path + " not found",
		}
	case http.StatusMethodNotAllowed:
		return &httpError{status: he.Code, code: domain.CodeRouteNotFound, message: message}
	case http.StatusBadRequest:
		return domain.NewValidationError(message, nil)
	case http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return &httpError{status: he.Code, code: domain.CodeValidation, message: message}
	case http.StatusUnauthorized:
		return &domain.AuthenticationError{Message: message}
	case http.StatusTooManyRequests:
		return &domain.RateLimitError{}
	}

	if he.Code < http.StatusInternalServerError {
		return &httpError{status: he.Code, code: domain.CodeValidation, message: message}
	}
	return he
}
