package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/messaging-gateway/internal/domain"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return body
}

func TestNewPagination_HasMore(t *testing.T) {
	p := NewPagination(2, 20, 20, 45)
	if !p.HasMore {
		t.Errorf("expected HasMore=true for page 2 of 45 items")
	}

	p = NewPagination(3, 20, 5, 45)
	if p.HasMore {
		t.Errorf("expected HasMore=false on the last page")
	}
	if p.Total != 45 || p.Page != 3 || p.Limit != 20 {
		t.Errorf("unexpected pagination %+v", p)
	}
}

func TestError_ProviderErrorCarriesProviderCode(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/messages/sms")
	c.Response().Header().Set(HeaderCorrelationID, "req_abc")

	err := fmt.Errorf("send failed: %w", &domain.ProviderError{
		Provider:   domain.ProviderTwilio,
		StatusCode: 429,
		Message:    "Provider error: 429",
	})

	if writeErr := Error(c, err); writeErr != nil {
		t.Fatalf("Error returned error: %v", writeErr)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}

	body := decodeError(t, rec)
	if body.Success {
		t.Errorf("expected Success=false")
	}
	if body.Error.Code != domain.CodeProvider {
		t.Errorf("expected code %s, got %s", domain.CodeProvider, body.Error.Code)
	}
	if body.Error.Provider != "twilio" || body.Error.ProviderCode != 429 {
		t.Errorf("expected provider twilio/429, got %s/%d", body.Error.Provider, body.Error.ProviderCode)
	}
	if body.Error.CorrelationID != "req_abc" {
		t.Errorf("expected correlation id req_abc, got %q", body.Error.CorrelationID)
	}
}

func TestError_ValidationDetails(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/messages/sms")

	err := domain.NewValidationError("Validation failed", map[string]string{"to": "to is a required field"})
	if writeErr := Error(c, err); writeErr != nil {
		t.Fatalf("Error returned error: %v", writeErr)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	body := decodeError(t, rec)
	if body.Error.Details["to"] == "" {
		t.Errorf("expected details for 'to', got %v", body.Error.Details)
	}
	if body.Error.CorrelationID == "" {
		t.Errorf("expected a generated correlation id")
	}
}

func TestError_RateLimitSetsRetryAfter(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/messages/sms")

	if err := Error(c, &domain.RateLimitError{RetryAfter: 30 * time.Second}); err != nil {
		t.Fatalf("Error returned error: %v", err)
	}

	if rec.Header().Get("Retry-After") != "30" {
		t.Errorf("expected Retry-After 30, got %q", rec.Header().Get("Retry-After"))
	}
	if body := decodeError(t, rec); body.Error.RetryAfter != 30 {
		t.Errorf("expected retryAfter 30, got %d", body.Error.RetryAfter)
	}
}

func TestError_UnknownErrorIsGeneric500(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/conversations")

	if err := Error(c, errors.New("connection reset by peer")); err != nil {
		t.Fatalf("Error returned error: %v", err)
	}

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}

	body := decodeError(t, rec)
	if body.Error.Code != domain.CodeInternal {
		t.Errorf("expected code %s, got %s", domain.CodeInternal, body.Error.Code)
	}
	if body.Error.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", body.Error.Message)
	}
}

func TestError_DatabaseErrorHidesDetail(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/messages/sms")

	err := &domain.DatabaseError{Operation: "mark message failed", Err: errors.New("deadlock")}
	if writeErr := Error(c, err); writeErr != nil {
		t.Fatalf("Error returned error: %v", writeErr)
	}

	body := decodeError(t, rec)
	if rec.Code != http.StatusInternalServerError || body.Error.Code != domain.CodeDatabase {
		t.Fatalf("expected 500 DATABASE_ERROR, got %d %s", rec.Code, body.Error.Code)
	}
	if body.Error.Message != "Database operation failed" {
		t.Errorf("expected sanitized message, got %q", body.Error.Message)
	}
}

func TestHTTPErrorHandler_RouteNotFound(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/nope")

	HTTPErrorHandler(echo.ErrNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	body := decodeError(t, rec)
	if body.Error.Code != domain.CodeRouteNotFound {
		t.Errorf("expected code %s, got %s", domain.CodeRouteNotFound, body.Error.Code)
	}
	if body.Error.Message != "Route GET /nope not found" {
		t.Errorf("unexpected message %q", body.Error.Message)
	}
}

func TestHTTPErrorHandler_BindErrorIsValidation(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/messages/sms")

	HTTPErrorHandler(echo.NewHTTPError(http.StatusBadRequest, "unexpected EOF"), c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error.Code != domain.CodeValidation {
		t.Errorf("expected code %s, got %s", domain.CodeValidation, body.Error.Code)
	}
}
