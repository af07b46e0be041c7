package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }
func (f fakePinger) Ping(ctx context.Context) error        { return f.err }

func runHealth(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	if err := h.Health(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	return rec.Code, resp
}

func TestHealth(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name       string
		handler    *HealthHandler
		wantCode   int
		wantStatus string
		wantRedis  string
	}{
		{"all up", NewHealthHandler(fakePinger{}).WithRedis(fakePinger{}), http.StatusOK, "ok", "up"},
		{"redis disabled", NewHealthHandler(fakePinger{}), http.StatusOK, "ok", "disabled"},
		{"redis down", NewHealthHandler(fakePinger{}).WithRedis(fakePinger{err: down}), http.StatusOK, "degraded", "down"},
		{"database down", NewHealthHandler(fakePinger{err: down}).WithRedis(fakePinger{}), http.StatusServiceUnavailable, "down", "up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := runHealth(t, tt.handler)
			if code != tt.wantCode || resp.Status != tt.wantStatus {
				t.Fatalf("expected %d/%s, got %d/%s", tt.wantCode, tt.wantStatus, code, resp.Status)
			}
			if resp.Components["redis"].Status != tt.wantRedis {
				t.Fatalf("expected redis %s, got %s", tt.wantRedis, resp.Components["redis"].Status)
			}
		})
	}
}
