package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/messaging-gateway/internal/scheduler"
	"github.com/onurcolak/messaging-gateway/pkg/response"
	"github.com/onurcolak/messaging-gateway/pkg/validator"
)

type sweeperController interface {
	StartWithParams(ctx context.Context, interval, staleAfter time.Duration) error
	Stop() error
	IsRunning() bool
	GetStatus() scheduler.SchedulerStatus
}

type SweeperHandler struct {
	sweeper sweeperController
	ctx     context.Context
}

// StartSweeperRequest overrides the configured timings, both in minutes.
type StartSweeperRequest struct {
	Interval   *int `json:"interval,omitempty" validate:"omitempty,min=1"`
	StaleAfter *int `json:"staleAfter,omitempty" validate:"omitempty,min=1"`
}

func NewSweeperHandler(sweeper sweeperController, ctx context.Context) *SweeperHandler {
	return &SweeperHandler{
		sweeper: sweeper,
		ctx:     ctx,
	}
}

// StartSweeper godoc
// @Summary Start the stale message sweeper
// @Description Starts failing outbound messages left PENDING without a provider outcome, with optional timings
// @Tags admin
// @Accept json
// @Produce json
// @Param x-admin-key header string true "Admin API key"
// @Param request body StartSweeperRequest false "Sweeper parameters (optional)"
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/admin/sweeper/start [post]
func (h *SweeperHandler) StartSweeper(c echo.Context) error {
	if h.sweeper.IsRunning() {
		return response.OkWithMessage(c, "Sweeper is already running", h.sweeper.GetStatus())
	}

	var req StartSweeperRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return validator.HandleValidationError(c, err)
		}
	}

	var interval, staleAfter time.Duration
	if req.Interval != nil {
		interval = time.Duration(*req.Interval) * time.Minute
	}
	if req.StaleAfter != nil {
		staleAfter = time.Duration(*req.StaleAfter) * time.Minute
	}

	// The sweeper outlives this request, so it runs on the server's context.
	if err := h.sweeper.StartWithParams(h.ctx, interval, staleAfter); err != nil {
		return response.Error(c, err)
	}

	return response.OkWithMessage(c, "Sweeper started successfully", h.sweeper.GetStatus())
}

// StopSweeper godoc
// @Summary Stop the stale message sweeper
// @Tags admin
// @Produce json
// @Param x-admin-key header string true "Admin API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/admin/sweeper/stop [post]
func (h *SweeperHandler) StopSweeper(c echo.Context) error {
	if !h.sweeper.IsRunning() {
		return response.OkWithMessage(c, "Sweeper is already stopped", h.sweeper.GetStatus())
	}

	if err := h.sweeper.Stop(); err != nil {
		return response.Error(c, err)
	}

	return response.OkWithMessage(c, "Sweeper stopped successfully", h.sweeper.GetStatus())
}

// GetSweeperStatus godoc
// @Summary Get sweeper status
// @Description Returns whether the sweeper runs, its timings and how many messages it has failed
// @Tags admin
// @Produce json
// @Param x-admin-key header string true "Admin API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/admin/sweeper/status [get]
func (h *SweeperHandler) GetSweeperStatus(c echo.Context) error {
	return response.Ok(c, h.sweeper.GetStatus())
}
