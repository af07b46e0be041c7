package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/response"
	"github.com/onurcolak/messaging-gateway/pkg/validator"
)

type messageSender interface {
	Send(ctx context.Context, req domain.SendRequest) (*domain.SendResult, error)
}

type MessageHandler struct {
	service messageSender
}

func NewMessageHandler(service messageSender) *MessageHandler {
	return &MessageHandler{service: service}
}

type ForceErrorRequest struct {
	Code    int    `json:"code" validate:"required,forcecode"`
	Message string `json:"message,omitempty" validate:"omitempty,max=500"`
}

type SendSMSRequest struct {
	From        string             `json:"from" validate:"required,min=1,max=100"`
	To          string             `json:"to" validate:"required,min=1,max=100"`
	Type        string             `json:"type" validate:"required,oneof=sms mms"`
	Body        string             `json:"body" validate:"required,min=1,max=1600"`
	Attachments []string           `json:"attachments,omitempty" validate:"omitempty,dive,url"`
	Timestamp   string             `json:"timestamp" validate:"required,isodate"`
	ForceError  *ForceErrorRequest `json:"_forceError,omitempty"`
}

type SendEmailRequest struct {
	From        string             `json:"from" validate:"required,email"`
	To          string             `json:"to" validate:"required,email"`
	Body        string             `json:"body" validate:"required"`
	Attachments []string           `json:"attachments,omitempty" validate:"omitempty,dive,url"`
	Timestamp   string             `json:"timestamp" validate:"required,isodate"`
	ForceError  *ForceErrorRequest `json:"_forceError,omitempty"`
}

type SendMessageResponse struct {
	Success  bool        `json:"success"`
	Message  MessageView `json:"message"`
	Provider any         `json:"provider"`
}

// SendSMS godoc
// @Summary Send an SMS or MMS
// @Description Files the message under its conversation, hands it to the SMS provider and records the outcome
// @Tags messages
// @Accept json
// @Produce json
// @Param message body SendSMSRequest true "Message to send"
// @Success 201 {object} SendMessageResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/messages/sms [post]
func (h *MessageHandler) SendSMS(c echo.Context) error {
	var req SendSMSRequest
	if err := bindAndValidate(c, &req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	ts, err := validator.ParseTimestamp(req.Timestamp)
	if err != nil {
		return response.Error(c, domain.NewValidationError("timestamp must be an ISO 8601 timestamp", nil))
	}

	return h.send(c, domain.SendRequest{
		From:        req.From,
		To:          req.To,
		Type:        req.Type,
		Body:        req.Body,
		Attachments: req.Attachments,
		Timestamp:   ts,
		ForceError:  req.ForceError.toDomain(),
	})
}

// SendEmail godoc
// @Summary Send an email
// @Description Files the email under its conversation, hands it to the email provider and records the outcome
// @Tags messages
// @Accept json
// @Produce json
// @Param message body SendEmailRequest true "Email to send"
// @Success 201 {object} SendMessageResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/messages/email [post]
func (h *MessageHandler) SendEmail(c echo.Context) error {
	var req SendEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	ts, err := validator.ParseTimestamp(req.Timestamp)
	if err != nil {
		return response.Error(c, domain.NewValidationError("timestamp must be an ISO 8601 timestamp", nil))
	}

	return h.send(c, domain.SendRequest{
		From:        req.From,
		To:          req.To,
		Type:        "email",
		Body:        req.Body,
		Attachments: req.Attachments,
		Timestamp:   ts,
		ForceError:  req.ForceError.toDomain(),
	})
}

func (h *MessageHandler) send(c echo.Context, req domain.SendRequest) error {
	result, err := h.service.Send(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}

	return c.JSON(http.StatusCreated, SendMessageResponse{
		Success:  true,
		Message:  NewMessageView(result.Message),
		Provider: result.ProviderResponse,
	})
}

func (f *ForceErrorRequest) toDomain() *domain.ForceError {
	if f == nil {
		return nil
	}
	return &domain.ForceError{Code: f.Code, Message: f.Message}
}

// MessageView is the API shape of a message. Provider metadata stays internal.
type MessageView struct {
	ID                string                  `json:"id"`
	ConversationID    string                  `json:"conversationId"`
	From              string                  `json:"from"`
	To                string                  `json:"to"`
	Type              domain.MessageType      `json:"type"`
	Body              string                  `json:"body"`
	Attachments       []string                `json:"attachments"`
	Direction         domain.MessageDirection `json:"direction"`
	Status            domain.MessageStatus    `json:"status"`
	ProviderMessageID *string                 `json:"providerMessageId"`
	Provider          string                  `json:"provider"`
	Timestamp         time.Time               `json:"timestamp"`
	CreatedAt         time.Time               `json:"createdAt"`
}

func NewMessageView(m *domain.Message) MessageView {
	attachments := []string(m.Attachments)
	if attachments == nil {
		attachments = []string{}
	}

	return MessageView{
		ID:                m.ID,
		ConversationID:    m.ConversationID,
		From:              m.From,
		To:                m.To,
		Type:              m.Type,
		Body:              m.Body,
		Attachments:       attachments,
		Direction:         m.Direction,
		Status:            m.Status,
		ProviderMessageID: m.ProviderMessageID,
		Provider:          m.Provider,
		Timestamp:         m.Timestamp,
		CreatedAt:         m.CreatedAt,
	}
}

// bindAndValidate decodes the request body into req and runs the struct tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("Invalid request body", nil)
	}
	return c.Validate(req)
}
