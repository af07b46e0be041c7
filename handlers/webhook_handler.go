package handlers

import (
	"context"
	"encoding/json"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/internal/middlewares"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
	"github.com/onurcolak/messaging-gateway/pkg/response"
	"github.com/onurcolak/messaging-gateway/pkg/validator"
)

type inboundIngestor interface {
	Ingest(ctx context.Context, in domain.InboundMessage, channel domain.ChannelType) (*domain.IngestResult, error)
}

type statusProcessor interface {
	ApplyTwilioStatus(ctx context.Context, ev domain.TwilioStatusEvent) error
	ApplySendGridEvents(ctx context.Context, events []domain.SendGridEvent) (domain.EventBatchResult, error)
}

// WebhookHandler receives provider callbacks. Inbound deliveries are always
// acknowledged once they parse; status callbacks answer 500 on processing
// failures so the provider retries them.
type WebhookHandler struct {
	inbound inboundIngestor
	status  statusProcessor
}

func NewWebhookHandler(inbound inboundIngestor, status statusProcessor) *WebhookHandler {
	return &WebhookHandler{inbound: inbound, status: status}
}

type InboundSMSRequest struct {
	From                string   `json:"from" validate:"required,max=100"`
	To                  string   `json:"to" validate:"required,max=100"`
	Type                string   `json:"type" validate:"required,oneof=sms mms"`
	MessagingProviderID string   `json:"messaging_provider_id" validate:"required"`
	Body                string   `json:"body"`
	Attachments         []string `json:"attachments,omitempty" validate:"omitempty,dive,url"`
	Timestamp           string   `json:"timestamp" validate:"required,isodate"`
}

type InboundEmailRequest struct {
	From        string   `json:"from" validate:"required,max=320"`
	To          string   `json:"to" validate:"required,max=320"`
	XillioID    string   `json:"xillio_id" validate:"required"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty" validate:"omitempty,dive,url"`
	Timestamp   string   `json:"timestamp" validate:"required,isodate"`
}

// InboundSMS godoc
// @Summary Receive an inbound SMS or MMS
// @Description Stores the message under its conversation. Redeliveries of the same provider message are acknowledged without storing it twice
// @Tags webhooks
// @Accept json
// @Produce plain
// @Param payload body InboundSMSRequest true "Inbound message"
// @Success 200 {string} string "OK"
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/webhooks/sms [post]
func (h *WebhookHandler) InboundSMS(c echo.Context) error {
	var req InboundSMSRequest
	if err := bindAndValidate(c, &req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	ts, err := validator.ParseTimestamp(req.Timestamp)
	if err != nil {
		return response.Error(c, domain.NewValidationError("timestamp must be an ISO 8601 timestamp", nil))
	}

	h.ingest(c, domain.InboundMessage{
		From:              req.From,
		To:                req.To,
		Type:              req.Type,
		Body:              req.Body,
		Attachments:       req.Attachments,
		ProviderMessageID: req.MessagingProviderID,
		Timestamp:         ts,
		RawPayload:        rawPayload(c, req),
	}, domain.ChannelSMS)

	return response.Ack(c)
}

// InboundEmail godoc
// @Summary Receive an inbound email
// @Description Stores the email under its conversation. Redeliveries of the same provider message are acknowledged without storing it twice
// @Tags webhooks
// @Accept json
// @Produce plain
// @Param payload body InboundEmailRequest true "Inbound email"
// @Success 200 {string} string "OK"
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/webhooks/email [post]
func (h *WebhookHandler) InboundEmail(c echo.Context) error {
	var req InboundEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	ts, err := validator.ParseTimestamp(req.Timestamp)
	if err != nil {
		return response.Error(c, domain.NewValidationError("timestamp must be an ISO 8601 timestamp", nil))
	}

	h.ingest(c, domain.InboundMessage{
		From:              req.From,
		To:                req.To,
		Type:              "email",
		Body:              req.Body,
		Attachments:       req.Attachments,
		ProviderMessageID: req.XillioID,
		Timestamp:         ts,
		RawPayload:        rawPayload(c, req),
	}, domain.ChannelEmail)

	return response.Ack(c)
}

// ingest stores an inbound message. Failures are logged and never reach the
// provider.
func (h *WebhookHandler) ingest(c echo.Context, in domain.InboundMessage, channel domain.ChannelType) {
	log := logger.With(map[string]any{
		"correlationId":     response.CorrelationID(c),
		"providerMessageId": in.ProviderMessageID,
		"channel":           string(channel),
	})

	result, err := h.inbound.Ingest(c.Request().Context(), in, channel)
	if err != nil {
		log.Error().Err(err).Msg("Failed to process inbound webhook")
		return
	}

	if result.Duplicate {
		log.Info().Str("messageId", result.Message.ID).Msg("Duplicate inbound webhook ignored")
	}
}

// TwilioStatus godoc
// @Summary Receive a Twilio delivery status callback
// @Description Applies the status to the matching outbound message and appends it to the message history. Unknown messages are acknowledged
// @Tags webhooks
// @Accept json,x-www-form-urlencoded
// @Produce plain
// @Param X-Twilio-Signature header string false "Twilio request signature"
// @Param payload body domain.TwilioStatusEvent true "Status callback"
// @Success 200 {string} string "OK"
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/webhooks/sms/status [post]
func (h *WebhookHandler) TwilioStatus(c echo.Context) error {
	var ev domain.TwilioStatusEvent
	if err := c.Bind(&ev); err != nil {
		return response.Error(c, domain.NewValidationError("Invalid status callback", nil))
	}

	if ev.MessageSid == "" && ev.SmsSid == "" {
		logger.Warn().
			Str("correlationId", response.CorrelationID(c)).
			Msg("Twilio status callback without a message sid")
		return response.Ack(c)
	}

	if err := h.status.ApplyTwilioStatus(c.Request().Context(), ev); err != nil {
		return response.Error(c, err)
	}

	return response.Ack(c)
}

// SendGridEvents godoc
// @Summary Receive a SendGrid event batch
// @Description Applies each event to the matching outbound email. Events already processed are skipped
// @Tags webhooks
// @Accept json
// @Produce plain
// @Param X-Twilio-Email-Event-Webhook-Signature header string false "SendGrid ECDSA signature"
// @Param X-Twilio-Email-Event-Webhook-Timestamp header string false "SendGrid signature timestamp"
// @Param events body []domain.SendGridEvent true "Event batch"
// @Success 200 {string} string "OK"
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/webhooks/email/events [post]
func (h *WebhookHandler) SendGridEvents(c echo.Context) error {
	var events []domain.SendGridEvent
	if err := c.Bind(&events); err != nil {
		return response.Error(c, domain.NewValidationError("Event batch must be a JSON array", nil))
	}

	result, err := h.status.ApplySendGridEvents(c.Request().Context(), events)
	if err != nil {
		return response.Error(c, err)
	}

	logger.Info().
		Int("events", len(events)).
		Int("applied", result.Applied).
		Int("skipped", result.Skipped).
		Int("unmatched", result.Unmatched).
		Msg("SendGrid event batch processed")

	return response.Ack(c)
}

// rawPayload returns the webhook body as the provider sent it. The decoded
// request is re-encoded only when no raw body was captured.
func rawPayload(c echo.Context, v any) json.RawMessage {
	if body, ok := c.Get(middlewares.RawBodyKey).([]byte); ok && json.Valid(body) {
		return json.RawMessage(body)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
