package provider

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/onurcolak/messaging-gateway/environments"
	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
)

const relayEmailSubject = "New message"

// RelayResponse is what the relay answers for an accepted send.
type RelayResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

type relaySMSRequest struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	Type        string   `json:"type"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
}

// RelayClient forwards sends to an HTTP relay that fronts the real carriers.
// SMS goes to <url>/sms as JSON; email goes to <url>/email as a SendGrid v3
// mail body.
type RelayClient struct {
	httpClient *resty.Client
	baseURL    string
}

func NewRelayClient(cfg environments.ProviderConfig) *RelayClient {
	client := resty.New().
		SetTimeout(cfg.RelayTimeout).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.RelayAuthKey != "" {
		client.SetAuthToken(cfg.RelayAuthKey)
	}

	return &RelayClient{
		httpClient: client,
		baseURL:    strings.TrimRight(cfg.RelayURL, "/"),
	}
}

func (c *RelayClient) GetURL() string {
	return c.baseURL
}

// SMS and Email expose the relay under the two provider interfaces.
func (c *RelayClient) SMS() SMSProvider     { return relaySMS{c} }
func (c *RelayClient) Email() EmailProvider { return relayEmail{c} }

type relaySMS struct{ c *RelayClient }

func (r relaySMS) Name() string { return domain.ProviderTwilio }

func (r relaySMS) SendMessage(ctx context.Context, payload SMSPayload) (*Result, error) {
	if payload.ForceError != nil {
		return nil, forcedError(payload.ForceError)
	}

	body := relaySMSRequest{
		From:        payload.From,
		To:          payload.To,
		Type:        strings.ToLower(string(payload.Type)),
		Body:        payload.Body,
		Attachments: payload.Attachments,
	}
	return r.c.post(ctx, "/sms", body)
}

type relayEmail struct{ c *RelayClient }

func (r relayEmail) Name() string { return domain.ProviderSendGrid }

func (r relayEmail) SendEmail(ctx context.Context, payload EmailPayload) (*Result, error) {
	if payload.ForceError != nil {
		return nil, forcedError(payload.ForceError)
	}
	return r.c.post(ctx, "/email", buildMail(payload))
}

// buildMail renders an email payload as a SendGrid v3 mail body. Attachment
// URLs are appended to the text since the relay does not fetch them. The HTML
// part is the escaped text so user markup is never rendered.
func buildMail(payload EmailPayload) []byte {
	text := payload.Body
	if len(payload.Attachments) > 0 {
		text += "\n\nAttachments:\n" + strings.Join(payload.Attachments, "\n")
	}

	from := mail.NewEmail("", payload.From)
	to := mail.NewEmail("", payload.To)
	message := mail.NewSingleEmail(from, relayEmailSubject, to, text, html.EscapeString(text))
	message.AddCategories("messaging-gateway")

	return mail.GetRequestBody(message)
}

func (c *RelayClient) post(ctx context.Context, path string, body any) (*Result, error) {
	var relayResp RelayResponse

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&relayResp).
		Post(c.baseURL + path)

	duration := time.Since(startTime)

	if err != nil {
		return nil, fmt.Errorf("failed to send relay request: %w", err)
	}

	logger.Infof("Relay request to %s%s completed in %v (status: %d)", c.baseURL, path, duration, resp.StatusCode())

	if !resp.IsSuccess() {
		return nil, &Error{
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("relay returned status %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	if relayResp.MessageID == "" {
		return nil, &Error{
			StatusCode: resp.StatusCode(),
			Message:    "relay response is missing messageId",
		}
	}

	return &Result{
		ExternalID: relayResp.MessageID,
		Status:     relayResp.Status,
		StatusCode: resp.StatusCode(),
		Raw:        relayResp,
	}, nil
}
