package provider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"net/http"
	"time"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
)

const mockAccountSID = "ACmock1234567890abcdef1234567890"

// TwilioMessage mirrors the Twilio Messages resource returned on create.
type TwilioMessage struct {
	SID         string `json:"sid"`
	AccountSID  string `json:"account_sid"`
	From        string `json:"from"`
	To          string `json:"to"`
	Body        string `json:"body"`
	Status      string `json:"status"`
	NumSegments string `json:"num_segments"`
	NumMedia    string `json:"num_media"`
	Direction   string `json:"direction"`
	Price       string `json:"price"`
	PriceUnit   string `json:"price_unit"`
	DateCreated string `json:"date_created"`
	DateUpdated string `json:"date_updated"`
	URI         string `json:"uri"`
}

// SendGridResponse mirrors what the SendGrid v3 mail send endpoint returns.
type SendGridResponse struct {
	StatusCode int     `json:"statusCode"`
	MessageID  string  `json:"message_id"`
	Body       *string `json:"body"`
}

// Latency bounds the simulated network delay of the mocks.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

func (l Latency) wait(ctx context.Context) error {
	if l.Max <= 0 {
		return ctx.Err()
	}

	delay := l.Min
	if spread := l.Max - l.Min; spread > 0 {
		delay += time.Duration(mathrand.Int63n(int64(spread)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MockSMSProvider answers like Twilio without leaving the process.
type MockSMSProvider struct {
	latency Latency
	now     func() time.Time
}

func NewMockSMSProvider(latency Latency) *MockSMSProvider {
	return &MockSMSProvider{latency: latency, now: time.Now}
}

func (p *MockSMSProvider) Name() string { return domain.ProviderTwilio }

func (p *MockSMSProvider) SendMessage(ctx context.Context, payload SMSPayload) (*Result, error) {
	if payload.ForceError != nil {
		return nil, forcedError(payload.ForceError)
	}

	if err := p.latency.wait(ctx); err != nil {
		return nil, fmt.Errorf("twilio mock interrupted: %w", err)
	}

	prefix := "SM"
	if payload.Type == domain.MessageTypeMMS {
		prefix = "MM"
	}
	sid := prefix + randomHex(16)
	now := p.now().UTC().Format(time.RFC3339Nano)

	msg := TwilioMessage{
		SID:         sid,
		AccountSID:  mockAccountSID,
		From:        payload.From,
		To:          payload.To,
		Body:        payload.Body,
		Status:      "queued",
		NumSegments: fmt.Sprintf("%d", segments(payload.Body)),
		NumMedia:    fmt.Sprintf("%d", len(payload.Attachments)),
		Direction:   "outbound-api",
		Price:       "-0.00750",
		PriceUnit:   "USD",
		DateCreated: now,
		DateUpdated: now,
		URI:         fmt.Sprintf("/2010-04-01/Accounts/%s/Messages/%s.json", mockAccountSID, sid),
	}

	logger.Debugf("twilio mock accepted %s to %s", sid, payload.To)

	return &Result{
		ExternalID: sid,
		Status:     msg.Status,
		StatusCode: http.StatusCreated,
		Raw:        msg,
	}, nil
}

// MockEmailProvider answers like SendGrid without leaving the process.
type MockEmailProvider struct {
	latency Latency
	now     func() time.Time
}

func NewMockEmailProvider(latency Latency) *MockEmailProvider {
	return &MockEmailProvider{latency: latency, now: time.Now}
}

func (p *MockEmailProvider) Name() string { return domain.ProviderSendGrid }

func (p *MockEmailProvider) SendEmail(ctx context.Context, payload EmailPayload) (*Result, error) {
	if payload.ForceError != nil {
		return nil, forcedError(payload.ForceError)
	}

	if err := p.latency.wait(ctx); err != nil {
		return nil, fmt.Errorf("sendgrid mock interrupted: %w", err)
	}

	messageID := fmt.Sprintf("%s.filter001.%d.0", randomHex(8), p.now().UnixMilli())

	logger.Debugf("sendgrid mock accepted %s to %s", messageID, payload.To)

	return &Result{
		ExternalID: messageID,
		Status:     "accepted",
		StatusCode: http.StatusAccepted,
		Raw: SendGridResponse{
			StatusCode: http.StatusAccepted,
			MessageID:  messageID,
		},
	}, nil
}

// segments counts 160-character SMS segments, at least one.
func segments(body string) int {
	n := (len(body) + 159) / 160
	if n == 0 {
		return 1
	}
	return n
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
