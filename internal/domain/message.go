package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type MessageType string

const (
	MessageTypeSMS   MessageType = "SMS"
	MessageTypeMMS   MessageType = "MMS"
	MessageTypeEmail MessageType = "EMAIL"
)

type MessageDirection string

const (
	DirectionInbound  MessageDirection = "INBOUND"
	DirectionOutbound MessageDirection = "OUTBOUND"
)

type MessageStatus string

const (
	StatusPending   MessageStatus = "PENDING"
	StatusSent      MessageStatus = "SENT"
	StatusDelivered MessageStatus = "DELIVERED"
	StatusFailed    MessageStatus = "FAILED"
	StatusReceived  MessageStatus = "RECEIVED"
)

const (
	ProviderTwilio   = "twilio"
	ProviderSendGrid = "sendgrid"
)

// Message is one inbound or outbound message filed under a conversation.
type Message struct {
	ID                string           `db:"id" json:"id"`
	ConversationID    string           `db:"conversation_id" json:"conversationId"`
	From              string           `db:"from_address" json:"from"`
	To                string           `db:"to_address" json:"to"`
	Type              MessageType      `db:"type" json:"type"`
	Body              string           `db:"body" json:"body"`
	Attachments       Attachments      `db:"attachments" json:"attachments"`
	Direction         MessageDirection `db:"direction" json:"direction"`
	Status            MessageStatus    `db:"status" json:"status"`
	ProviderMessageID *string          `db:"provider_message_id" json:"providerMessageId"`
	Provider          string           `db:"provider" json:"provider"`
	Timestamp         time.Time        `db:"occurred_at" json:"timestamp"`
	Metadata          MessageMetadata  `db:"metadata" json:"metadata"`
	CreatedAt         time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updatedAt"`
}

// Attachments is an ordered list of attachment URLs stored as a JSON array.
type Attachments []string

func (a Attachments) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attachments: %w", err)
	}
	return string(data), nil
}

func (a *Attachments) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("failed to scan attachments: %w", err)
	}
	if len(data) == 0 {
		*a = Attachments{}
		return nil
	}
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return fmt.Errorf("failed to unmarshal attachments: %w", err)
	}
	if urls == nil {
		urls = []string{}
	}
	*a = urls
	return nil
}

// MessageMetadata is the per-message history log. Each slot holds one known
// entry kind; the history slices only ever grow.
type MessageMetadata struct {
	ProviderResponse json.RawMessage       `json:"providerResponse,omitempty"`
	WebhookPayload   json.RawMessage       `json:"webhookPayload,omitempty"`
	Error            *SendError            `json:"error,omitempty"`
	StatusUpdates    []StatusUpdate        `json:"statusUpdates,omitempty"`
	SendGridEvents   []SendGridEventRecord `json:"sendGridEvents,omitempty"`
}

// SendError records why a provider rejected an outbound send.
type SendError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// StatusUpdate is one Twilio status callback as applied to a message.
type StatusUpdate struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// SendGridEventRecord is one SendGrid event kept for audit, including
// engagement events that never change the status.
type SendGridEventRecord struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	EventID   string    `json:"eventId"`
	Reason    string    `json:"reason,omitempty"`
	Response  string    `json:"response,omitempty"`
}

func (m MessageMetadata) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(data), nil
}

func (m *MessageMetadata) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("failed to scan metadata: %w", err)
	}
	*m = MessageMetadata{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return nil
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported source type %T", src)
	}
}

// ForceError asks a provider to fail deterministically with Code.
type ForceError struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// SendRequest is an outbound send after boundary validation.
type SendRequest struct {
	From        string
	To          string
	Type        string
	Body        string
	Attachments []string
	Timestamp   time.Time
	ForceError  *ForceError
}

// SendResult pairs the stored message with the provider's raw response.
type SendResult struct {
	Message          *Message
	ProviderResponse any
}
