package domain

import (
	"encoding/json"
	"time"
)

// InboundMessage is an inbound message webhook after boundary validation,
// independent of which provider delivered it.
type InboundMessage struct {
	From              string
	To                string
	Type              string
	Body              string
	Attachments       []string
	ProviderMessageID string
	Timestamp         time.Time
	RawPayload        json.RawMessage
}

// TwilioStatusEvent is a single Twilio delivery status callback.
type TwilioStatusEvent struct {
	MessageSid    string `json:"MessageSid" form:"MessageSid"`
	MessageStatus string `json:"MessageStatus" form:"MessageStatus"`
	AccountSid    string `json:"AccountSid,omitempty" form:"AccountSid"`
	From          string `json:"From,omitempty" form:"From"`
	To            string `json:"To,omitempty" form:"To"`
	APIVersion    string `json:"ApiVersion,omitempty" form:"ApiVersion"`
	ErrorCode     string `json:"ErrorCode,omitempty" form:"ErrorCode"`
	ErrorMessage  string `json:"ErrorMessage,omitempty" form:"ErrorMessage"`
	SmsSid        string `json:"SmsSid,omitempty" form:"SmsSid"`
	SmsStatus     string `json:"SmsStatus,omitempty" form:"SmsStatus"`
}

// SendGridEvent is one entry of a SendGrid event webhook batch.
type SendGridEvent struct {
	Email       string   `json:"email"`
	Timestamp   int64    `json:"timestamp"`
	SMTPID      string   `json:"smtp-id,omitempty"`
	Event       string   `json:"event"`
	EventID     string   `json:"sg_event_id"`
	SGMessageID string   `json:"sg_message_id"`
	Category    []string `json:"category,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Status      string   `json:"status,omitempty"`
	Response    string   `json:"response,omitempty"`
	Attempt     string   `json:"attempt,omitempty"`
	IP          string   `json:"ip,omitempty"`
	URL         string   `json:"url,omitempty"`
	UserAgent   string   `json:"useragent,omitempty"`
	Type        string   `json:"type,omitempty"`
	MachineOpen bool     `json:"sg_machine_open,omitempty"`
}

// IngestResult tells the webhook boundary what an inbound delivery did.
type IngestResult struct {
	Message   *Message
	Duplicate bool
}

// EventBatchResult counts what happened to each event of a SendGrid batch.
type EventBatchResult struct {
	Applied   int `json:"applied"`
	Skipped   int `json:"skipped"`
	Unmatched int `json:"unmatched"`
}
