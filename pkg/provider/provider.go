// Package provider holds the outbound SMS and email provider abstractions and
// their mock and relay implementations.
package provider

import (
	"context"
	"fmt"

	"github.com/onurcolak/messaging-gateway/internal/domain"
)

// SMSPayload is what the gateway hands to an SMS/MMS provider.
type SMSPayload struct {
	From        string
	To          string
	Type        domain.MessageType
	Body        string
	Attachments []string
	ForceError  *domain.ForceError
}

// EmailPayload is what the gateway hands to an email provider.
type EmailPayload struct {
	From        string
	To          string
	Body        string
	Attachments []string
	ForceError  *domain.ForceError
}

// Result is a provider's answer to an accepted send.
type Result struct {
	ExternalID string
	Status     string
	StatusCode int
	Raw        any
}

type SMSProvider interface {
	Name() string
	SendMessage(ctx context.Context, payload SMSPayload) (*Result, error)
}

type EmailProvider interface {
	Name() string
	SendEmail(ctx context.Context, payload EmailPayload) (*Result, error)
}

// Error is a provider rejection with the status code it answered with.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// forcedError builds the deterministic failure requested by a caller.
func forcedError(fe *domain.ForceError) *Error {
	message := fe.Message
	if message == "" {
		message = fmt.Sprintf("Provider error: %d", fe.Code)
	}
	return &Error{StatusCode: fe.Code, Message: message}
}
