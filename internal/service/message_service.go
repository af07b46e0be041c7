package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
	"github.com/onurcolak/messaging-gateway/pkg/metrics"
	"github.com/onurcolak/messaging-gateway/pkg/provider"
)

// Small internal interfaces so we can test without touching a real DB or provider.
type conversationResolver interface {
	FindOrCreate(ctx context.Context, from, to string, channel domain.ChannelType) (*domain.Conversation, error)
}

type outboundMessageStore interface {
	Create(ctx context.Context, msg *domain.Message) error
	MarkSent(ctx context.Context, id, providerMessageID string, providerResponse json.RawMessage) error
	MarkFailed(ctx context.Context, id string, sendErr domain.SendError) error
}

type MessageService struct {
	conversations conversationResolver
	repo          outboundMessageStore
	sms           provider.SMSProvider
	email         provider.EmailProvider
	metrics       *metrics.GatewayMetrics
}

func NewMessageService(
	conversations conversationResolver,
	repo outboundMessageStore,
	sms provider.SMSProvider,
	email provider.EmailProvider,
	m *metrics.GatewayMetrics,
) *MessageService {
	return &MessageService{
		conversations: conversations,
		repo:          repo,
		sms:           sms,
		email:         email,
		metrics:       m,
	}
}

// Send stores the message as PENDING, hands it to the channel's provider and
// records the outcome. A provider rejection is returned as a
// *domain.ProviderError once the message is durably FAILED.
func (s *MessageService) Send(ctx context.Context, req domain.SendRequest) (*domain.SendResult, error) {
	msgType := domain.ClassifyMessage(req.Type, req.From, req.Attachments)
	channel := domain.ChannelFor(msgType)
	providerName := domain.ProviderFor(channel)

	conv, err := s.conversations.FindOrCreate(ctx, req.From, req.To, channel)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID: conv.ID,
		From:           req.From,
		To:             req.To,
		Type:           msgType,
		Body:           req.Body,
		Attachments:    req.Attachments,
		Direction:      domain.DirectionOutbound,
		Status:         domain.StatusPending,
		Provider:       providerName,
		Timestamp:      req.Timestamp.UTC(),
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, &domain.DatabaseError{Operation: "create message", Err: err}
	}

	start := time.Now()
	result, sendErr := s.dispatch(ctx, msgType, req)
	s.metrics.ObserveProviderLatency(providerName, time.Since(start))

	// The outcome must be recorded even if the caller went away mid-call.
	writeCtx := context.WithoutCancel(ctx)

	if sendErr != nil {
		return nil, s.fail(writeCtx, msg, channel, sendErr)
	}

	raw, err := json.Marshal(result.Raw)
	if err != nil {
		logger.Warnf("Failed to encode provider response for message %s: %v", msg.ID, err)
	}

	if err := s.repo.MarkSent(writeCtx, msg.ID, result.ExternalID, raw); err != nil {
		logger.Errorf("Failed to mark message %s as sent: %v", msg.ID, err)
		return nil, &domain.DatabaseError{Operation: "mark message sent", Err: err}
	}

	externalID := result.ExternalID
	msg.Status = domain.StatusSent
	msg.ProviderMessageID = &externalID
	msg.Metadata.ProviderResponse = raw
	s.metrics.ObserveOutbound(string(channel), string(domain.StatusSent))

	logger.Info().
		Str("messageId", msg.ID).
		Str("conversationId", conv.ID).
		Str("provider", providerName).
		Str("providerMessageId", externalID).
		Str("type", string(msgType)).
		Msg("Outbound message sent")

	return &domain.SendResult{Message: msg, ProviderResponse: result.Raw}, nil
}

func (s *MessageService) dispatch(ctx context.Context, msgType domain.MessageType, req domain.SendRequest) (*provider.Result, error) {
	if msgType == domain.MessageTypeEmail {
		return s.email.SendEmail(ctx, provider.EmailPayload{
			From:        req.From,
			To:          req.To,
			Body:        req.Body,
			Attachments: req.Attachments,
			ForceError:  req.ForceError,
		})
	}

	return s.sms.SendMessage(ctx, provider.SMSPayload{
		From:        req.From,
		To:          req.To,
		Type:        msgType,
		Body:        req.Body,
		Attachments: req.Attachments,
		ForceError:  req.ForceError,
	})
}

func (s *MessageService) fail(ctx context.Context, msg *domain.Message, channel domain.ChannelType, sendErr error) error {
	var statusCode int
	var perr *provider.Error
	if errors.As(sendErr, &perr) {
		statusCode = perr.StatusCode
	}

	record := domain.SendError{Message: sendErr.Error(), StatusCode: statusCode}

	logger.Warn().
		Str("messageId", msg.ID).
		Str("provider", msg.Provider).
		Int("statusCode", statusCode).
		Err(sendErr).
		Msg("Provider rejected outbound message")

	if err := s.repo.MarkFailed(ctx, msg.ID, record); err != nil {
		logger.Errorf("Failed to mark message %s as failed: %v", msg.ID, err)
		return &domain.DatabaseError{Operation: "mark message failed", Err: err}
	}

	msg.Status = domain.StatusFailed
	msg.Metadata.Error = &record
	s.metrics.ObserveOutbound(string(channel), string(domain.StatusFailed))

	return &domain.ProviderError{
		Provider:   msg.Provider,
		StatusCode: statusCode,
		Message:    sendErr.Error(),
	}
}
