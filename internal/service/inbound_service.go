package service

import (
	"context"
	"errors"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
	"github.com/onurcolak/messaging-gateway/pkg/metrics"
)

type inboundMessageStore interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Message, error)
}

// InboundService records messages delivered to us by provider webhooks.
type InboundService struct {
	conversations conversationResolver
	repo          inboundMessageStore
	metrics       *metrics.GatewayMetrics
}

func NewInboundService(conversations conversationResolver, repo inboundMessageStore, m *metrics.GatewayMetrics) *InboundService {
	return &InboundService{conversations: conversations, repo: repo, metrics: m}
}

// Ingest stores an inbound message as RECEIVED. A delivery whose provider
// message id is already stored is a duplicate and changes nothing.
// channel is EMAIL for the email webhook; anything else is classified from the payload.
func (s *InboundService) Ingest(ctx context.Context, in domain.InboundMessage, channel domain.ChannelType) (*domain.IngestResult, error) {
	existing, err := s.repo.GetByProviderMessageID(ctx, in.ProviderMessageID)
	if err != nil {
		s.metrics.ObserveInbound(string(channel), "error")
		return nil, &domain.DatabaseError{Operation: "find inbound message", Err: err}
	}
	if existing != nil {
		return s.duplicate(existing, channel), nil
	}

	msgType := domain.MessageTypeEmail
	if channel != domain.ChannelEmail {
		msgType = domain.ClassifyMessage(in.Type, in.From, in.Attachments)
		channel = domain.ChannelFor(msgType)
	}

	conv, err := s.conversations.FindOrCreate(ctx, in.From, in.To, channel)
	if err != nil {
		s.metrics.ObserveInbound(string(channel), "error")
		return nil, err
	}

	msg := &domain.Message{
		ConversationID:    conv.ID,
		From:              in.From,
		To:                in.To,
		Type:              msgType,
		Body:              in.Body,
		Attachments:       in.Attachments,
		Direction:         domain.DirectionInbound,
		Status:            domain.StatusReceived,
		ProviderMessageID: &in.ProviderMessageID,
		Provider:          domain.ProviderFor(channel),
		Timestamp:         in.Timestamp.UTC(),
		Metadata:          domain.MessageMetadata{WebhookPayload: in.RawPayload},
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		// A concurrent delivery of the same webhook won the insert.
		if errors.Is(err, domain.ErrDuplicateMessage) {
			winner, lookupErr := s.repo.GetByProviderMessageID(ctx, in.ProviderMessageID)
			if lookupErr == nil && winner != nil {
				return s.duplicate(winner, channel), nil
			}
		}
		s.metrics.ObserveInbound(string(channel), "error")
		return nil, &domain.DatabaseError{Operation: "create inbound message", Err: err}
	}

	s.metrics.ObserveInbound(string(channel), "stored")

	logger.Info().
		Str("messageId", msg.ID).
		Str("conversationId", conv.ID).
		Str("providerMessageId", in.ProviderMessageID).
		Str("type", string(msgType)).
		Msg("Inbound message stored")

	return &domain.IngestResult{Message: msg}, nil
}

func (s *InboundService) duplicate(existing *domain.Message, channel domain.ChannelType) *domain.IngestResult {
	s.metrics.ObserveInbound(string(channel), "duplicate")
	logger.Debugf("Duplicate inbound delivery for provider message %s ignored", derefString(existing.ProviderMessageID))
	return &domain.IngestResult{Message: existing, Duplicate: true}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
