package service

import (
	"context"
	"time"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
	"github.com/onurcolak/messaging-gateway/pkg/metrics"
)

type statusMessageStore interface {
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Message, error)
	AppendStatusUpdate(ctx context.Context, id string, status *domain.MessageStatus, entry domain.StatusUpdate) error
	AppendSendGridEvent(ctx context.Context, id string, status *domain.MessageStatus, entry domain.SendGridEventRecord) error
}

type processedEventStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	MarkProcessed(ctx context.Context, id, provider string) (bool, error)
}

// StatusService applies provider delivery status callbacks to stored messages.
type StatusService struct {
	repo            statusMessageStore
	events          processedEventStore
	guardRegression bool
	metrics         *metrics.GatewayMetrics
	now             func() time.Time
}

func NewStatusService(
	repo statusMessageStore,
	events processedEventStore,
	guardRegression bool,
	m *metrics.GatewayMetrics,
) *StatusService {
	return &StatusService{
		repo:            repo,
		events:          events,
		guardRegression: guardRegression,
		metrics:         m,
		now:             time.Now,
	}
}

// ApplyTwilioStatus applies one Twilio status callback. An unknown message is
// not an error; the callback is acknowledged and dropped.
func (s *StatusService) ApplyTwilioStatus(ctx context.Context, ev domain.TwilioStatusEvent) error {
	sid := firstNonEmpty(ev.MessageSid, ev.SmsSid)
	rawStatus := firstNonEmpty(ev.MessageStatus, ev.SmsStatus)

	msg, err := s.repo.GetByProviderMessageID(ctx, sid)
	if err != nil {
		s.metrics.ObserveStatusEvent(domain.ProviderTwilio, "error")
		return &domain.DatabaseError{Operation: "find message for status", Err: err}
	}
	if msg == nil {
		logger.Warn().Str("messageSid", sid).Str("status", rawStatus).Msg("Message not found for Twilio status update")
		s.metrics.ObserveStatusEvent(domain.ProviderTwilio, "unmatched")
		return nil
	}

	mapped, known := domain.MapTwilioStatus(rawStatus)
	if !known {
		logger.Warn().Str("messageSid", sid).Str("status", rawStatus).Msg("Unknown Twilio status, treating as SENT")
	}
	next := domain.ResolveStatus(msg.Status, mapped, s.guardRegression)

	entry := domain.StatusUpdate{Status: rawStatus, Timestamp: s.now().UTC()}
	if ev.ErrorCode != "" {
		entry.ErrorCode = ev.ErrorCode
		entry.ErrorMessage = ev.ErrorMessage
	}

	if err := s.repo.AppendStatusUpdate(ctx, msg.ID, &next, entry); err != nil {
		s.metrics.ObserveStatusEvent(domain.ProviderTwilio, "error")
		return &domain.DatabaseError{Operation: "append status update", Err: err}
	}

	s.metrics.ObserveStatusEvent(domain.ProviderTwilio, "applied")
	logger.Info().
		Str("messageId", msg.ID).
		Str("messageSid", sid).
		Str("oldStatus", string(msg.Status)).
		Str("newStatus", string(next)).
		Str("twilioStatus", rawStatus).
		Msg("Twilio status update processed")

	return nil
}

// ApplySendGridEvents applies a SendGrid event batch in order. Each event id is
// applied at most once. On error the events handled so far stay recorded, so a
// redelivered batch resumes where this one stopped.
func (s *StatusService) ApplySendGridEvents(ctx context.Context, events []domain.SendGridEvent) (domain.EventBatchResult, error) {
	var result domain.EventBatchResult

	for _, ev := range events {
		outcome, err := s.applySendGridEvent(ctx, ev)
		if err != nil {
			s.metrics.ObserveStatusEvent(domain.ProviderSendGrid, "error")
			return result, err
		}

		s.metrics.ObserveStatusEvent(domain.ProviderSendGrid, outcome)
		switch outcome {
		case "applied":
			result.Applied++
		case "duplicate":
			result.Skipped++
		case "unmatched":
			result.Unmatched++
		}
	}

	return result, nil
}

func (s *StatusService) applySendGridEvent(ctx context.Context, ev domain.SendGridEvent) (string, error) {
	if ev.EventID != "" {
		seen, err := s.events.Exists(ctx, ev.EventID)
		if err != nil {
			return "", &domain.DatabaseError{Operation: "check processed event", Err: err}
		}
		if seen {
			logger.Debugf("Duplicate SendGrid event %s skipped", ev.EventID)
			return "duplicate", nil
		}
	} else {
		logger.Warn().Str("messageId", ev.SGMessageID).Str("event", ev.Event).Msg("SendGrid event without sg_event_id cannot be deduplicated")
	}

	msg, err := s.repo.GetByProviderMessageID(ctx, ev.SGMessageID)
	if err != nil {
		return "", &domain.DatabaseError{Operation: "find message for event", Err: err}
	}

	outcome := "unmatched"
	if msg == nil {
		logger.Warn().
			Str("eventId", ev.EventID).
			Str("messageId", ev.SGMessageID).
			Str("event", ev.Event).
			Msg("Message not found for SendGrid event")
	} else {
		var status *domain.MessageStatus
		if mapped, ok := domain.MapSendGridEvent(ev.Event); ok {
			next := domain.ResolveStatus(msg.Status, mapped, s.guardRegression)
			status = &next
		}

		record := domain.SendGridEventRecord{
			Event:     ev.Event,
			Timestamp: time.Unix(ev.Timestamp, 0).UTC(),
			EventID:   ev.EventID,
			Reason:    ev.Reason,
			Response:  ev.Response,
		}

		if err := s.repo.AppendSendGridEvent(ctx, msg.ID, status, record); err != nil {
			return "", &domain.DatabaseError{Operation: "append sendgrid event", Err: err}
		}

		event := logger.Info().Str("messageId", msg.ID).Str("eventId", ev.EventID).Str("event", ev.Event)
		if status != nil {
			event.Str("oldStatus", string(msg.Status)).Str("newStatus", string(*status)).Msg("SendGrid event processed with status update")
		} else {
			event.Msg("SendGrid event processed (metadata only)")
		}
		outcome = "applied"
	}

	if ev.EventID != "" {
		if _, err := s.events.MarkProcessed(ctx, ev.EventID, domain.ProviderSendGrid); err != nil {
			return "", &domain.DatabaseError{Operation: "record processed event", Err: err}
		}
	}

	return outcome, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
