package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/onurcolak/messaging-gateway/internal/domain"
)

func newTestMessageService(store *fakeStore, sms *fakeSMSProvider, email *fakeEmailProvider) *MessageService {
	return NewMessageService(NewConversationService(store, store), store, sms, email, nil)
}

func TestSend_SMSSuccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	sms := &fakeSMSProvider{}
	svc := newTestMessageService(store, sms, &fakeEmailProvider{})

	result, err := svc.Send(ctx, domain.SendRequest{
		From:      "+1A",
		To:        "+1B",
		Type:      "sms",
		Body:      "hi",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	msg := result.Message
	if msg.Status != domain.StatusSent {
		t.Fatalf("expected status SENT, got %s", msg.Status)
	}
	if msg.Type != domain.MessageTypeSMS {
		t.Fatalf("expected type SMS, got %s", msg.Type)
	}
	if msg.ProviderMessageID == nil || *msg.ProviderMessageID == "" {
		t.Fatalf("expected providerMessageId to be set")
	}
	if msg.Provider != domain.ProviderTwilio || msg.Direction != domain.DirectionOutbound {
		t.Fatalf("unexpected provider/direction %s/%s", msg.Provider, msg.Direction)
	}

	stored := store.find(msg.ID)
	if stored.Status != domain.StatusSent || len(stored.Metadata.ProviderResponse) == 0 {
		t.Fatalf("expected stored message SENT with provider response, got %+v", stored)
	}
}

func TestSend_AttachmentsTurnSMSIntoMMS(t *testing.T) {
	store := newFakeStore()
	sms := &fakeSMSProvider{}
	svc := newTestMessageService(store, sms, &fakeEmailProvider{})

	result, err := svc.Send(context.Background(), domain.SendRequest{
		From:        "+1A",
		To:          "+1B",
		Type:        "sms",
		Body:        "look",
		Attachments: []string{"https://example.com/cat.png"},
		Timestamp:   time.Now(),
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if result.Message.Type != domain.MessageTypeMMS {
		t.Fatalf("expected MMS, got %s", result.Message.Type)
	}
	if sms.calls[0].Type != domain.MessageTypeMMS {
		t.Fatalf("expected provider to receive MMS, got %s", sms.calls[0].Type)
	}
}

func TestSend_BothDirectionsShareConversation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestMessageService(store, &fakeSMSProvider{}, &fakeEmailProvider{})

	first, err := svc.Send(ctx, domain.SendRequest{From: "+15550002", To: "+15550001", Body: "a", Timestamp: time.Now()})
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	second, err := svc.Send(ctx, domain.SendRequest{From: "+15550001", To: "+15550002", Body: "b", Timestamp: time.Now()})
	if err != nil {
		t.Fatalf("second send: %v", err)
	}

	if first.Message.ConversationID != second.Message.ConversationID {
		t.Fatalf("expected same conversation, got %s and %s", first.Message.ConversationID, second.Message.ConversationID)
	}
	if len(store.conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(store.conversations))
	}
	for _, c := range store.conversations {
		if c.Participant1 > c.Participant2 {
			t.Fatalf("expected normalized participants, got %q > %q", c.Participant1, c.Participant2)
		}
	}
}

func TestSend_EmailGoesToEmailProvider(t *testing.T) {
	store := newFakeStore()
	email := &fakeEmailProvider{}
	svc := newTestMessageService(store, &fakeSMSProvider{}, email)

	result, err := svc.Send(context.Background(), domain.SendRequest{
		From: "a@example.com", To: "b@example.com", Type: "email", Body: "<p>hi</p>", Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if len(email.calls) != 1 {
		t.Fatalf("expected 1 email call, got %d", len(email.calls))
	}
	if result.Message.Provider != domain.ProviderSendGrid || result.Message.Type != domain.MessageTypeEmail {
		t.Fatalf("unexpected message %+v", result.Message)
	}
	for _, c := range store.conversations {
		if c.ChannelType != domain.ChannelEmail {
			t.Fatalf("expected EMAIL conversation, got %s", c.ChannelType)
		}
	}
}

func TestSend_ForcedProviderErrorMarksFailed(t *testing.T) {
	store := newFakeStore()
	svc := newTestMessageService(store, &fakeSMSProvider{}, &fakeEmailProvider{})

	_, err := svc.Send(context.Background(), domain.SendRequest{
		From: "+1A", To: "+1B", Body: "boom", Timestamp: time.Now(),
		ForceError: &domain.ForceError{Code: 503},
	})

	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *domain.ProviderError, got %T (%v)", err, err)
	}
	if perr.StatusCode != 503 || perr.Provider != domain.ProviderTwilio {
		t.Fatalf("unexpected provider error %+v", perr)
	}
	if perr.HTTPStatus() != http.StatusServiceUnavailable {
		t.Fatalf("expected HTTP 503, got %d", perr.HTTPStatus())
	}

	if len(store.messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(store.messages))
	}
	stored := store.messages[0]
	if stored.Status != domain.StatusFailed {
		t.Fatalf("expected FAILED, got %s", stored.Status)
	}
	if stored.ProviderMessageID != nil {
		t.Fatalf("expected no providerMessageId on a failed send")
	}
	if stored.Metadata.Error == nil || stored.Metadata.Error.StatusCode != 503 {
		t.Fatalf("expected metadata.error with status 503, got %+v", stored.Metadata.Error)
	}
}

func TestSend_TransportErrorHasNoStatusCode(t *testing.T) {
	store := newFakeStore()
	svc := newTestMessageService(store, &fakeSMSProvider{err: fmt.Errorf("connection refused")}, &fakeEmailProvider{})

	_, err := svc.Send(context.Background(), domain.SendRequest{From: "+1A", To: "+1B", Body: "x", Timestamp: time.Now()})

	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *domain.ProviderError, got %T", err)
	}
	if perr.HTTPStatus() != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", perr.HTTPStatus())
	}
}

func TestSend_FailedDurabilityWriteIsDatabaseError(t *testing.T) {
	store := newFakeStore()
	store.markFailedErr = fmt.Errorf("connection lost")
	svc := newTestMessageService(store, &fakeSMSProvider{}, &fakeEmailProvider{})

	_, err := svc.Send(context.Background(), domain.SendRequest{
		From: "+1A", To: "+1B", Body: "x", Timestamp: time.Now(),
		ForceError: &domain.ForceError{Code: 400},
	})

	var dberr *domain.DatabaseError
	if !errors.As(err, &dberr) {
		t.Fatalf("expected *domain.DatabaseError, got %T (%v)", err, err)
	}
}

func TestSend_CreateFailureSkipsProvider(t *testing.T) {
	store := newFakeStore()
	store.createErr = fmt.Errorf("disk full")
	sms := &fakeSMSProvider{}
	svc := newTestMessageService(store, sms, &fakeEmailProvider{})

	_, err := svc.Send(context.Background(), domain.SendRequest{From: "+1A", To: "+1B", Body: "x", Timestamp: time.Now()})

	var dberr *domain.DatabaseError
	if !errors.As(err, &dberr) {
		t.Fatalf("expected *domain.DatabaseError, got %T", err)
	}
	if len(sms.calls) != 0 {
		t.Fatalf("expected provider not to be called, got %d calls", len(sms.calls))
	}
}

func TestSend_StatusMatchesProviderOutcome(t *testing.T) {
	store := newFakeStore()
	svc := newTestMessageService(store, &fakeSMSProvider{}, &fakeEmailProvider{})

	for i := 0; i < 6; i++ {
		req := domain.SendRequest{From: "+1A", To: "+1B", Body: fmt.Sprintf("m%d", i), Timestamp: time.Now()}
		if i%2 == 1 {
			req.ForceError = &domain.ForceError{Code: 429}
		}
		_, _ = svc.Send(context.Background(), req)
	}

	for _, m := range store.messages {
		switch m.Status {
		case domain.StatusSent:
			if m.ProviderMessageID == nil {
				t.Fatalf("SENT message %s without providerMessageId", m.ID)
			}
		case domain.StatusFailed:
			if m.ProviderMessageID != nil {
				t.Fatalf("FAILED message %s with providerMessageId", m.ID)
			}
		default:
			t.Fatalf("message %s left in %s", m.ID, m.Status)
		}
	}
}
