package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/onurcolak/messaging-gateway/internal/domain"
)

func TestFindOrCreate_IsSymmetric(t *testing.T) {
	store := newFakeStore()
	svc := NewConversationService(store, store)

	a, err := svc.FindOrCreate(context.Background(), "bob@example.com", "alice@example.com", domain.ChannelEmail)
	if err != nil {
		t.Fatalf("FindOrCreate returned error: %v", err)
	}
	b, err := svc.FindOrCreate(context.Background(), "alice@example.com", "bob@example.com", domain.ChannelEmail)
	if err != nil {
		t.Fatalf("FindOrCreate returned error: %v", err)
	}

	if a.ID != b.ID {
		t.Fatalf("expected same conversation, got %s and %s", a.ID, b.ID)
	}
	if a.Participant1 != "alice@example.com" {
		t.Fatalf("expected alice first, got %q", a.Participant1)
	}
}

func TestFindOrCreate_ChannelsArePartitioned(t *testing.T) {
	store := newFakeStore()
	svc := NewConversationService(store, store)

	sms, _ := svc.FindOrCreate(context.Background(), "+1A", "+1B", domain.ChannelSMS)
	email, _ := svc.FindOrCreate(context.Background(), "+1A", "+1B", domain.ChannelEmail)

	if sms.ID == email.ID {
		t.Fatalf("expected different conversations per channel")
	}
}

func TestFindOrCreate_BumpsLastMessageAt(t *testing.T) {
	store := newFakeStore()
	svc := NewConversationService(store, store)

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	_, _ = svc.FindOrCreate(context.Background(), "+1A", "+1B", domain.ChannelSMS)

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	conv, _ := svc.FindOrCreate(context.Background(), "+1B", "+1A", domain.ChannelSMS)

	if !conv.LastMessageAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("expected lastMessageAt to be bumped, got %v", conv.LastMessageAt)
	}
	if !conv.CreatedAt.Equal(t0) {
		t.Fatalf("expected createdAt to stay, got %v", conv.CreatedAt)
	}
}

func TestList_PagesAreDisjointAndBounded(t *testing.T) {
	store := newFakeStore()
	svc := NewConversationService(store, store)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		if _, err := svc.FindOrCreate(context.Background(), "+1ME", fmt.Sprintf("+1P%02d", i), domain.ChannelSMS); err != nil {
			t.Fatalf("FindOrCreate: %v", err)
		}
	}

	limit := 3
	seen := make(map[string]bool)
	for page := 0; page < 3; page++ {
		items, total, err := svc.List(context.Background(), domain.ListConversationsParams{
			Participant: "+1ME", Limit: limit, Offset: page * limit,
		})
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if total != 7 {
			t.Fatalf("expected total 7, got %d", total)
		}
		if len(items) > limit {
			t.Fatalf("page %d returned %d items, more than limit %d", page, len(items), limit)
		}
		for _, it := range items {
			if seen[it.ID] {
				t.Fatalf("conversation %s returned on two pages", it.ID)
			}
			seen[it.ID] = true
		}
	}
	if len(seen) != 7 {
		t.Fatalf("expected to see all 7 conversations, saw %d", len(seen))
	}
}

func TestList_MostRecentFirstWithPreview(t *testing.T) {
	store := newFakeStore()
	convs := NewConversationService(store, store)
	svc := NewMessageService(convs, store, &fakeSMSProvider{}, &fakeEmailProvider{}, nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	convs.now = func() time.Time { return base }
	_, _ = svc.Send(context.Background(), domain.SendRequest{From: "+1ME", To: "+1OLD", Body: "old", Timestamp: base})

	convs.now = func() time.Time { return base.Add(time.Hour) }
	long := strings.Repeat("x", 150)
	_, _ = svc.Send(context.Background(), domain.SendRequest{From: "+1ME", To: "+1NEW", Body: long, Timestamp: base.Add(time.Hour)})

	items, _, err := convs.List(context.Background(), domain.ListConversationsParams{Participant: "+1ME", Limit: 20})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(items))
	}
	if items[0].Participant2 != "+1NEW" && items[0].Participant1 != "+1NEW" {
		t.Fatalf("expected most recent conversation first, got %+v", items[0].Conversation)
	}
	if items[0].LastMessage == nil {
		t.Fatalf("expected last message preview")
	}
	if got := items[0].LastMessage.Body; got != strings.Repeat("x", 100)+"..." {
		t.Fatalf("expected truncated preview, got %d chars", len(got))
	}
	if items[1].LastMessage.Body != "old" {
		t.Fatalf("expected short body untouched, got %q", items[1].LastMessage.Body)
	}
	if items[0].MessageCount != 1 {
		t.Fatalf("expected message count 1, got %d", items[0].MessageCount)
	}
}

func TestList_ChannelFilter(t *testing.T) {
	store := newFakeStore()
	svc := NewConversationService(store, store)

	_, _ = svc.FindOrCreate(context.Background(), "me@example.com", "+1B", domain.ChannelSMS)
	_, _ = svc.FindOrCreate(context.Background(), "me@example.com", "you@example.com", domain.ChannelEmail)

	channel := domain.ChannelEmail
	items, total, err := svc.List(context.Background(), domain.ListConversationsParams{
		Participant: "me@example.com", ChannelType: &channel, Limit: 20,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ChannelType != domain.ChannelEmail {
		t.Fatalf("expected only the EMAIL conversation, got %+v", items)
	}
}

func TestList_StoreErrorIsDatabaseError(t *testing.T) {
	store := newFakeStore()
	store.listErr = fmt.Errorf("timeout")
	svc := NewConversationService(store, store)

	_, _, err := svc.List(context.Background(), domain.ListConversationsParams{Participant: "x", Limit: 10})

	var dberr *domain.DatabaseError
	if !errors.As(err, &dberr) {
		t.Fatalf("expected *domain.DatabaseError, got %T", err)
	}
}

func TestGetMessages_NotFound(t *testing.T) {
	store := newFakeStore()
	svc := NewConversationService(store, store)

	_, err := svc.GetMessages(context.Background(), "missing", 50, 0)

	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *domain.NotFoundError, got %T", err)
	}
}

func TestGetMessages_OldestFirst(t *testing.T) {
	store := newFakeStore()
	convs := NewConversationService(store, store)
	svc := NewMessageService(convs, store, &fakeSMSProvider{}, &fakeEmailProvider{}, nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var convID string
	for i := 2; i >= 0; i-- {
		res, err := svc.Send(context.Background(), domain.SendRequest{
			From: "+1A", To: "+1B", Body: fmt.Sprintf("m%d", i), Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		convID = res.Message.ConversationID
	}

	page, err := convs.GetMessages(context.Background(), convID, 2, 0)
	if err != nil {
		t.Fatalf("GetMessages returned error: %v", err)
	}
	if page.MessageCount != 3 {
		t.Fatalf("expected total 3, got %d", page.MessageCount)
	}
	if len(page.Messages) != 2 || page.Messages[0].Body != "m0" || page.Messages[1].Body != "m1" {
		t.Fatalf("expected m0,m1 first, got %+v", page.Messages)
	}
}
