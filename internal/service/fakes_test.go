package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/provider"
)

//
// Test fakes – an in-memory store standing in for the MySQL repositories.
//

type fakeStore struct {
	mu sync.Mutex

	conversations map[string]*domain.Conversation
	messages      []*domain.Message
	events        map[string]string
	nextID        int

	// injected failures
	createErr     error
	markFailedErr error
	appendErr     error
	listErr       error

	appendCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: make(map[string]*domain.Conversation),
		events:        make(map[string]string),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// conversation store

func (f *fakeStore) Upsert(ctx context.Context, p1, p2 string, channel domain.ChannelType, at time.Time) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := p1 + "|" + p2 + "|" + string(channel)
	if c, ok := f.conversations[key]; ok {
		c.LastMessageAt = at
		c.UpdatedAt = at
		cp := *c
		return &cp, nil
	}

	c := &domain.Conversation{
		ID:            f.id("conv"),
		Participant1:  p1,
		Participant2:  p2,
		ChannelType:   channel,
		LastMessageAt: at,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	f.conversations[key] = c
	cp := *c
	return &cp, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.conversations {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) matching(params domain.ListConversationsParams) []*domain.Conversation {
	var out []*domain.Conversation
	for _, c := range f.conversations {
		if c.Participant1 != params.Participant && c.Participant2 != params.Participant {
			continue
		}
		if params.ChannelType != nil && c.ChannelType != *params.ChannelType {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeStore) ListByParticipant(ctx context.Context, params domain.ListConversationsParams) ([]domain.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	all := f.matching(params)
	summaries := []domain.ConversationSummary{}
	for i := params.Offset; i < len(all) && i < params.Offset+params.Limit; i++ {
		var count int64
		for _, m := range f.messages {
			if m.ConversationID == all[i].ID {
				count++
			}
		}
		summaries = append(summaries, domain.ConversationSummary{Conversation: *all[i], MessageCount: count})
	}
	return summaries, nil
}

func (f *fakeStore) CountByParticipant(ctx context.Context, params domain.ListConversationsParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(params))), nil
}

// message store

func (f *fakeStore) Create(ctx context.Context, msg *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	if msg.ProviderMessageID != nil {
		for _, m := range f.messages {
			if m.ProviderMessageID != nil && *m.ProviderMessageID == *msg.ProviderMessageID {
				return fmt.Errorf("failed to create message: %w", domain.ErrDuplicateMessage)
			}
		}
	}

	msg.ID = f.id("msg")
	cp := *msg
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeStore) find(id string) *domain.Message {
	for _, m := range f.messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (f *fakeStore) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.messages {
		if m.ProviderMessageID != nil && *m.ProviderMessageID == providerMessageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) MarkSent(ctx context.Context, id, providerMessageID string, providerResponse json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := f.find(id)
	if m == nil {
		return fmt.Errorf("no message found with id %s", id)
	}
	m.Status = domain.StatusSent
	m.ProviderMessageID = &providerMessageID
	m.Metadata.ProviderResponse = providerResponse
	return nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, id string, sendErr domain.SendError) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.markFailedErr != nil {
		return f.markFailedErr
	}
	m := f.find(id)
	if m == nil {
		return fmt.Errorf("no message found with id %s", id)
	}
	m.Status = domain.StatusFailed
	m.Metadata.Error = &sendErr
	return nil
}

func (f *fakeStore) AppendStatusUpdate(ctx context.Context, id string, status *domain.MessageStatus, entry domain.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.appendCalls++
	if f.appendErr != nil {
		return f.appendErr
	}
	m := f.find(id)
	if status != nil {
		m.Status = *status
	}
	m.Metadata.StatusUpdates = append(m.Metadata.StatusUpdates, entry)
	return nil
}

func (f *fakeStore) AppendSendGridEvent(ctx context.Context, id string, status *domain.MessageStatus, entry domain.SendGridEventRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.appendCalls++
	if f.appendErr != nil {
		return f.appendErr
	}
	m := f.find(id)
	if status != nil {
		m.Status = *status
	}
	m.Metadata.SendGridEvents = append(m.Metadata.SendGridEvents, entry)
	return nil
}

func (f *fakeStore) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []domain.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			all = append(all, *m)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.Before(all[j].Timestamp) })

	out := []domain.Message{}
	for i := offset; i < len(all) && i < offset+limit; i++ {
		out = append(out, all[i])
	}
	return out, nil
}

func (f *fakeStore) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) LatestByConversations(ctx context.Context, ids []string) (map[string]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	latest := make(map[string]domain.Message)
	for _, id := range ids {
		for _, m := range f.messages {
			if m.ConversationID != id {
				continue
			}
			if cur, ok := latest[id]; !ok || !m.Timestamp.Before(cur.Timestamp) {
				latest[id] = *m
			}
		}
	}
	return latest, nil
}

// processed event store

func (f *fakeStore) Exists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.events[id]
	return ok, nil
}

func (f *fakeStore) MarkProcessed(ctx context.Context, id, providerName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; ok {
		return false, nil
	}
	f.events[id] = providerName
	return true, nil
}

// providers

type fakeSMSProvider struct {
	err   error
	calls []provider.SMSPayload
	next  int
}

func (p *fakeSMSProvider) Name() string { return domain.ProviderTwilio }

func (p *fakeSMSProvider) SendMessage(ctx context.Context, payload provider.SMSPayload) (*provider.Result, error) {
	p.calls = append(p.calls, payload)
	if payload.ForceError != nil {
		return nil, &provider.Error{StatusCode: payload.ForceError.Code, Message: fmt.Sprintf("Provider error: %d", payload.ForceError.Code)}
	}
	if p.err != nil {
		return nil, p.err
	}
	p.next++
	sid := fmt.Sprintf("SM%032d", p.next)
	return &provider.Result{ExternalID: sid, Status: "queued", StatusCode: 201, Raw: map[string]string{"sid": sid}}, nil
}

type fakeEmailProvider struct {
	calls []provider.EmailPayload
}

func (p *fakeEmailProvider) Name() string { return domain.ProviderSendGrid }

func (p *fakeEmailProvider) SendEmail(ctx context.Context, payload provider.EmailPayload) (*provider.Result, error) {
	p.calls = append(p.calls, payload)
	if payload.ForceError != nil {
		return nil, &provider.Error{StatusCode: payload.ForceError.Code, Message: "Provider error"}
	}
	return &provider.Result{ExternalID: "abc.filter001.1.0", StatusCode: 202, Raw: map[string]any{"statusCode": 202}}, nil
}
