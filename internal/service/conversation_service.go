package service

import (
	"context"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/onurcolak/messaging-gateway/internal/domain"
)

const lastMessagePreviewLength = 100

type conversationStore interface {
	Upsert(ctx context.Context, participant1, participant2 string, channel domain.ChannelType, at time.Time) (*domain.Conversation, error)
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	ListByParticipant(ctx context.Context, params domain.ListConversationsParams) ([]domain.ConversationSummary, error)
	CountByParticipant(ctx context.Context, params domain.ListConversationsParams) (int64, error)
}

type conversationMessageStore interface {
	ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]domain.Message, error)
	CountByConversation(ctx context.Context, conversationID string) (int64, error)
	LatestByConversations(ctx context.Context, conversationIDs []string) (map[string]domain.Message, error)
}

// ConversationService owns the mapping from a participant pair and channel to
// its single conversation.
type ConversationService struct {
	conversations conversationStore
	messages      conversationMessageStore
	now           func() time.Time
}

func NewConversationService(conversations conversationStore, messages conversationMessageStore) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		now:           time.Now,
	}
}

// FindOrCreate returns the conversation for the pair on channel, creating it on
// first contact and bumping lastMessageAt otherwise. Either direction of the
// pair resolves to the same conversation.
func (s *ConversationService) FindOrCreate(
	ctx context.Context,
	from, to string,
	channel domain.ChannelType,
) (*domain.Conversation, error) {
	p1, p2 := domain.NormalizeParticipants(from, to)

	conv, err := s.conversations.Upsert(ctx, p1, p2, channel, s.now().UTC())
	if err != nil {
		return nil, &domain.DatabaseError{Operation: "upsert conversation", Err: err}
	}

	return conv, nil
}

// List returns one page of a participant's conversations, most recently active
// first, each carrying its latest message, plus the total number of matches.
func (s *ConversationService) List(
	ctx context.Context,
	params domain.ListConversationsParams,
) ([]domain.ConversationSummary, int64, error) {
	var (
		summaries []domain.ConversationSummary
		total     int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summaries, err = s.conversations.ListByParticipant(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.conversations.CountByParticipant(gctx, params)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, &domain.DatabaseError{Operation: "list conversations", Err: err}
	}

	if len(summaries) == 0 {
		return summaries, total, nil
	}

	ids := make([]string, len(summaries))
	for i, c := range summaries {
		ids[i] = c.ID
	}

	latest, err := s.messages.LatestByConversations(ctx, ids)
	if err != nil {
		return nil, 0, &domain.DatabaseError{Operation: "load latest messages", Err: err}
	}

	for i := range summaries {
		if m, ok := latest[summaries[i].ID]; ok {
			m.Body = previewBody(m.Body)
			summaries[i].LastMessage = &m
		}
	}

	return summaries, total, nil
}

// GetMessages returns the conversation with one page of its messages, oldest first.
func (s *ConversationService) GetMessages(
	ctx context.Context,
	conversationID string,
	limit, offset int,
) (*domain.ConversationPage, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, &domain.DatabaseError{Operation: "get conversation", Err: err}
	}
	if conv == nil {
		return nil, domain.NewNotFoundError("Conversation", conversationID)
	}

	page := &domain.ConversationPage{Conversation: conv}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page.Messages, err = s.messages.ListByConversation(gctx, conversationID, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		page.MessageCount, err = s.messages.CountByConversation(gctx, conversationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &domain.DatabaseError{Operation: "list conversation messages", Err: err}
	}

	return page, nil
}

func previewBody(body string) string {
	if utf8.RuneCountInString(body) <= lastMessagePreviewLength {
		return body
	}
	return string([]rune(body)[:lastMessagePreviewLength]) + "..."
}
