package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/messaging-gateway/internal/domain"
)

const conversationColumns = `id, participant1, participant2, channel_type, last_message_at, created_at, updated_at`

// ConversationRepository handles database operations for conversations.
type ConversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Upsert creates the conversation for an already normalized participant pair
// or bumps its last_message_at. The unique key on (participant1, participant2,
// channel_type) makes concurrent first contacts converge on one row.
func (r *ConversationRepository) Upsert(
	ctx context.Context,
	participant1, participant2 string,
	channel domain.ChannelType,
	at time.Time,
) (*domain.Conversation, error) {
	query := `
		INSERT INTO conversations (id, participant1, participant2, channel_type, last_message_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE last_message_at = VALUES(last_message_at), updated_at = VALUES(updated_at)
	`

	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), participant1, participant2, channel, at, at, at)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert conversation: %w", err)
	}

	selectQuery := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE participant1 = ? AND participant2 = ? AND channel_type = ?
	`

	var conversation domain.Conversation
	if err := r.db.GetContext(ctx, &conversation, selectQuery, participant1, participant2, channel); err != nil {
		return nil, fmt.Errorf("failed to load upserted conversation: %w", err)
	}

	return &conversation, nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE id = ?
	`

	var conversation domain.Conversation
	if err := r.db.GetContext(ctx, &conversation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return &conversation, nil
}

func participantFilter(params domain.ListConversationsParams) (string, []any) {
	where := "WHERE (c.participant1 = ? OR c.participant2 = ?)"
	args := []any{params.Participant, params.Participant}

	if params.ChannelType != nil {
		where += " AND c.channel_type = ?"
		args = append(args, *params.ChannelType)
	}

	return where, args
}

// ListByParticipant returns the participant's conversations, most recently
// active first, each with its message count.
func (r *ConversationRepository) ListByParticipant(
	ctx context.Context,
	params domain.ListConversationsParams,
) ([]domain.ConversationSummary, error) {
	where, args := participantFilter(params)

	query := `
		SELECT c.id, c.participant1, c.participant2, c.channel_type, c.last_message_at, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id) AS message_count
		FROM conversations c
		` + where + `
		ORDER BY c.last_message_at DESC, c.id ASC
		LIMIT ? OFFSET ?
	`
	args = append(args, params.Limit, params.Offset)

	conversations := []domain.ConversationSummary{}
	if err := r.db.SelectContext(ctx, &conversations, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return conversations, nil
}

func (r *ConversationRepository) CountByParticipant(ctx context.Context, params domain.ListConversationsParams) (int64, error) {
	where, args := participantFilter(params)

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM conversations c "+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}

	return total, nil
}
