package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/messaging-gateway/internal/domain"
)

const (
	messageColumns = `id, conversation_id, from_address, to_address, type, body, attachments, direction, status,
		provider_message_id, provider, occurred_at, metadata, created_at, updated_at`

	mysqlDuplicateEntry = 1062

	historyStatusUpdates  = "$.statusUpdates"
	historySendGridEvents = "$.sendGridEvents"
)

// MessageRepository handles database operations for messages.
type MessageRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db, now: time.Now}
}

// Create inserts msg, assigning its id and timestamps. A taken provider
// message id yields domain.ErrDuplicateMessage.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Attachments == nil {
		msg.Attachments = domain.Attachments{}
	}
	now := r.now().UTC()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.ConversationID, msg.From, msg.To, msg.Type, msg.Body, msg.Attachments,
		msg.Direction, msg.Status, msg.ProviderMessageID, msg.Provider, msg.Timestamp, msg.Metadata,
		msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return fmt.Errorf("failed to create message: %w", domain.ErrDuplicateMessage)
		}
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	return r.getOne(ctx, "id", id)
}

// GetByProviderMessageID returns nil, nil when no message carries the id.
func (r *MessageRepository) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Message, error) {
	return r.getOne(ctx, "provider_message_id", providerMessageID)
}

func (r *MessageRepository) getOne(ctx context.Context, column, value string) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE ` + column + ` = ?
	`

	var message domain.Message
	if err := r.db.GetContext(ctx, &message, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return &message, nil
}

// MarkSent records a provider's acceptance of an outbound message.
func (r *MessageRepository) MarkSent(ctx context.Context, id, providerMessageID string, providerResponse json.RawMessage) error {
	query := `
		UPDATE messages
		SET status = ?,
		    provider_message_id = ?,
		    metadata = JSON_SET(COALESCE(metadata, JSON_OBJECT()), '$.providerResponse', CAST(? AS JSON)),
		    updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.StatusSent, providerMessageID, jsonArg(providerResponse), r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark message as sent: %w", err)
	}

	return expectOneRow(result, id)
}

// MarkFailed records a provider's rejection of an outbound message.
func (r *MessageRepository) MarkFailed(ctx context.Context, id string, sendErr domain.SendError) error {
	payload, err := json.Marshal(sendErr)
	if err != nil {
		return fmt.Errorf("failed to marshal send error: %w", err)
	}

	query := `
		UPDATE messages
		SET status = ?,
		    metadata = JSON_SET(COALESCE(metadata, JSON_OBJECT()), '$.error', CAST(? AS JSON)),
		    updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, domain.StatusFailed, string(payload), r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark message as failed: %w", err)
	}

	return expectOneRow(result, id)
}

// AppendStatusUpdate appends a Twilio status entry to the message history and,
// when status is non-nil, sets the canonical status in the same statement.
func (r *MessageRepository) AppendStatusUpdate(
	ctx context.Context,
	id string,
	status *domain.MessageStatus,
	entry domain.StatusUpdate,
) error {
	return r.appendHistory(ctx, id, historyStatusUpdates, status, entry)
}

// AppendSendGridEvent appends a SendGrid event to the message history and,
// when status is non-nil, sets the canonical status in the same statement.
func (r *MessageRepository) AppendSendGridEvent(
	ctx context.Context,
	id string,
	status *domain.MessageStatus,
	entry domain.SendGridEventRecord,
) error {
	return r.appendHistory(ctx, id, historySendGridEvents, status, entry)
}

// appendHistory is a single UPDATE so concurrent appends never lose entries.
// path must be one of the history constants.
func (r *MessageRepository) appendHistory(
	ctx context.Context,
	id, path string,
	status *domain.MessageStatus,
	entry any,
) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	var statusArg any
	if status != nil {
		statusArg = string(*status)
	}

	query := `
		UPDATE messages
		SET status = COALESCE(?, status),
		    metadata = JSON_ARRAY_APPEND(
		        CASE
		            WHEN JSON_CONTAINS_PATH(COALESCE(metadata, JSON_OBJECT()), 'one', '` + path + `')
		            THEN metadata
		            ELSE JSON_SET(COALESCE(metadata, JSON_OBJECT()), '` + path + `', JSON_ARRAY())
		        END,
		        '` + path + `', CAST(? AS JSON)),
		    updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, statusArg, string(payload), r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to append message history: %w", err)
	}

	return expectOneRow(result, id)
}

// ListByConversation returns a page of a conversation's messages, oldest first.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE conversation_id = ?
		ORDER BY occurred_at ASC, created_at ASC, id ASC
		LIMIT ? OFFSET ?
	`

	messages := []domain.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, conversationID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

func (r *MessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM messages WHERE conversation_id = ?", conversationID); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return total, nil
}

// LatestByConversations returns the most recent message of each conversation,
// keyed by conversation id. Conversations without messages are absent.
func (r *MessageRepository) LatestByConversations(ctx context.Context, conversationIDs []string) (map[string]domain.Message, error) {
	latest := make(map[string]domain.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return latest, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+messageColumns+`
		FROM (
			SELECT `+messageColumns+`,
			       ROW_NUMBER() OVER (PARTITION BY conversation_id ORDER BY occurred_at DESC, created_at DESC, id DESC) AS rn
			FROM messages
			WHERE conversation_id IN (?)
		) ranked
		WHERE rn = 1
	`, conversationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build latest message query: %w", err)
	}

	var messages []domain.Message
	if err := r.db.SelectContext(ctx, &messages, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get latest messages: %w", err)
	}

	for _, m := range messages {
		latest[m.ConversationID] = m
	}

	return latest, nil
}

// SweepStalePending fails outbound messages that were left PENDING without a
// provider message id since before olderThan.
func (r *MessageRepository) SweepStalePending(ctx context.Context, olderThan time.Time, sendErr domain.SendError) (int64, error) {
	payload, err := json.Marshal(sendErr)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal send error: %w", err)
	}

	query := `
		UPDATE messages
		SET status = ?,
		    metadata = JSON_SET(COALESCE(metadata, JSON_OBJECT()), '$.error', CAST(? AS JSON)),
		    updated_at = ?
		WHERE direction = ? AND status = ? AND provider_message_id IS NULL AND created_at < ?
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.StatusFailed, string(payload), r.now().UTC(),
		domain.DirectionOutbound, domain.StatusPending, olderThan.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale pending messages: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

func jsonArg(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("no message found with id %s", id)
	}

	return nil
}
