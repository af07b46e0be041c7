package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ProcessedEventRepository is the dedup ledger for provider event ids.
type ProcessedEventRepository struct {
	db *sqlx.DB
}

func NewProcessedEventRepository(db *sqlx.DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{db: db}
}

// Exists reports whether eventID has already been handled.
func (r *ProcessedEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM processed_events WHERE id = ?)"
	if err := r.db.GetContext(ctx, &exists, query, eventID); err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return exists, nil
}

// MarkProcessed records eventID. It reports false when the id was already
// recorded.
func (r *ProcessedEventRepository) MarkProcessed(ctx context.Context, eventID, provider string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO processed_events (id, provider) VALUES (?, ?)",
		eventID, provider,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark event processed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows == 1, nil
}
