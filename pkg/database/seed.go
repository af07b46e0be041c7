package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
)

type seedMessage struct {
	from, to, body string
	direction      domain.MessageDirection
	status         domain.MessageStatus
}

type seedConversation struct {
	channel  domain.ChannelType
	messages []seedMessage
}

var seedConversations = []seedConversation{
	{
		channel: domain.ChannelSMS,
		messages: []seedMessage{
			{"+15551230001", "+15551230002", "Hey, are we still on for lunch?", domain.DirectionOutbound, domain.StatusDelivered},
			{"+15551230002", "+15551230001", "Yes! 12:30 at the usual place.", domain.DirectionInbound, domain.StatusReceived},
		},
	},
	{
		channel: domain.ChannelEmail,
		messages: []seedMessage{
			{"support@example.com", "customer@example.com", "Your ticket #4821 has been resolved.", domain.DirectionOutbound, domain.StatusSent},
			{"customer@example.com", "support@example.com", "Thanks for the quick fix!", domain.DirectionInbound, domain.StatusReceived},
		},
	},
}

// SeedTestData fills an empty database with a couple of sample conversations.
func SeedTestData(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM conversations"); err != nil {
		return fmt.Errorf("failed to count conversations: %w", err)
	}

	if count > 0 {
		logger.Infof("Database already has %d conversations, skipping seed", count)
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	base := time.Now().UTC().Add(-time.Hour)
	inserted := 0

	for _, conv := range seedConversations {
		first := conv.messages[0]
		p1, p2 := domain.NormalizeParticipants(first.from, first.to)
		convID := uuid.NewString()
		last := base.Add(time.Duration(len(conv.messages)) * time.Minute)

		_, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (id, participant1, participant2, channel_type, last_message_at)
			 VALUES (?, ?, ?, ?, ?)`,
			convID, p1, p2, conv.channel, last,
		)
		if err != nil {
			return fmt.Errorf("failed to seed conversation: %w", err)
		}

		for i, msg := range conv.messages {
			msgType := domain.ClassifyMessage("", msg.from, nil)
			providerID := fmt.Sprintf("seed-%s", uuid.NewString())

			_, err := tx.ExecContext(ctx,
				`INSERT INTO messages
				 (id, conversation_id, from_address, to_address, type, body, attachments, direction, status,
				  provider_message_id, provider, occurred_at, metadata)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), convID, msg.from, msg.to, msgType, msg.body, domain.Attachments{},
				msg.direction, msg.status, providerID, domain.ProviderFor(conv.channel),
				base.Add(time.Duration(i+1)*time.Minute), domain.MessageMetadata{},
			)
			if err != nil {
				return fmt.Errorf("failed to seed message: %w", err)
			}
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed data: %w", err)
	}

	logger.Infof("Seeded %d conversations with %d messages", len(seedConversations), inserted)
	return nil
}
