package domain

import "time"

type ChannelType string

const (
	ChannelSMS   ChannelType = "SMS"
	ChannelEmail ChannelType = "EMAIL"
)

func (c ChannelType) Valid() bool {
	return c == ChannelSMS || c == ChannelEmail
}

// Conversation is the single thread for an unordered participant pair on one
// channel. Participant1 <= Participant2 always holds.
type Conversation struct {
	ID            string      `db:"id" json:"id"`
	Participant1  string      `db:"participant1" json:"participant1"`
	Participant2  string      `db:"participant2" json:"participant2"`
	ChannelType   ChannelType `db:"channel_type" json:"channelType"`
	LastMessageAt time.Time   `db:"last_message_at" json:"lastMessageAt"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

// ConversationSummary is a list row: the conversation, its message count and
// its most recent message, if any.
type ConversationSummary struct {
	Conversation
	MessageCount int64    `db:"message_count" json:"messageCount"`
	LastMessage  *Message `db:"-" json:"lastMessage"`
}

// ConversationPage is one page of a conversation's messages, oldest first.
type ConversationPage struct {
	Conversation *Conversation
	Messages     []Message
	MessageCount int64
}

// ListConversationsParams filters and paginates conversations for a participant.
type ListConversationsParams struct {
	Participant string
	ChannelType *ChannelType
	Limit       int
	Offset      int
}

// NormalizeParticipants orders a pair so that both directions of a
// conversation map to the same key.
func NormalizeParticipants(from, to string) (string, string) {
	if from < to {
		return from, to
	}
	return to, from
}
