package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/response"
)

const (
	defaultConversationLimit = 20
	defaultMessageLimit      = 50
	maxPageLimit             = 100
)

type conversationReader interface {
	List(ctx context.Context, params domain.ListConversationsParams) ([]domain.ConversationSummary, int64, error)
	GetMessages(ctx context.Context, conversationID string, limit, offset int) (*domain.ConversationPage, error)
}

type ConversationHandler struct {
	service conversationReader
}

func NewConversationHandler(service conversationReader) *ConversationHandler {
	return &ConversationHandler{service: service}
}

type ConversationView struct {
	ID            string             `json:"id"`
	Participant1  string             `json:"participant1"`
	Participant2  string             `json:"participant2"`
	ChannelType   domain.ChannelType `json:"channelType"`
	LastMessageAt time.Time          `json:"lastMessageAt"`
	MessageCount  int64              `json:"messageCount"`
	LastMessage   *MessageView       `json:"lastMessage,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type ConversationFilters struct {
	Participant string              `json:"participant"`
	ChannelType *domain.ChannelType `json:"channelType"`
}

type ConversationListResponse struct {
	Success       bool                `json:"success"`
	Conversations []ConversationView  `json:"conversations"`
	Pagination    response.Pagination `json:"pagination"`
	Filters       ConversationFilters `json:"filters"`
}

type ConversationMessagesResponse struct {
	Success      bool                `json:"success"`
	Conversation ConversationView    `json:"conversation"`
	Messages     []MessageView       `json:"messages"`
	Pagination   response.Pagination `json:"pagination"`
}

// ListConversations godoc
// @Summary List a participant's conversations
// @Description Returns the participant's conversations, most recently active first, each with its latest message
// @Tags conversations
// @Accept json
// @Produce json
// @Param participant query string true "Phone number or email address"
// @Param channelType query string false "SMS or EMAIL"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} ConversationListResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/conversations [get]
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	participant := c.QueryParam("participant")
	if participant == "" {
		return response.Error(c, domain.NewValidationError("participant query parameter is required", nil))
	}

	var channel *domain.ChannelType
	if raw := c.QueryParam("channelType"); raw != "" {
		ct := domain.ChannelType(raw)
		if !ct.Valid() {
			return response.Error(c, domain.NewValidationError("Invalid channelType. Must be SMS or EMAIL", nil))
		}
		channel = &ct
	}

	page, limit, err := parsePaginationParams(c, defaultConversationLimit)
	if err != nil {
		return response.Error(c, err)
	}

	summaries, total, err := h.service.List(c.Request().Context(), domain.ListConversationsParams{
		Participant: participant,
		ChannelType: channel,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	})
	if err != nil {
		return response.Error(c, err)
	}

	views := make([]ConversationView, len(summaries))
	for i := range summaries {
		views[i] = newConversationView(&summaries[i].Conversation, summaries[i].MessageCount)
		if last := summaries[i].LastMessage; last != nil {
			lv := NewMessageView(last)
			views[i].LastMessage = &lv
		}
	}

	return c.JSON(http.StatusOK, ConversationListResponse{
		Success:       true,
		Conversations: views,
		Pagination:    response.NewPagination(page, limit, len(views), total),
		Filters:       ConversationFilters{Participant: participant, ChannelType: channel},
	})
}

// GetConversationMessages godoc
// @Summary Get a conversation's messages
// @Description Returns the conversation and one page of its messages, oldest first
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 50, max: 100)"
// @Success 200 {object} ConversationMessagesResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/conversations/{id}/messages [get]
func (h *ConversationHandler) GetConversationMessages(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return response.Error(c, domain.NewValidationError("Conversation ID is required", nil))
	}

	page, limit, err := parsePaginationParams(c, defaultMessageLimit)
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.service.GetMessages(c.Request().Context(), id, limit, (page-1)*limit)
	if err != nil {
		return response.Error(c, err)
	}

	messages := make([]MessageView, len(result.Messages))
	for i := range result.Messages {
		messages[i] = NewMessageView(&result.Messages[i])
	}

	return c.JSON(http.StatusOK, ConversationMessagesResponse{
		Success:      true,
		Conversation: newConversationView(result.Conversation, result.MessageCount),
		Messages:     messages,
		Pagination:   response.NewPagination(page, limit, len(messages), result.MessageCount),
	})
}

func newConversationView(conv *domain.Conversation, messageCount int64) ConversationView {
	return ConversationView{
		ID:            conv.ID,
		Participant1:  conv.Participant1,
		Participant2:  conv.Participant2,
		ChannelType:   conv.ChannelType,
		LastMessageAt: conv.LastMessageAt,
		MessageCount:  messageCount,
		CreatedAt:     conv.CreatedAt,
		UpdatedAt:     conv.UpdatedAt,
	}
}

// parsePaginationParams reads page and limit. Out of range values are clamped;
// values that are not integers are rejected.
func parsePaginationParams(c echo.Context, defaultLimit int) (int, int, error) {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, domain.NewValidationError("page must be an integer", nil)
		}
		page = max(p, 1)
	}

	limit := defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, domain.NewValidationError("limit must be an integer", nil)
		}
		limit = min(max(l, 1), maxPageLimit)
	}

	return page, limit, nil
}
