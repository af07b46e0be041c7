package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/messaging-gateway/environments"
	"github.com/onurcolak/messaging-gateway/handlers"
	"github.com/onurcolak/messaging-gateway/internal/middlewares"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Health       *handlers.HealthHandler
	Message      *handlers.MessageHandler
	Conversation *handlers.ConversationHandler
	Webhook      *handlers.WebhookHandler
	Sweeper      *handlers.SweeperHandler
}

// RegisterRoutes registers all API routes with middleware. counter backs the
// send rate limits; nil falls back to per-instance buckets.
func RegisterRoutes(
	e *echo.Echo,
	h Handlers,
	counter middlewares.WindowCounter,
	cfg *environments.Config,
) {
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Outbound sends, limited per client IP and channel
	messages := api.Group("/messages")
	messages.POST("/sms", h.Message.SendSMS,
		middlewares.RateLimit(counter, "sms", cfg.RateLimit.SMSPerWindow, cfg.RateLimit.Window))
	messages.POST("/email", h.Message.SendEmail,
		middlewares.RateLimit(counter, "email", cfg.RateLimit.EmailPerWindow, cfg.RateLimit.Window))

	conversations := api.Group("/conversations")
	conversations.GET("", h.Conversation.ListConversations)
	conversations.GET("/:id/messages", h.Conversation.GetConversationMessages)

	// Provider callbacks, each verified against its provider's signature
	twilio := middlewares.TwilioSignature(cfg.Webhook.TwilioAuthToken, cfg.Server.PublicBaseURL, cfg.Webhook.SkipAuth)
	sendGrid := middlewares.SendGridSignature(cfg.Webhook.SendGridPublicKey, cfg.Webhook.MaxTimestampAge, cfg.Webhook.SkipAuth)

	webhooks := api.Group("/webhooks", middlewares.CaptureRawBody())
	webhooks.POST("/sms", h.Webhook.InboundSMS, twilio)
	webhooks.POST("/sms/status", h.Webhook.TwilioStatus, twilio)
	webhooks.POST("/email", h.Webhook.InboundEmail)
	webhooks.POST("/email/events", h.Webhook.SendGridEvents, sendGrid)

	// Sweeper control with the admin API key
	admin := api.Group("/admin", middlewares.APIKeyAuth(cfg.Auth.AdminAPIKey))
	admin.GET("/sweeper/status", h.Sweeper.GetSweeperStatus)
	admin.POST("/sweeper/start", h.Sweeper.StartSweeper)
	admin.POST("/sweeper/stop", h.Sweeper.StopSweeper)
}
