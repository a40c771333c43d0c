package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/loanleads/backoffice/api/handler"
)

type Handlers struct {
	Auth       *apiHandler.AuthHandler
	Chat       *apiHandler.ChatHandler
	Task       *apiHandler.TaskHandler
	Directory  *apiHandler.DirectoryHandler
	Attachment *apiHandler.AttachmentHandler
	Webhook    *apiHandler.WebhookHandler
	Health     *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Gateway callbacks authenticate with a shared token, not a session.
	r.POST("/webhooks/gateway", handlers.Webhook.Inbound)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	// Protected routes
	r.GET("/api/v1/conversations", authMiddleware(handlers.Chat.ListConversations))
	r.GET("/api/v1/conversations/{session}/messages", authMiddleware(handlers.Chat.History))
	r.POST("/api/v1/conversations/{session}/messages", authMiddleware(handlers.Chat.SendMessage))
	r.POST("/api/v1/conversations/{session}/assign", authMiddleware(handlers.Chat.Assign))
	r.GET("/api/v1/conversations/{session}/lead", authMiddleware(handlers.Chat.LeadInfo))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.List))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Get))
	r.POST("/api/v1/tasks/{id}/close", authMiddleware(handlers.Task.Close))
	r.POST("/api/v1/tasks/{id}/reopen", authMiddleware(handlers.Task.Reopen))
	r.POST("/api/v1/tasks/{id}/reschedule", authMiddleware(handlers.Task.Reschedule))

	r.GET("/api/v1/profiles/{id}", authMiddleware(handlers.Directory.GetProfile))
	r.GET("/api/v1/teams", authMiddleware(handlers.Directory.ListTeams))
	r.GET("/api/v1/teams/{id}/members", authMiddleware(handlers.Directory.TeamMembers))
	r.GET("/api/v1/leads/{id}", authMiddleware(handlers.Directory.GetLead))

	r.GET("/api/v1/attachments/{key}", authMiddleware(handlers.Attachment.SignedURL))

	return r
}
