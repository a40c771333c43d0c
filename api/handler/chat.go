package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/api/transport"
	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/pkg/httpcontext"
	"github.com/loanleads/backoffice/repository"
	chatUC "github.com/loanleads/backoffice/usecase/chat"
)

type ChatHandler struct {
	baseHandler
	uc *chatUC.UseCase
}

func NewChatHandler(uc *chatUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List conversations
// @Tags chat
// @Router /api/v1/conversations [get]
func (h *ChatHandler) ListConversations(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}

	filter := repository.ConversationFilter{
		AssignedAgent: string(ctx.QueryArgs().Peek("assignee")),
		Unassigned:    ctx.QueryArgs().GetBool("unassigned"),
		Limit:         parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset:        parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	conversations, err := h.uc.ListConversations(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, conversations)
}

// @Summary Conversation message history
// @Tags chat
// @Router /api/v1/conversations/{session}/messages [get]
func (h *ChatHandler) History(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	session, ok := h.sessionKey(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	messages, err := h.uc.History(stdCtx, session)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, messages)
}

// @Summary Send an agent reply
// @Tags chat
// @Router /api/v1/conversations/{session}/messages [post]
func (h *ChatHandler) SendMessage(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	session, ok := h.sessionKey(ctx)
	if !ok {
		return
	}

	var req transport.SendMessageRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Body == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	msg, err := h.uc.SendMessage(stdCtx, session, req.Body)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, msg)
}

// @Summary Assign a conversation to an agent
// @Tags chat
// @Router /api/v1/conversations/{session}/assign [post]
func (h *ChatHandler) Assign(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	session, ok := h.sessionKey(ctx)
	if !ok {
		return
	}

	var req transport.AssignRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.AssigneeID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.AssignConversation(stdCtx, session, req.AssigneeID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Lead details for a conversation
// @Tags chat
// @Router /api/v1/conversations/{session}/lead [get]
func (h *ChatHandler) LeadInfo(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	session, ok := h.sessionKey(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	lead, err := h.uc.LeadInfo(stdCtx, session)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, lead)
}

func (h *ChatHandler) sessionKey(ctx *fasthttp.RequestCtx) (string, bool) {
	session, _ := ctx.UserValue("session").(string)
	if session == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing session key", nil))
		return "", false
	}
	return session, true
}
