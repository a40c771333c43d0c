package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/api/transport"
	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/pkg/httpcontext"
	chatUC "github.com/loanleads/backoffice/usecase/chat"
)

// WebhookHandler receives inbound message callbacks from the messaging
// gateway. It authenticates with a shared token, not a session.
type WebhookHandler struct {
	baseHandler
	uc    *chatUC.UseCase
	token string
}

func NewWebhookHandler(uc *chatUC.UseCase, token string, adapter *httpcontext.Adapter, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		token:       token,
	}
}

// @Summary Inbound message webhook
// @Tags webhooks
// @Router /webhooks/gateway [post]
func (h *WebhookHandler) Inbound(ctx *fasthttp.RequestCtx) {
	if h.token != "" {
		presented := string(ctx.Request.Header.Peek("X-Gateway-Token"))
		if subtle.ConstantTimeCompare([]byte(presented), []byte(h.token)) != 1 {
			h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "bad gateway token", nil))
			return
		}
	}

	var req transport.InboundMessageRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.From == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	var ts time.Time
	if req.Timestamp > 0 {
		ts = time.Unix(req.Timestamp, 0).UTC()
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	msg, err := h.uc.ReceiveInbound(stdCtx, req.From, req.Body, req.MediaKey, ts)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, msg)
}
