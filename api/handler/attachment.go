package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/api/transport"
	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/internal/infrastructure/blob"
	"github.com/loanleads/backoffice/pkg/httpcontext"
)

// AttachmentHandler resolves media keys into short-lived signed URLs so
// the console can render documents without proxying bytes.
type AttachmentHandler struct {
	baseHandler
	presigner *blob.Presigner
}

func NewAttachmentHandler(presigner *blob.Presigner, adapter *httpcontext.Adapter, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		presigner:   presigner,
	}
}

// @Summary Signed URL for an attachment
// @Tags attachments
// @Router /api/v1/attachments/{key} [get]
func (h *AttachmentHandler) SignedURL(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}

	key, _ := ctx.UserValue("key").(string)
	if key == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing attachment key", nil))
		return
	}

	ttl := time.Duration(parseInt(string(ctx.QueryArgs().Peek("ttl_seconds")), 0)) * time.Second
	bucket := string(ctx.QueryArgs().Peek("bucket"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	url, err := h.presigner.SignedURL(stdCtx, bucket, key, ttl)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"url": url})
}
