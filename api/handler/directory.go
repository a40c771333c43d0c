package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/api/transport"
	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/pkg/httpcontext"
	directoryUC "github.com/loanleads/backoffice/usecase/directory"
)

type DirectoryHandler struct {
	baseHandler
	uc *directoryUC.UseCase
}

func NewDirectoryHandler(uc *directoryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get a profile
// @Tags directory
// @Router /api/v1/profiles/{id} [get]
func (h *DirectoryHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.uc.GetProfile(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, profile)
}

// @Summary List teams
// @Tags directory
// @Router /api/v1/teams [get]
func (h *DirectoryHandler) ListTeams(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	teams, err := h.uc.ListTeams(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, teams)
}

// @Summary Team members
// @Tags directory
// @Router /api/v1/teams/{id}/members [get]
func (h *DirectoryHandler) TeamMembers(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	members, err := h.uc.TeamMembers(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, members)
}

// @Summary Get a lead
// @Tags directory
// @Router /api/v1/leads/{id} [get]
func (h *DirectoryHandler) GetLead(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	lead, err := h.uc.GetLead(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, lead)
}

func (h *DirectoryHandler) pathID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing id", nil))
		return "", false
	}
	return id, true
}
