package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/api/transport"
	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/pkg/httpcontext"
	taskUC "github.com/loanleads/backoffice/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List daily tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	role := h.userRole(ctx)

	filter := taskUC.ListFilter{
		Segments:    parseList(string(ctx.QueryArgs().Peek("segments"))),
		OwnerIDs:    parseList(string(ctx.QueryArgs().Peek("owners"))),
		TeamIDs:     parseList(string(ctx.QueryArgs().Peek("teams"))),
		Statuses:    parseList(string(ctx.QueryArgs().Peek("status"))),
		Page:        parseInt(string(ctx.QueryArgs().Peek("page")), 0),
		RowsPerPage: parseInt(string(ctx.QueryArgs().Peek("rowsPerPage")), 25),
	}

	if raw := string(ctx.QueryArgs().Peek("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid date", nil))
			return
		}
		filter.ScheduledDate = &parsed
	}

	// Agents only ever see their own queue.
	if !domain.RoleElevated(role) {
		filter.OwnerIDs = []string{userID}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.List(stdCtx, role, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	meta := transport.PageMeta{Total: result.Count, Page: filter.Page, RowsPerPage: filter.RowsPerPage}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(result.Data, meta))
}

// @Summary Get one task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Close a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/close [post]
func (h *TaskHandler) Close(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskCloseRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Reason == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Close(stdCtx, id, domain.CloseReason(req.Reason))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Reopen a closed task
// @Tags tasks
// @Router /api/v1/tasks/{id}/reopen [post]
func (h *TaskHandler) Reopen(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskReopenRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
			return
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Reopen(stdCtx, h.userRole(ctx), id, req.Notes)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Reschedule a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/reschedule [post]
func (h *TaskHandler) Reschedule(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskRescheduleRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.ScheduledAt == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}
	date, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid scheduled_at", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Reschedule(stdCtx, id, date)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return "", false
	}
	return id, true
}
