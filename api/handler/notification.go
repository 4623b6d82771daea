package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
	activityUC "github.com/fastygo/taskpulse/usecase/activity"
)

type NotificationHandler struct {
	baseHandler
	uc *activityUC.UseCase
}

func NewNotificationHandler(uc *activityUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List notifications
// @Tags notifications
// @Param unread_only query bool false "only unread"
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.ListNotifications(stdCtx, actor, queryBool(ctx, "unread_only"), queryInt(ctx, "limit", 0))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	h.respondSuccess(ctx, http.StatusOK, items)
}

// @Summary Mark notification read
// @Tags notifications
// @Router /api/v1/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	n, err := h.uc.MarkRead(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, n)
}
