package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/pkg/httpcontext"
	analyticsUC "github.com/fastygo/taskpulse/usecase/analytics"
)

const defaultPerformanceDays = 30

type AnalyticsHandler struct {
	baseHandler
	uc *analyticsUC.UseCase
}

func NewAnalyticsHandler(uc *analyticsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Dashboard
// @Tags analytics
// @Router /api/v1/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	dashboard, err := h.uc.Dashboard(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, dashboard)
}

// @Summary User performance
// @Tags analytics
// @Param days query int false "window in days (1-365)"
// @Router /api/v1/analytics/performance/{user_id} [get]
func (h *AnalyticsHandler) Performance(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	days := defaultPerformanceDays
	if raw := ctx.QueryArgs().Peek("days"); len(raw) > 0 {
		days = queryInt(ctx, "days", 0)
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	report, err := h.uc.Performance(stdCtx, actor, pathParam(ctx, "user_id"), days)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}

// @Summary Time tracking analytics
// @Tags analytics
// @Param project_id query string false "limit to one project"
// @Router /api/v1/analytics/time-tracking [get]
func (h *AnalyticsHandler) TimeTracking(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	report, err := h.uc.TimeTracking(stdCtx, actor, string(ctx.QueryArgs().Peek("project_id")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}
