package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/api/transport"
	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
	activityUC "github.com/fastygo/taskpulse/usecase/activity"
	analyticsUC "github.com/fastygo/taskpulse/usecase/analytics"
	projectUC "github.com/fastygo/taskpulse/usecase/project"
)

// PMHandler serves the project manager surface.
type PMHandler struct {
	baseHandler
	analytics *analyticsUC.UseCase
	projects  *projectUC.UseCase
	activity  *activityUC.UseCase
}

func NewPMHandler(
	analytics *analyticsUC.UseCase,
	projects *projectUC.UseCase,
	activity *activityUC.UseCase,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *PMHandler {
	return &PMHandler{
		baseHandler: newBaseHandler(adapter, logger),
		analytics:   analytics,
		projects:    projects,
		activity:    activity,
	}
}

// @Summary PM dashboard
// @Tags pm
// @Router /api/v1/pm/dashboard [get]
func (h *PMHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	dashboard, err := h.analytics.PMDashboard(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, dashboard)
}

// @Summary Override project status
// @Tags pm
// @Router /api/v1/pm/projects/{id}/status [put]
func (h *PMHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.StatusOverrideRequest
	if !h.decode(ctx, &req) {
		return
	}
	var status *domain.ProjectStatus
	if req.Status != nil {
		s := domain.ProjectStatus(*req.Status)
		status = &s
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, warnings, err := h.projects.UpdateStatusOverride(stdCtx, actor, pathParam(ctx, "id"), status)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWarned(ctx, http.StatusOK, project, warnings)
}

// @Summary Project team workload
// @Tags pm
// @Router /api/v1/pm/projects/{id}/team [get]
func (h *PMHandler) Team(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	workload, err := h.analytics.ProjectTeam(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, workload)
}

// @Summary Activity feed
// @Tags pm
// @Param project_id query string false "limit to one project"
// @Router /api/v1/pm/activity [get]
func (h *PMHandler) Activity(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.activity.ListActivity(stdCtx, actor, string(ctx.QueryArgs().Peek("project_id")), queryInt(ctx, "limit", 0))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if entries == nil {
		entries = []domain.ActivityLogEntry{}
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}
