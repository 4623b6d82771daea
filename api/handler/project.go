package handler

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/api/transport"
	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
	analyticsUC "github.com/fastygo/taskpulse/usecase/analytics"
	projectUC "github.com/fastygo/taskpulse/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc        *projectUC.UseCase
	analytics *analyticsUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, analytics *analyticsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		analytics:   analytics,
	}
}

// @Summary List projects
// @Tags projects
// @Router /api/v1/projects [get]
func (h *ProjectHandler) GetProjects(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.List(stdCtx, actor, queryInt(ctx, "limit", 50), queryInt(ctx, "offset", 0))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	h.respondSuccess(ctx, http.StatusOK, projects)
}

// @Summary Get project
// @Tags projects
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) GetProject(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.Get(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Create project
// @Tags projects
// @Router /api/v1/projects [post]
func (h *ProjectHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.ProjectCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, warnings, err := h.uc.Create(stdCtx, actor, &domain.Project{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Collaborators:   req.Collaborators,
		AssignedTeams:   req.AssignedTeams,
		ProjectManagers: req.ProjectManagers,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWarned(ctx, http.StatusCreated, created, warnings)
}

// @Summary Project analytics
// @Tags projects
// @Router /api/v1/projects/{id}/analytics [get]
func (h *ProjectHandler) GetAnalytics(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	report, err := h.analytics.ProjectAnalytics(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}
