package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
	timerUC "github.com/fastygo/taskpulse/usecase/timer"
)

type timerOp func(ctx context.Context, actor domain.Actor, taskID string) (*timerUC.Result, error)

type TimerHandler struct {
	baseHandler
	uc *timerUC.UseCase
}

func NewTimerHandler(uc *timerUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TimerHandler {
	return &TimerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Start task timer
// @Tags timer
// @Router /api/v1/tasks/{id}/timer/start [post]
func (h *TimerHandler) Start(ctx *fasthttp.RequestCtx) {
	h.run(ctx, h.uc.Start)
}

// @Summary Pause task timer
// @Tags timer
// @Router /api/v1/tasks/{id}/timer/pause [post]
func (h *TimerHandler) Pause(ctx *fasthttp.RequestCtx) {
	h.run(ctx, h.uc.Pause)
}

// @Summary Resume task timer
// @Tags timer
// @Router /api/v1/tasks/{id}/timer/resume [post]
func (h *TimerHandler) Resume(ctx *fasthttp.RequestCtx) {
	h.run(ctx, h.uc.Resume)
}

// @Summary Stop task timer
// @Tags timer
// @Param complete_task query bool false "complete the task"
// @Router /api/v1/tasks/{id}/timer/stop [post]
func (h *TimerHandler) Stop(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Stop(stdCtx, actor, pathParam(ctx, "id"), queryBool(ctx, "complete_task"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWarned(ctx, http.StatusOK, result, result.Warnings)
}

// @Summary Timer status
// @Tags timer
// @Router /api/v1/tasks/{id}/timer/status [get]
func (h *TimerHandler) Status(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	status, err := h.uc.Status(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, status)
}

func (h *TimerHandler) run(ctx *fasthttp.RequestCtx, op timerOp) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := op(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWarned(ctx, http.StatusOK, result, result.Warnings)
}
