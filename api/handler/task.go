package handler

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/api/transport"
	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
	taskUC "github.com/fastygo/taskpulse/usecase/task"
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

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	query := taskUC.Query{
		ProjectID: string(ctx.QueryArgs().Peek("project_id")),
		Status:    domain.TaskStatus(ctx.QueryArgs().Peek("status")),
		Priority:  domain.Priority(ctx.QueryArgs().Peek("priority")),
		Limit:     queryInt(ctx, "limit", 50),
		Offset:    queryInt(ctx, "offset", 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, actor, query)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.TaskCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	task := &domain.Task{
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Status:            domain.TaskStatus(req.Status),
		Priority:          domain.Priority(req.Priority),
		ProjectID:         req.ProjectID,
		AssignedUsers:     req.AssignedUsers,
		Collaborators:     req.Collaborators,
		AssignedTeams:     req.AssignedTeams,
		Tags:              req.Tags,
		EstimatedDuration: req.EstimatedDuration,
		DueDate:           req.DueDate,
	}
	for _, st := range req.Todos {
		task.Todos = append(task.Todos, subtaskFromRequest(st))
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, warnings, err := h.uc.Create(stdCtx, actor, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWarned(ctx, http.StatusCreated, created, warnings)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.TaskUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	due, err := req.DueDate.Time()
	if err != nil {
		h.badRequest(ctx, "due_date must be an RFC 3339 timestamp")
		return
	}

	patch := taskUC.Patch{
		Title:             req.Title,
		Description:       req.Description,
		ProjectID:         req.ProjectID,
		AssignedUsers:     req.AssignedUsers,
		Collaborators:     req.Collaborators,
		AssignedTeams:     req.AssignedTeams,
		Tags:              req.Tags,
		EstimatedDuration: req.EstimatedDuration,
		ActualDuration:    req.ActualDuration,
		DueDate:           due,
		ClearDueDate:      req.DueDate.Set && req.DueDate.Null,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		patch.Priority = &priority
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, warnings, err := h.uc.Update(stdCtx, actor, pathParam(ctx, "id"), patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWarned(ctx, http.StatusOK, updated, warnings)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	warnings, err := h.uc.Delete(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondWarned(ctx, http.StatusOK, map[string]string{"id": pathParam(ctx, "id")}, warnings)
}

// @Summary Add subtask
// @Tags tasks
// @Router /api/v1/tasks/{id}/todos [post]
func (h *TaskHandler) AddSubtask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.SubtaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.AddSubtask(stdCtx, actor, pathParam(ctx, "id"), subtaskFromRequest(req))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, task)
}

// @Summary Toggle subtask
// @Tags tasks
// @Router /api/v1/tasks/{id}/todos/{todo_id} [put]
func (h *TaskHandler) UpdateSubtask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.SubtaskUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.SetSubtaskCompleted(stdCtx, actor, pathParam(ctx, "id"), pathParam(ctx, "todo_id"), req.Completed)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Comment on subtask
// @Tags tasks
// @Router /api/v1/tasks/{id}/todos/{todo_id}/comments [post]
func (h *TaskHandler) AddSubtaskComment(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.CommentRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.AddSubtaskComment(stdCtx, actor, pathParam(ctx, "id"), pathParam(ctx, "todo_id"), req.Text)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, task)
}

func subtaskFromRequest(req transport.SubtaskRequest) domain.Subtask {
	return domain.Subtask{
		Text:              strings.TrimSpace(req.Text),
		Completed:         req.Completed,
		Priority:          domain.Priority(req.Priority),
		AssignedUsers:     req.AssignedUsers,
		DueDate:           req.DueDate,
		EstimatedDuration: req.EstimatedDuration,
	}
}
