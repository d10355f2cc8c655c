package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	authUC "github.com/fastygo/todo/usecase/auth"
	taskUC "github.com/fastygo/todo/usecase/task"
)

const (
	msgListFailed   = "failed to load todos"
	msgCreateFailed = "failed to create todo"
	msgUpdateFailed = "failed to update todo"
	msgDeleteFailed = "failed to delete todo"
	msgStatsFailed  = "failed to load statistics"
)

type TaskHandler struct {
	baseHandler
	users *authUC.UseCase
	uc    *taskUC.UseCase
}

func NewTaskHandler(users *authUC.UseCase, uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		users:       users,
		uc:          uc,
	}
}

// @Summary List the caller's todos
// @Tags todos
// @Router /api/todos [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.currentUser(stdCtx, ctx)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgListFailed)
		return
	}

	filter := taskUC.ParseStatusFilter(string(ctx.QueryArgs().Peek("filter")))
	tasks, err := h.uc.ListByOwner(stdCtx, user, filter)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgListFailed)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TodoListResponse{Success: true, Todos: transport.NewTodoViews(tasks)})
}

// @Summary Create a todo
// @Tags todos
// @Router /api/todos [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.currentUser(stdCtx, ctx)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgCreateFailed)
		return
	}

	var req transport.CreateTodoRequest
	if err := decodeJSON(ctx, &req); err != nil {
		h.respondError(stdCtx, ctx, err, msgCreateFailed)
		return
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgCreateFailed)
		return
	}

	task, err := h.uc.Create(stdCtx, req.Text, user, due)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgCreateFailed)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TodoResponse{Success: true, Todo: transport.NewTodoView(task)})
}

// @Summary Update text, due date or completion of a todo
// @Tags todos
// @Router /api/todos/{id} [put]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.currentUser(stdCtx, ctx)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgUpdateFailed)
		return
	}

	task, err := h.uc.GetOwned(stdCtx, pathID(ctx), user)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgUpdateFailed)
		return
	}

	var req transport.UpdateTodoRequest
	if err := decodeJSON(ctx, &req); err != nil {
		h.respondError(stdCtx, ctx, err, msgUpdateFailed)
		return
	}

	// Validate everything before the first write.
	if req.Text != nil {
		if _, err := taskUC.ValidateText(*req.Text); err != nil {
			h.respondError(stdCtx, ctx, err, msgUpdateFailed)
			return
		}
	}
	var due *time.Time
	if req.DueDate.Set {
		if due, err = parseDueDate(req.DueDate.Value); err != nil {
			h.respondError(stdCtx, ctx, err, msgUpdateFailed)
			return
		}
	}

	if req.Text != nil {
		if task, err = h.uc.UpdateText(stdCtx, task, *req.Text); err != nil {
			h.respondError(stdCtx, ctx, err, msgUpdateFailed)
			return
		}
	}
	if req.DueDate.Set {
		if task, err = h.uc.UpdateDueDate(stdCtx, task, due); err != nil {
			h.respondError(stdCtx, ctx, err, msgUpdateFailed)
			return
		}
	}
	if req.Completed != nil {
		if task, err = h.uc.SetCompleted(stdCtx, task, *req.Completed); err != nil {
			h.respondError(stdCtx, ctx, err, msgUpdateFailed)
			return
		}
	}

	h.respondJSON(ctx, http.StatusOK, transport.TodoResponse{Success: true, Todo: transport.NewTodoView(task)})
}

// @Summary Delete a todo
// @Tags todos
// @Router /api/todos/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.currentUser(stdCtx, ctx)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgDeleteFailed)
		return
	}

	task, err := h.uc.GetOwned(stdCtx, pathID(ctx), user)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgDeleteFailed)
		return
	}
	if err := h.uc.Delete(stdCtx, task); err != nil {
		h.respondError(stdCtx, ctx, err, msgDeleteFailed)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Success: true})
}

// @Summary Count the caller's todos by status
// @Tags todos
// @Router /api/todos/stats [get]
func (h *TaskHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.currentUser(stdCtx, ctx)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgStatsFailed)
		return
	}

	stats, err := h.uc.Stats(stdCtx, user)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgStatsFailed)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.StatsResponse{
		Success:   true,
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Pending,
	})
}

// currentUser loads the session owner; a session for a deleted user is NOT_FOUND.
func (h *TaskHandler) currentUser(stdCtx context.Context, ctx *fasthttp.RequestCtx) (*domain.User, error) {
	session, ok := httpcontext.SessionFrom(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return h.users.FindByID(stdCtx, session.UserID)
}

func parseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	due, err := domain.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &due, nil
}

func pathID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}
