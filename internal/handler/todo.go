package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/apilab/apilab/internal/handler/dto"
	"github.com/apilab/apilab/internal/model"
	"github.com/apilab/apilab/internal/service"
)

// todoAllowedMethods documents the todo routes in 405 responses.
var todoAllowedMethods = map[string][]string{
	"/api/todos":     {http.MethodGet, http.MethodPost},
	"/api/todos/:id": {http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete},
}

// TodoHandler handles HTTP requests for todo operations.
type TodoHandler struct {
	svc     *service.TodoService
	callers *CallerResolver
	logger  *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, callers *CallerResolver, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		svc:     svc,
		callers: callers,
		logger:  logger,
	}
}

// List handles GET /api/todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	user, apiErr := h.callers.Resolve(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}

	todos, err := h.svc.ListTodos(r.Context(), user.ID)
	if err != nil {
		h.handleServiceError(w, err, "view")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(todos))
}

// Get handles GET /api/todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, apiErr := h.callers.Resolve(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}

	todo, err := h.svc.GetTodo(r.Context(), user.ID, todoID(r))
	if err != nil {
		h.handleServiceError(w, err, "view")
		return
	}

	writeJSON(w, http.StatusOK, dto.DataResponse[*model.Todo]{Data: todo})
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, apiErr := h.callers.Resolve(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}

	todo, err := h.svc.CreateTodo(r.Context(), user.ID, readTodoFields(r))
	if err != nil {
		h.handleServiceError(w, err, "create")
		return
	}

	h.logger.Info("todo_created",
		"todo_id", todo.ID,
		"owner_id", todo.OwnerID,
	)

	writeJSON(w, http.StatusCreated, dto.DataResponse[*model.Todo]{Data: todo})
}

// Update handles PUT and PATCH /api/todos/{id}. Both apply only the
// fields present in the body.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, apiErr := h.callers.Resolve(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}

	todo, err := h.svc.UpdateTodo(r.Context(), user.ID, todoID(r), readTodoFields(r))
	if err != nil {
		h.handleServiceError(w, err, "update")
		return
	}

	h.logger.Info("todo_updated", "todo_id", todo.ID, "method", r.Method)

	writeJSON(w, http.StatusOK, dto.DataResponse[*model.Todo]{Data: todo})
}

// Delete handles DELETE /api/todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, apiErr := h.callers.Resolve(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}

	id := todoID(r)
	if err := h.svc.DeleteTodo(r.Context(), user.ID, id); err != nil {
		h.handleServiceError(w, err, "delete")
		return
	}

	h.logger.Info("todo_deleted", "todo_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// MethodNotAllowed handles unsupported methods on the todo routes.
func (h *TodoHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, dto.MethodNotAllowedResponse{
		ErrorResponse: dto.ErrorResponse{
			Error: "Method Not Allowed",
			Code:  "METHOD_NOT_ALLOWED",
			Hint:  methodHint(r.Method, r.URL.Path),
		},
		Method:         r.Method,
		Path:           r.URL.Path,
		AllowedMethods: todoAllowedMethods,
	})
}

// methodHint suggests the likely mistake behind a 405 on a todo route.
func methodHint(method, path string) string {
	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		if !strings.ContainsAny(path, "0123456789") {
			return fmt.Sprintf("%s requires a todo ID in the URL. Example: /api/todos/5", method)
		}
	case http.MethodPost:
		rest := strings.TrimPrefix(path, "/api/todos")
		if strings.Trim(rest, "/") != "" {
			return "POST creates new todos and doesn't need an ID. Use /api/todos (without ID)"
		}
	}
	return fmt.Sprintf("%s is not supported for this endpoint", method)
}

func (h *TodoHandler) handleServiceError(w http.ResponseWriter, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrTodoNotFound):
		writeError(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have permission to "+action+" this todo")
	case errors.Is(err, service.ErrNoData):
		errNoData.Write(w)
	case errors.As(err, &verr):
		(&APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "VALIDATION_ERROR",
			Message: "Validation failed",
			Fields:  verr.Fields,
		}).Write(w)
	default:
		h.logger.Error("internal_error", "error", err)
		errInternal.Write(w)
	}
}

// todoID parses the {id} route parameter. The route pattern only admits
// digits, so overflow is the only failure and maps to an id that cannot
// exist.
func todoID(r *http.Request) int64 {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// readTodoFields returns nil when the body is missing or unusable.
func readTodoFields(r *http.Request) *service.TodoFields {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil
	}
	fields, err := service.DecodeTodoFields(body)
	if err != nil {
		return nil
	}
	return fields
}
