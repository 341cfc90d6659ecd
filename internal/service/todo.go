// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/apilab/apilab/internal/metrics"
	"github.com/apilab/apilab/internal/model"
	"github.com/apilab/apilab/internal/repository"
)

// Service errors.
var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrForbidden    = errors.New("todo belongs to another user")
	ErrNoData       = errors.New("request body is required")
)

// ValidationError reports per-field validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// TodoStore is the persistence surface used by TodoService.
type TodoStore interface {
	ListTodosByOwner(ctx context.Context, ownerID int64) ([]*model.Todo, error)
	GetTodo(ctx context.Context, id int64) (*model.Todo, error)
	CreateTodo(ctx context.Context, todo *model.Todo) error
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, id int64) error
}

// TodoService handles todo business logic. Every operation is scoped to
// the calling user.
type TodoService struct {
	store    TodoStore
	validate *validator.Validate
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewTodoService creates a new TodoService.
func NewTodoService(store TodoStore, recorder metrics.Recorder) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TodoService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// createTitleRules is applied after the title has been trimmed.
var createTitleRules = fmt.Sprintf("required,max=%d", model.MaxTitleLength)

var createTitleMessages = map[string]string{
	"required": "Title is required",
	"max":      fmt.Sprintf("Title must be %d characters or less", model.MaxTitleLength),
}

// ListTodos returns the caller's todos.
func (s *TodoService) ListTodos(ctx context.Context, callerID int64) ([]*model.Todo, error) {
	todos, err := s.store.ListTodosByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// GetTodo returns a todo owned by the caller.
func (s *TodoService) GetTodo(ctx context.Context, callerID, id int64) (*model.Todo, error) {
	return s.owned(ctx, callerID, id)
}

// CreateTodo creates a todo owned by the caller. A nil fields value means
// the request carried no usable body.
func (s *TodoService) CreateTodo(ctx context.Context, callerID int64, fields *TodoFields) (*model.Todo, error) {
	if fields == nil {
		return nil, ErrNoData
	}

	invalid := fields.invalidCopy()

	var title string
	if fields.Title != nil {
		title = model.NormalizeTitle(*fields.Title)
	}
	if _, typeErr := invalid["title"]; !typeErr {
		if err := s.validate.Var(title, createTitleRules); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return nil, fmt.Errorf("failed to validate todo: %w", err)
			}
			for _, fe := range verrs {
				invalid["title"] = createTitleMessages[fe.Tag()]
			}
		}
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	now := s.now()
	todo := &model.Todo{
		Title:     title,
		OwnerID:   callerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if fields.Description != nil {
		todo.Description = *fields.Description
	}
	if fields.Completed != nil {
		todo.Completed = *fields.Completed
	}

	if err := s.store.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.IncTodoCreated()
	return todo, nil
}

// UpdateTodo applies the present fields to a todo owned by the caller.
// Existence and ownership are checked before the body is looked at, so a
// nil fields value yields ErrNoData only for the caller's own todos.
// The title length limit is enforced on create only.
func (s *TodoService) UpdateTodo(ctx context.Context, callerID, id int64, fields *TodoFields) (*model.Todo, error) {
	todo, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, ErrNoData
	}

	invalid := fields.invalidCopy()
	if fields.Title != nil {
		title := model.NormalizeTitle(*fields.Title)
		if err := s.validate.Var(title, "required"); err != nil {
			invalid["title"] = "Title cannot be empty"
		}
		todo.Title = title
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	if fields.Description != nil {
		todo.Description = *fields.Description
	}
	if fields.Completed != nil {
		todo.Completed = *fields.Completed
	}
	todo.UpdatedAt = s.now()

	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	s.metrics.IncTodoUpdated()
	return todo, nil
}

// DeleteTodo removes a todo owned by the caller.
func (s *TodoService) DeleteTodo(ctx context.Context, callerID, id int64) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}

	if err := s.store.DeleteTodo(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	s.metrics.IncTodoDeleted()
	return nil
}

// owned loads a todo and checks it belongs to the caller. Existence is
// checked first.
func (s *TodoService) owned(ctx context.Context, callerID, id int64) (*model.Todo, error) {
	todo, err := s.store.GetTodo(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	if !todo.IsOwnedBy(callerID) {
		return nil, ErrForbidden
	}
	return todo, nil
}
