// Package repository provides the persistence layer for users, todos and
// request logs, backed by PostgreSQL or SQLite.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apilab/apilab/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTodoNotFound   = errors.New("todo not found")
	ErrUnsupportedURL = errors.New("unsupported database URL")
)

// Store is the full persistence surface used by the application.
type Store interface {
	Ping(ctx context.Context) error
	Close()

	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	CountUsers(ctx context.Context) (int64, error)

	ListTodos(ctx context.Context) ([]*model.Todo, error)
	ListTodosByOwner(ctx context.Context, ownerID int64) ([]*model.Todo, error)
	GetTodo(ctx context.Context, id int64) (*model.Todo, error)
	CreateTodo(ctx context.Context, todo *model.Todo) error
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, id int64) error

	CreateRequestLog(ctx context.Context, entry *model.RequestLog) error
	ListRequestLogs(ctx context.Context, filter model.RequestLogFilter) ([]*model.RequestLog, error)

	// Reset deletes every todo and request log, upserts users by email
	// (preserving ids) and inserts todos, in one transaction.
	Reset(ctx context.Context, users []*model.User, todos []model.SeedTodo) (*model.SeedResult, error)
}

// Options controls how Open prepares the database.
type Options struct {
	// Migrate applies schema migrations before returning.
	Migrate bool
}

// Open connects to the database named by databaseURL.
// postgres:// and postgresql:// URLs use pgx; sqlite:// URLs use an
// embedded SQLite file.
func Open(ctx context.Context, databaseURL string, opts Options) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		if opts.Migrate {
			if err := Migrate(databaseURL); err != nil {
				return nil, err
			}
		}
		return NewPostgres(ctx, databaseURL)

	case strings.HasPrefix(databaseURL, "sqlite://"):
		return NewSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"), opts.Migrate)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, schemeOf(databaseURL))
}

func schemeOf(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return ""
	}
	return scheme
}

// ownerIDs maps seed todos onto the ids of the upserted users.
func ownerIDs(users map[string]int64, todos []model.SeedTodo) ([]int64, error) {
	ids := make([]int64, len(todos))
	for i, todo := range todos {
		id, ok := users[todo.OwnerEmail]
		if !ok {
			return nil, fmt.Errorf("seed todo %q: owner %s: %w", todo.Title, todo.OwnerEmail, ErrUserNotFound)
		}
		ids[i] = id
	}
	return ids, nil
}
