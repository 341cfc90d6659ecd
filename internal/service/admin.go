package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/apilab/apilab/internal/model"
)

// ErrInvalidTable is returned when a table name is not browsable.
var ErrInvalidTable = errors.New("invalid table name")

// DefaultLogLimit is the number of request logs returned when no limit is
// given.
const DefaultLogLimit = 100

// AdminStore is the persistence surface used by AdminService.
type AdminStore interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListTodos(ctx context.Context) ([]*model.Todo, error)
	ListRequestLogs(ctx context.Context, filter model.RequestLogFilter) ([]*model.RequestLog, error)
}

// Resetter restores the database to its default contents.
type Resetter interface {
	Reset(ctx context.Context) (*model.SeedResult, error)
}

// TableData is a full dump of one browsable table.
type TableData struct {
	Table model.Table
	Rows  any
	Count int
}

// AdminService backs the data-browser and maintenance endpoints.
type AdminService struct {
	store  AdminStore
	seeder Resetter
}

// NewAdminService creates a new AdminService.
func NewAdminService(store AdminStore, seeder Resetter) *AdminService {
	return &AdminService{store: store, seeder: seeder}
}

// ListUsers returns every user.
func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListRequestLogs returns request logs newest first.
func (s *AdminService) ListRequestLogs(ctx context.Context, filter model.RequestLogFilter) ([]*model.RequestLog, error) {
	logs, err := s.store.ListRequestLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}
	return logs, nil
}

// BrowseTable returns every row of the named table.
func (s *AdminService) BrowseTable(ctx context.Context, name string) (*TableData, error) {
	table, ok := model.ParseTable(name)
	if !ok {
		return nil, ErrInvalidTable
	}

	var (
		rows  any
		count int
	)
	switch table {
	case model.TableTodos:
		todos, err := s.store.ListTodos(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list todos: %w", err)
		}
		rows, count = nonNil(todos), len(todos)
	case model.TableUsers:
		users, err := s.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		rows, count = nonNil(users), len(users)
	case model.TableRequestLogs:
		logs, err := s.ListRequestLogs(ctx, model.RequestLogFilter{})
		if err != nil {
			return nil, err
		}
		rows, count = nonNil(logs), len(logs)
	}

	return &TableData{Table: table, Rows: rows, Count: count}, nil
}

// Reset wipes todos and request logs and restores the default data.
func (s *AdminService) Reset(ctx context.Context) (*model.SeedResult, error) {
	result, err := s.seeder.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reset database: %w", err)
	}
	return result, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
