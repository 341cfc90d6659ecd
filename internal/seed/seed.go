// Package seed holds the default accounts and todos that a fresh or reset
// database is populated with.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apilab/apilab/internal/auth"
	"github.com/apilab/apilab/internal/model"
)

// Default accounts.
const (
	AdminEmail    = "admin@apilab.dev"
	AdminPassword = "admin123"
	UserEmail     = "testuser@apilab.dev"
	UserPassword  = "test123"
)

// Users returns the default accounts.
func Users() []model.SeedUser {
	return []model.SeedUser{
		{Email: AdminEmail, Password: AdminPassword, Role: model.RoleAdmin},
		{Email: UserEmail, Password: UserPassword, Role: model.RoleUser},
	}
}

// Todos returns the default todos.
func Todos() []model.SeedTodo {
	return []model.SeedTodo{
		{
			OwnerEmail:  UserEmail,
			Title:       "Learn what an API is",
			Description: "Understand the basics of APIs and REST architecture",
			Completed:   true,
		},
		{
			OwnerEmail:  UserEmail,
			Title:       "Make your first GET request",
			Description: "Fetch the list of todos from the API",
			Completed:   true,
		},
		{
			OwnerEmail:  UserEmail,
			Title:       "Create a todo with POST",
			Description: "Add a new todo to the database using POST method",
		},
		{
			OwnerEmail:  UserEmail,
			Title:       "Update a todo with PUT",
			Description: "Mark a todo as completed using PUT method",
		},
		{
			OwnerEmail:  UserEmail,
			Title:       "Partially update with PATCH",
			Description: "Update only specific fields using PATCH method",
		},
		{
			OwnerEmail:  UserEmail,
			Title:       "Delete a todo",
			Description: "Remove a todo from the database using DELETE method",
		},
		{
			OwnerEmail:  AdminEmail,
			Title:       "Monitor server health",
			Description: "Admin task: Check system logs and database status",
		},
	}
}

// Store is the persistence surface needed to seed.
type Store interface {
	CountUsers(ctx context.Context) (int64, error)
	Reset(ctx context.Context, users []*model.User, todos []model.SeedTodo) (*model.SeedResult, error)
}

// HashFunc hashes a plaintext password.
type HashFunc func(password string) (string, error)

// Seeder restores the default data set.
type Seeder struct {
	store  Store
	hash   HashFunc
	logger *slog.Logger
}

// NewSeeder creates a Seeder that hashes passwords with auth.HashPassword.
func NewSeeder(store Store, logger *slog.Logger) *Seeder {
	return NewSeederWithHash(store, auth.HashPassword, logger)
}

// NewSeederWithHash creates a Seeder with a custom password hash function.
func NewSeederWithHash(store Store, hash HashFunc, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{store: store, hash: hash, logger: logger}
}

// Reset clears todos and request logs, restores the default accounts and
// re-creates the default todos.
func (s *Seeder) Reset(ctx context.Context) (*model.SeedResult, error) {
	users, err := s.hashUsers(Users())
	if err != nil {
		return nil, err
	}

	result, err := s.store.Reset(ctx, users, Todos())
	if err != nil {
		return nil, fmt.Errorf("reset database: %w", err)
	}

	s.logger.Info("database reset",
		"users", result.Users,
		"todos", result.Todos,
	)
	return result, nil
}

// EnsureSeeded seeds the database when it has no users. It reports whether
// seeding happened.
func (s *Seeder) EnsureSeeded(ctx context.Context) (bool, error) {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := s.Reset(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) hashUsers(seeds []model.SeedUser) ([]*model.User, error) {
	users := make([]*model.User, 0, len(seeds))
	for _, su := range seeds {
		if !su.Role.IsValid() {
			return nil, fmt.Errorf("seed user %s: unknown role %q", su.Email, su.Role)
		}
		hash, err := s.hash(su.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", su.Email, err)
		}
		users = append(users, &model.User{
			Email:        su.Email,
			PasswordHash: hash,
			Role:         su.Role,
		})
	}
	return users, nil
}
