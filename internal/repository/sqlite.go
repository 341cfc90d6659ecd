package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/apilab/apilab/internal/model"
)

type userRow struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:user"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r *userRow) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         model.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type todoRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"not null"`
	Description string `gorm:"not null;default:''"`
	Completed   bool   `gorm:"not null;default:false"`
	OwnerID     int64  `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (todoRow) TableName() string { return "todos" }

func (r *todoRow) toModel() *model.Todo {
	return &model.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type requestLogRow struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Method       string `gorm:"size:10;not null"`
	Path         string `gorm:"size:500;not null"`
	StatusCode   int    `gorm:"not null"`
	LatencyMs    *int64
	RequestBody  *string
	ResponseBody *string
	AuthMethod   string `gorm:"size:20;not null;default:none"`
	UserID       *int64
	IPAddress    string    `gorm:"size:45"`
	Timestamp    time.Time `gorm:"index;not null"`
}

func (requestLogRow) TableName() string { return "request_logs" }

func (r *requestLogRow) toModel() *model.RequestLog {
	return &model.RequestLog{
		ID:           r.ID,
		Method:       r.Method,
		Path:         r.Path,
		StatusCode:   r.StatusCode,
		LatencyMs:    r.LatencyMs,
		RequestBody:  r.RequestBody,
		ResponseBody: r.ResponseBody,
		AuthMethod:   model.AuthMethod(r.AuthMethod),
		UserID:       r.UserID,
		IPAddress:    r.IPAddress,
		Timestamp:    r.Timestamp.UTC(),
	}
}

// SQLite is a Store backed by an embedded SQLite database through GORM.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite opens the SQLite database at dsn. When migrate is set the
// schema is created or updated with AutoMigrate.
func NewSQLite(ctx context.Context, dsn string, migrate bool) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if migrate {
		if err := db.WithContext(ctx).AutoMigrate(&userRow{}, &todoRow{}, &requestLogRow{}); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Ping checks database connectivity.
func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection.
func (s *SQLite) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *SQLite) findUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toModel(), nil
}

// GetUserByID retrieves a user by id.
func (s *SQLite) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by exact email match.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

// ListUsers returns every user ordered by id.
func (s *SQLite) ListUsers(ctx context.Context) ([]*model.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*model.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toModel())
	}
	return users, nil
}

// CountUsers returns the number of users.
func (s *SQLite) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *SQLite) findTodos(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*model.Todo, error) {
	var rows []todoRow
	if err := s.db.WithContext(ctx).Scopes(scope).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]*model.Todo, 0, len(rows))
	for i := range rows {
		todos = append(todos, rows[i].toModel())
	}
	return todos, nil
}

// ListTodos returns every todo ordered by id.
func (s *SQLite) ListTodos(ctx context.Context) ([]*model.Todo, error) {
	return s.findTodos(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

// ListTodosByOwner returns the todos owned by ownerID.
func (s *SQLite) ListTodosByOwner(ctx context.Context, ownerID int64) ([]*model.Todo, error) {
	return s.findTodos(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("owner_id = ?", ownerID) })
}

// GetTodo retrieves a todo by id regardless of owner.
func (s *SQLite) GetTodo(ctx context.Context, id int64) (*model.Todo, error) {
	var row todoRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return row.toModel(), nil
}

// CreateTodo inserts todo and sets its generated id.
func (s *SQLite) CreateTodo(ctx context.Context, todo *model.Todo) error {
	row := todoRow{
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		OwnerID:     todo.OwnerID,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	todo.ID = row.ID
	return nil
}

// UpdateTodo writes the mutable fields of todo. The owner is never changed.
func (s *SQLite) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	result := s.db.WithContext(ctx).Model(&todoRow{}).Where("id = ?", todo.ID).Updates(map[string]any{
		"title":       todo.Title,
		"description": todo.Description,
		"completed":   todo.Completed,
		"updated_at":  todo.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update todo: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// DeleteTodo removes a todo.
func (s *SQLite) DeleteTodo(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&todoRow{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete todo: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// CreateRequestLog appends a request log entry.
func (s *SQLite) CreateRequestLog(ctx context.Context, entry *model.RequestLog) error {
	row := requestLogRow{
		Method:       entry.Method,
		Path:         entry.Path,
		StatusCode:   entry.StatusCode,
		LatencyMs:    entry.LatencyMs,
		RequestBody:  entry.RequestBody,
		ResponseBody: entry.ResponseBody,
		AuthMethod:   string(entry.AuthMethod),
		UserID:       entry.UserID,
		IPAddress:    entry.IPAddress,
		Timestamp:    entry.Timestamp.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create request log: %w", err)
	}
	entry.ID = row.ID
	return nil
}

// ListRequestLogs returns entries newest first.
func (s *SQLite) ListRequestLogs(ctx context.Context, filter model.RequestLogFilter) ([]*model.RequestLog, error) {
	query := s.db.WithContext(ctx).Model(&requestLogRow{})
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.StatusCode != 0 {
		query = query.Where("status_code = ?", filter.StatusCode)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []requestLogRow
	if err := query.Order("timestamp DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}

	logs := make([]*model.RequestLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].toModel())
	}
	return logs, nil
}

// Reset restores the seed state in a single transaction.
func (s *SQLite) Reset(ctx context.Context, users []*model.User, todos []model.SeedTodo) (*model.SeedResult, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&todoRow{}).Error; err != nil {
			return fmt.Errorf("clear todos: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&requestLogRow{}).Error; err != nil {
			return fmt.Errorf("clear request logs: %w", err)
		}

		emails := make(map[string]int64, len(users))
		for _, user := range users {
			var row userRow
			err := tx.Where("email = ?", user.Email).First(&row).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = userRow{Email: user.Email, PasswordHash: user.PasswordHash, Role: string(user.Role)}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("create user %s: %w", user.Email, err)
				}
			case err != nil:
				return fmt.Errorf("find user %s: %w", user.Email, err)
			default:
				err := tx.Model(&row).Updates(map[string]any{
					"password_hash": user.PasswordHash,
					"role":          string(user.Role),
				}).Error
				if err != nil {
					return fmt.Errorf("update user %s: %w", user.Email, err)
				}
			}
			user.ID = row.ID
			emails[user.Email] = row.ID
		}

		owners, err := ownerIDs(emails, todos)
		if err != nil {
			return err
		}

		if len(todos) == 0 {
			return nil
		}

		now := time.Now().UTC()
		rows := make([]todoRow, len(todos))
		for i, todo := range todos {
			rows[i] = todoRow{
				Title:       todo.Title,
				Description: todo.Description,
				Completed:   todo.Completed,
				OwnerID:     owners[i],
				CreatedAt:   now,
				UpdatedAt:   now,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert seed todos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.SeedResult{Users: len(users), Todos: len(todos)}, nil
}
