package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apilab/apilab/internal/model"
)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store with a connection pool.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const userColumns = `id, email, password_hash, role, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by id.
func (p *Postgres) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by exact email match.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(p.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// ListUsers returns every user ordered by id.
func (p *Postgres) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountUsers returns the number of users.
func (p *Postgres) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

const todoColumns = `id, title, description, completed, owner_id, created_at, updated_at`

func scanTodo(row pgx.Row) (*model.Todo, error) {
	var todo model.Todo
	err := row.Scan(
		&todo.ID,
		&todo.Title,
		&todo.Description,
		&todo.Completed,
		&todo.OwnerID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (p *Postgres) queryTodos(ctx context.Context, query string, args ...any) ([]*model.Todo, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// ListTodos returns every todo ordered by id.
func (p *Postgres) ListTodos(ctx context.Context) ([]*model.Todo, error) {
	return p.queryTodos(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
}

// ListTodosByOwner returns the todos owned by ownerID.
func (p *Postgres) ListTodosByOwner(ctx context.Context, ownerID int64) ([]*model.Todo, error) {
	return p.queryTodos(ctx, `SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 ORDER BY id`, ownerID)
}

// GetTodo retrieves a todo by id regardless of owner.
func (p *Postgres) GetTodo(ctx context.Context, id int64) (*model.Todo, error) {
	todo, err := scanTodo(p.pool.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

// CreateTodo inserts todo and sets its generated id.
func (p *Postgres) CreateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		INSERT INTO todos (title, description, completed, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		todo.Title,
		todo.Description,
		todo.Completed,
		todo.OwnerID,
		todo.CreatedAt,
		todo.UpdatedAt,
	).Scan(&todo.ID)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// UpdateTodo writes the mutable fields of todo. The owner is never changed.
func (p *Postgres) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		UPDATE todos
		SET title = $2, description = $3, completed = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := p.pool.Exec(ctx, query,
		todo.ID,
		todo.Title,
		todo.Description,
		todo.Completed,
		todo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// DeleteTodo removes a todo.
func (p *Postgres) DeleteTodo(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// CreateRequestLog appends a request log entry.
func (p *Postgres) CreateRequestLog(ctx context.Context, entry *model.RequestLog) error {
	query := `
		INSERT INTO request_logs (
			method, path, status_code, latency_ms, request_body, response_body,
			auth_method, user_id, ip_address, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		entry.Method,
		entry.Path,
		entry.StatusCode,
		entry.LatencyMs,
		entry.RequestBody,
		entry.ResponseBody,
		entry.AuthMethod,
		entry.UserID,
		nullableString(entry.IPAddress),
		entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create request log: %w", err)
	}
	return nil
}

// ListRequestLogs returns entries newest first.
func (p *Postgres) ListRequestLogs(ctx context.Context, filter model.RequestLogFilter) ([]*model.RequestLog, error) {
	query := `
		SELECT id, method, path, status_code, latency_ms, request_body, response_body,
		       auth_method, user_id, COALESCE(ip_address, ''), timestamp
		FROM request_logs
		WHERE 1 = 1
	`
	args := []any{}
	argIndex := 1

	if filter.Method != "" {
		query += fmt.Sprintf(" AND method = $%d", argIndex)
		args = append(args, filter.Method)
		argIndex++
	}

	if filter.StatusCode != 0 {
		query += fmt.Sprintf(" AND status_code = $%d", argIndex)
		args = append(args, filter.StatusCode)
		argIndex++
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*model.RequestLog, 0)
	for rows.Next() {
		var entry model.RequestLog
		err := rows.Scan(
			&entry.ID,
			&entry.Method,
			&entry.Path,
			&entry.StatusCode,
			&entry.LatencyMs,
			&entry.RequestBody,
			&entry.ResponseBody,
			&entry.AuthMethod,
			&entry.UserID,
			&entry.IPAddress,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request log: %w", err)
		}
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

// Reset restores the seed state in a single transaction.
func (p *Postgres) Reset(ctx context.Context, users []*model.User, todos []model.SeedTodo) (*model.SeedResult, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM todos`); err != nil {
		return nil, fmt.Errorf("clear todos: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM request_logs`); err != nil {
		return nil, fmt.Errorf("clear request logs: %w", err)
	}

	upsert := `
		INSERT INTO users (email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role
		RETURNING id
	`

	now := time.Now().UTC()
	emails := make(map[string]int64, len(users))
	for _, user := range users {
		if err := tx.QueryRow(ctx, upsert, user.Email, user.PasswordHash, user.Role, now).Scan(&user.ID); err != nil {
			return nil, fmt.Errorf("upsert user %s: %w", user.Email, err)
		}
		emails[user.Email] = user.ID
	}

	owners, err := ownerIDs(emails, todos)
	if err != nil {
		return nil, err
	}

	if len(todos) > 0 {
		if err := insertSeedTodos(ctx, tx, todos, owners, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reset: %w", err)
	}

	return &model.SeedResult{Users: len(users), Todos: len(todos)}, nil
}

func insertSeedTodos(ctx context.Context, tx pgx.Tx, todos []model.SeedTodo, owners []int64, now time.Time) error {
	batch := &pgx.Batch{}
	for i, todo := range todos {
		batch.Queue(`
			INSERT INTO todos (title, description, completed, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
		`, todo.Title, todo.Description, todo.Completed, owners[i], now)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range todos {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert seed todo %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close seed batch: %w", err)
	}
	return nil
}

// nullableString converts empty strings to NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Pool exposes the underlying pool for tests and maintenance tasks.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}
