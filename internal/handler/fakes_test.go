package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apilab/apilab/internal/auth"
	"github.com/apilab/apilab/internal/metrics"
	"github.com/apilab/apilab/internal/model"
	"github.com/apilab/apilab/internal/repository"
	"github.com/apilab/apilab/internal/service"
)

const (
	testSecret   = "handler-test-secret"
	testPassword = "correct horse"
)

var cheapParams = auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

// fakeStore is an in-memory store covering the handler dependencies.
type fakeStore struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	todos  map[int64]*model.Todo
	logs   []*model.RequestLog
	nextID int64
	// lookupErr fails every GetUserByEmail call when set.
	lookupErr error
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()

	hash, err := auth.HashPasswordWithParams(testPassword, cheapParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &fakeStore{
		users: map[int64]*model.User{
			1: {ID: 1, Email: "admin@lab.test", PasswordHash: hash, Role: model.RoleAdmin, CreatedAt: created},
			2: {ID: 2, Email: "alice@lab.test", PasswordHash: hash, Role: model.RoleUser, CreatedAt: created},
			3: {ID: 3, Email: "bob@lab.test", PasswordHash: hash, Role: model.RoleUser, CreatedAt: created},
		},
		todos: map[int64]*model.Todo{
			10: {ID: 10, Title: "alice one", OwnerID: 2, CreatedAt: created, UpdatedAt: created},
			11: {ID: 11, Title: "alice two", OwnerID: 2, Completed: true, CreatedAt: created, UpdatedAt: created},
			20: {ID: 20, Title: "bob one", OwnerID: 3, CreatedAt: created, UpdatedAt: created},
		},
		nextID: 100,
	}
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeStore) ListUsers(context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) ListTodos(context.Context) ([]*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		out = append(out, todo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) ListTodosByOwner(ctx context.Context, ownerID int64) ([]*model.Todo, error) {
	all, _ := s.ListTodos(ctx)
	var out []*model.Todo
	for _, todo := range all {
		if todo.OwnerID == ownerID {
			out = append(out, todo)
		}
	}
	return out, nil
}

func (s *fakeStore) GetTodo(_ context.Context, id int64) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, ok := s.todos[id]
	if !ok {
		return nil, repository.ErrTodoNotFound
	}
	clone := *todo
	return &clone, nil
}

func (s *fakeStore) CreateTodo(_ context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	todo.ID = s.nextID
	clone := *todo
	s.todos[todo.ID] = &clone
	return nil
}

func (s *fakeStore) UpdateTodo(_ context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.todos[todo.ID]; !ok {
		return repository.ErrTodoNotFound
	}
	clone := *todo
	s.todos[todo.ID] = &clone
	return nil
}

func (s *fakeStore) DeleteTodo(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.todos[id]; !ok {
		return repository.ErrTodoNotFound
	}
	delete(s.todos, id)
	return nil
}

func (s *fakeStore) ListRequestLogs(_ context.Context, filter model.RequestLogFilter) ([]*model.RequestLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.RequestLog
	for _, entry := range s.logs {
		if filter.Method != "" && entry.Method != filter.Method {
			continue
		}
		if filter.StatusCode != 0 && entry.StatusCode != filter.StatusCode {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) failLookups(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupErr = err
}

func (s *fakeStore) todo(id int64) (*model.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, ok := s.todos[id]
	return todo, ok
}

type stubResetter struct {
	result *model.SeedResult
	err    error
}

func (r *stubResetter) Reset(context.Context) (*model.SeedResult, error) {
	return r.result, r.err
}

type testEnv struct {
	store    *fakeStore
	tokens   *auth.TokenIssuer
	recorder *metrics.InMemoryRecorder
	router   http.Handler
}

type envOption func(*handlerDeps)

type handlerDeps struct {
	adminCfg AdminConfig
	resetter service.Resetter
}

func withAdminConfig(cfg AdminConfig) envOption {
	return func(d *handlerDeps) { d.adminCfg = cfg }
}

func withResetter(r service.Resetter) envOption {
	return func(d *handlerDeps) { d.resetter = r }
}

// newTestEnv wires the handlers onto a router the same way the server does.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	deps := handlerDeps{
		adminCfg: AdminConfig{AdminRoleRequired: true},
		resetter: &stubResetter{result: &model.SeedResult{Users: 2, Todos: 7}},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	store := newFakeStore(t)
	tokens := auth.NewTokenIssuer(testSecret)
	authn := auth.NewAuthenticator(store, tokens)
	recorder := metrics.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	callers := NewCallerResolver(authn, store, recorder, logger)
	todos := NewTodoHandler(service.NewTodoService(store, recorder), callers, logger)
	authH := NewAuthHandler(authn, callers, recorder, logger)
	admin := NewAdminHandler(service.NewAdminService(store, deps.resetter), callers, deps.adminCfg, logger)
	metricsH := NewMetricsHandler(recorder, callers)
	h := New(t.TempDir())

	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authH.Login)
		r.Get("/auth/me", authH.Me)
		r.Route("/todos", func(r chi.Router) {
			r.MethodNotAllowed(todos.MethodNotAllowed)
			r.Get("/", todos.List)
			r.Post("/", todos.Create)
			r.Get("/{id:[0-9]+}", todos.Get)
			r.Put("/{id:[0-9]+}", todos.Update)
			r.Patch("/{id:[0-9]+}", todos.Update)
			r.Delete("/{id:[0-9]+}", todos.Delete)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", admin.Users)
			r.Get("/logs", admin.Logs)
			r.Get("/logs/live", admin.LiveLogs)
			r.Get("/db/tables/{name}", admin.Table)
			r.Post("/reset", admin.Reset)
			r.Get("/metrics", metricsH.Metrics)
		})
	})

	return &testEnv{store: store, tokens: tokens, recorder: recorder, router: r}
}

func newScenarioRouter() http.Handler {
	s := NewScenarioHandler()
	r := chi.NewRouter()
	r.Get("/api/scenarios", s.List)
	r.Get("/api/scenarios/{id}", s.Get)
	return r
}

func (e *testEnv) bearer(t *testing.T, userID int64) string {
	t.Helper()
	issued, err := e.tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + issued.Token
}

func basic(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func (e *testEnv) do(t *testing.T, method, target, authorization, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
