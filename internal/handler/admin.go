package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/apilab/apilab/internal/handler/dto"
	"github.com/apilab/apilab/internal/logstream"
	"github.com/apilab/apilab/internal/model"
	"github.com/apilab/apilab/internal/service"
)

// LiveLogReader reads the most recent entries from the live log stream.
type LiveLogReader interface {
	Recent(ctx context.Context, count int64) ([]logstream.Event, error)
}

// AdminConfig holds AdminHandler options.
type AdminConfig struct {
	// AdminRoleRequired restricts user and log listings to admins.
	AdminRoleRequired bool
	// Live is nil when no Redis stream is configured.
	Live LiveLogReader
	// LiveMaxLen caps the live-logs limit. Zero means logstream.DefaultMaxLen.
	LiveMaxLen int64
}

// AdminHandler handles the data-browser and maintenance endpoints. Every
// endpoint requires a bearer token.
type AdminHandler struct {
	svc     *service.AdminService
	callers *CallerResolver
	cfg     AdminConfig
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.AdminService, callers *CallerResolver, cfg AdminConfig, logger *slog.Logger) *AdminHandler {
	if cfg.LiveMaxLen <= 0 {
		cfg.LiveMaxLen = logstream.DefaultMaxLen
	}
	return &AdminHandler{
		svc:     svc,
		callers: callers,
		cfg:     cfg,
		logger:  logger,
	}
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(users))
}

// Logs handles GET /api/admin/logs.
// Query: limit (default 100), method, status.
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	logs, err := h.svc.ListRequestLogs(r.Context(), parseLogFilter(r))
	if err != nil {
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(logs))
}

// LiveLogs handles GET /api/admin/logs/live.
// Query: limit (default 100, capped at the stream length).
func (h *AdminHandler) LiveLogs(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	if h.cfg.Live == nil {
		(&APIError{
			Status:  http.StatusServiceUnavailable,
			Code:    "LIVE_LOGS_DISABLED",
			Message: "Live log stream is not configured",
			Hint:    "Set REDIS_URL to enable the live log stream, or use /api/admin/logs",
		}).Write(w)
		return
	}

	count := min(int64(positiveInt(r.URL.Query().Get("limit"), service.DefaultLogLimit)), h.cfg.LiveMaxLen)
	events, err := h.cfg.Live.Recent(r.Context(), count)
	if err != nil {
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(events))
}

// Table handles GET /api/admin/db/tables/{name}. Any authenticated user
// may browse tables.
func (h *AdminHandler) Table(w http.ResponseWriter, r *http.Request) {
	if _, apiErr := h.callers.ResolveToken(r); apiErr != nil {
		apiErr.Write(w)
		return
	}

	name := chi.URLParam(r, "name")
	data, err := h.svc.BrowseTable(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTable) {
			writeJSON(w, http.StatusBadRequest, dto.InvalidTableResponse{
				ErrorResponse: dto.ErrorResponse{
					Error: "Invalid table name: " + name,
					Code:  "INVALID_TABLE",
				},
				ValidTables: model.Tables,
			})
			return
		}
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TableResponse{
		Table: data.Table,
		Rows:  data.Rows,
		Count: data.Count,
	})
}

// Reset handles POST /api/admin/reset. Any authenticated user may reset
// the sandbox.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	user, apiErr := h.callers.ResolveToken(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}

	result, err := h.svc.Reset(r.Context())
	if err != nil {
		h.logger.Error("reset_failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "RESET_FAILED", "Failed to reset database: "+err.Error())
		return
	}

	h.logger.Info("database_reset", "user_id", user.ID, "users", result.Users, "todos", result.Todos)

	writeJSON(w, http.StatusOK, dto.ResetResponse{
		Message:  "Database reset successfully",
		SeedData: result,
	})
}

// requireAdmin resolves the bearer token and, when configured, checks the
// admin role. It writes the error response itself.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, apiErr := h.callers.ResolveToken(r)
	if apiErr != nil {
		apiErr.Write(w)
		return nil, false
	}
	if h.cfg.AdminRoleRequired && !user.IsAdmin() {
		errAdminRequired.Write(w)
		return nil, false
	}
	return user, true
}

func (h *AdminHandler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("internal_error", "error", err)
	errInternal.Write(w)
}

// parseLogFilter reads limit, method and status. Unparsable or
// non-positive values fall back to their defaults.
func parseLogFilter(r *http.Request) model.RequestLogFilter {
	q := r.URL.Query()
	return model.RequestLogFilter{
		Method:     strings.ToUpper(q.Get("method")),
		StatusCode: positiveInt(q.Get("status"), 0),
		Limit:      positiveInt(q.Get("limit"), service.DefaultLogLimit),
	}
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
