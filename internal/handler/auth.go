package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/apilab/apilab/internal/auth"
	"github.com/apilab/apilab/internal/handler/dto"
	"github.com/apilab/apilab/internal/metrics"
)

// AuthHandler handles login and current-user lookups.
type AuthHandler struct {
	authn    *auth.Authenticator
	callers  *CallerResolver
	validate *validator.Validate
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authn *auth.Authenticator, callers *CallerResolver, recorder metrics.Recorder, logger *slog.Logger) *AuthHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthHandler{
		authn:    authn,
		callers:  callers,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  recorder,
		logger:   logger,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	raw, ok := readJSONObject(r)
	if !ok {
		errNoData.Write(w)
		return
	}

	req := dto.LoginRequest{
		Email:    stringField(raw, "email"),
		Password: stringField(raw, "password"),
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "Email and password are required")
		return
	}

	user, err := h.authn.CheckCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.IncAuthAttempt("failure")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("internal_error", "error", err)
			errInternal.Write(w)
			return
		}
		(&APIError{
			Status:  http.StatusUnauthorized,
			Code:    "LOGIN_FAILED",
			Message: "Invalid credentials",
			Hint:    "Check your email and password",
		}).Write(w)
		return
	}

	issued, err := h.authn.Tokens().Issue(user.ID)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		errInternal.Write(w)
		return
	}
	h.metrics.IncAuthAttempt("success")

	h.logger.Info("login_succeeded", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     issued.Token,
		User:      user,
		ExpiresIn: int64(auth.TokenTTL.Seconds()),
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, apiErr := h.callers.ResolveToken(r)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserResponse{User: user})
}

// readJSONObject reads a non-empty JSON object body.
func readJSONObject(r *http.Request) (map[string]json.RawMessage, bool) {
	if r.Body == nil {
		return nil, false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, false
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

// stringField returns raw[key] when it is a JSON string, else "".
func stringField(raw map[string]json.RawMessage, key string) string {
	var s string
	if v, ok := raw[key]; ok {
		_ = json.Unmarshal(v, &s)
	}
	return s
}
