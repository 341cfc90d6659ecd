package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/apilab/apilab/internal/auth"
	"github.com/apilab/apilab/internal/metrics"
	"github.com/apilab/apilab/internal/model"
	"github.com/apilab/apilab/internal/repository"
	"github.com/apilab/apilab/internal/reqctx"
)

// UserReader loads users by id.
type UserReader interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// CallerResolver authenticates requests for handlers and records the
// resolved identity on the request state.
type CallerResolver struct {
	authn   *auth.Authenticator
	users   UserReader
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewCallerResolver creates a new CallerResolver.
func NewCallerResolver(authn *auth.Authenticator, users UserReader, recorder metrics.Recorder, logger *slog.Logger) *CallerResolver {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CallerResolver{
		authn:   authn,
		users:   users,
		metrics: recorder,
		logger:  logger,
	}
}

// Resolve accepts either a bearer token or Basic credentials.
func (c *CallerResolver) Resolve(r *http.Request) (*model.User, *APIError) {
	identity, err := c.authn.Resolve(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		c.metrics.IncAuthAttempt("failure")
		c.logger.Debug("auth_failed", "error", err)
		return nil, errAuthRequired
	}

	c.record(r, identity.Method, identity.User)
	return identity.User, nil
}

// ResolveToken accepts only a bearer token. A valid token whose user no
// longer exists yields USER_NOT_FOUND.
func (c *CallerResolver) ResolveToken(r *http.Request) (*model.User, *APIError) {
	userID, err := c.authn.TokenSubject(r.Header.Get("Authorization"))
	if err != nil {
		c.metrics.IncAuthAttempt("failure")
		c.logger.Debug("auth_failed", "error", err)
		return nil, errTokenRequired
	}

	user, err := c.users.GetUserByID(r.Context(), userID)
	if err != nil {
		c.metrics.IncAuthAttempt("failure")
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errUserNotFound
		}
		c.logger.Error("internal_error", "error", err)
		return nil, errInternal
	}

	c.record(r, model.AuthMethodToken, user)
	return user, nil
}

func (c *CallerResolver) record(r *http.Request, method model.AuthMethod, user *model.User) {
	c.metrics.IncAuthAttempt("success")
	if st := reqctx.FromContext(r.Context()); st != nil {
		st.SetIdentity(method, user.ID)
	}
}
