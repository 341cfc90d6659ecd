// Package reqctx carries per-request state through the middleware chain.
package reqctx

import (
	"context"
	"time"

	"github.com/apilab/apilab/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const stateKey contextKey = "request_state"

// State is the mutable per-request record shared by the middleware chain
// and handlers. It is created once per request and is not safe for use by
// more than one goroutine.
type State struct {
	// StartedAt is set by the request logger; zero when it did not run.
	StartedAt time.Time

	ChaosEnabled bool
	ChaosLevel   float64

	// AuthMethod and UserID are recorded by handlers that authenticate.
	AuthMethod model.AuthMethod
	UserID     *int64
}

// SetIdentity records the authenticated caller.
func (s *State) SetIdentity(method model.AuthMethod, userID int64) {
	s.AuthMethod = method
	s.UserID = &userID
}

// WithState returns a context holding st.
func WithState(ctx context.Context, st *State) context.Context {
	return context.WithValue(ctx, stateKey, st)
}

// FromContext returns the request state, or nil if none was attached.
func FromContext(ctx context.Context) *State {
	st, ok := ctx.Value(stateKey).(*State)
	if !ok {
		return nil
	}
	return st
}

// Ensure returns the state attached to ctx, attaching a new one if needed.
func Ensure(ctx context.Context) (context.Context, *State) {
	if st := FromContext(ctx); st != nil {
		return ctx, st
	}
	st := &State{}
	return WithState(ctx, st), st
}
