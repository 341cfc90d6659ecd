package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/apilab/apilab/internal/model"
	"github.com/apilab/apilab/internal/repository"
)

const (
	bearerPrefix = "Bearer "
	basicPrefix  = "Basic "
)

var (
	// ErrUnauthenticated is the only error Resolve returns.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials indicates an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserLookup is the read side of the credential store.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Identity is a resolved caller.
type Identity struct {
	User   *model.User
	Method model.AuthMethod
}

// Authenticator resolves callers from the Authorization header.
type Authenticator struct {
	users  UserLookup
	tokens *TokenIssuer
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(users UserLookup, tokens *TokenIssuer) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

// Tokens returns the issuer used for bearer tokens.
func (a *Authenticator) Tokens() *TokenIssuer {
	return a.tokens
}

// Resolve returns the caller identified by header. Bearer tokens and Basic
// credentials are each tried only when the header carries their prefix.
// Every failure is reported as ErrUnauthenticated wrapping the cause.
func (a *Authenticator) Resolve(ctx context.Context, header string) (*Identity, error) {
	switch MethodFromHeader(header) {
	case model.AuthMethodToken:
		userID, err := a.tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		user, err := a.users.GetUserByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return &Identity{User: user, Method: model.AuthMethodToken}, nil

	case model.AuthMethodBasic:
		email, password, ok := ParseBasic(header)
		if !ok {
			return nil, fmt.Errorf("%w: malformed basic credentials", ErrUnauthenticated)
		}
		user, err := a.CheckCredentials(ctx, email, password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return &Identity{User: user, Method: model.AuthMethodBasic}, nil
	}

	return nil, fmt.Errorf("%w: no supported credentials", ErrUnauthenticated)
}

// TokenSubject verifies a bearer header and returns the embedded user id
// without loading the user.
func (a *Authenticator) TokenSubject(header string) (int64, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return 0, fmt.Errorf("%w: bearer token required", ErrUnauthenticated)
	}
	userID, err := a.tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return userID, nil
}

// CheckCredentials looks up email exactly and verifies password against the
// stored hash. An unknown email or a wrong password yields
// ErrInvalidCredentials; lookup failures are returned as they are.
func (a *Authenticator) CheckCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	match, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// MethodFromHeader classifies an Authorization header by its scheme prefix.
func MethodFromHeader(header string) model.AuthMethod {
	switch {
	case strings.HasPrefix(header, bearerPrefix):
		return model.AuthMethodToken
	case strings.HasPrefix(header, basicPrefix):
		return model.AuthMethodBasic
	default:
		return model.AuthMethodNone
	}
}

// ParseBasic decodes "Basic base64(email:password)". The password may
// itself contain colons.
func ParseBasic(header string) (email, password string, ok bool) {
	if !strings.HasPrefix(header, basicPrefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, basicPrefix))
	if err != nil || !utf8.Valid(decoded) {
		return "", "", false
	}

	email, password, ok = strings.Cut(string(decoded), ":")
	return email, password, ok
}
