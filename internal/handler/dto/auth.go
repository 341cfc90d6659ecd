package dto

import "github.com/apilab/apilab/internal/model"

// LoginRequest represents the request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries a freshly issued access token.
type LoginResponse struct {
	Token     string      `json:"token"`
	User      *model.User `json:"user"`
	ExpiresIn int64       `json:"expires_in"`
}

// UserResponse wraps the current user.
type UserResponse struct {
	User *model.User `json:"user"`
}
