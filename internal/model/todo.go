package model

import (
	"strings"
	"time"
)

// MaxTitleLength is the maximum number of characters in a todo title.
const MaxTitleLength = 255

// Todo is a task owned by exactly one user.
// OwnerID is assigned at creation and never changes.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the todo belongs to the given user.
func (t *Todo) IsOwnedBy(userID int64) bool {
	return t.OwnerID == userID
}

// NormalizeTitle trims surrounding whitespace from a title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}
