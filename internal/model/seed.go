package model

// SeedUser describes a default account restored by seeding and reset.
type SeedUser struct {
	Email    string
	Password string
	Role     Role
}

// SeedTodo describes a default todo; the owner is resolved by email.
type SeedTodo struct {
	OwnerEmail  string
	Title       string
	Description string
	Completed   bool
}

// SeedResult reports how many records a seed or reset left behind.
type SeedResult struct {
	Users int `json:"users"`
	Todos int `json:"todos"`
}
