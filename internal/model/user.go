package model

import "time"

// Role is a stored account role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account that owns expenses.
type User struct {
	ID        string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Settings holds per-user display preferences.
type Settings struct {
	UserID    string
	Theme     string // "light" or "dark"
	Language  string // "en" or "hi"
	UpdatedAt time.Time
}

// DefaultSettings returns the settings a new account starts with.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:   userID,
		Theme:    "light",
		Language: "en",
	}
}

// ValidThemes and ValidLanguages enumerate accepted settings values.
var (
	ValidThemes    = []string{"light", "dark"}
	ValidLanguages = []string{"en", "hi"}
)
