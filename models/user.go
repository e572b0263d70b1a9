package models

import "strings"

const DefaultUserRole = "user"

// User represents an account. PasswordHash never leaves the server.
type User struct {
	Model
	Name         string `json:"name" gorm:"not null;size:100"`
	Email        string `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string `json:"-" gorm:"not null"`
	Role         string `json:"role" gorm:"not null;size:20"`
	AvatarURL    string `json:"avatarUrl"`
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
