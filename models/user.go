package models

import "time"

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleScorekeeper UserRole = "scorekeeper"
)

// User is a league account that may sign in and record penalties.
type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
