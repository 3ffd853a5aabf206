package models

import "github.com/google/uuid"

// Identity represents the authenticated user as known to the account service
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Account represents a stored account row, including its password hash
type Account struct {
	Identity
	PasswordHash string `json:"-"` // Never serialize password hash
}
