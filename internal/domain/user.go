package domain

import "time"

// User is the credential record for an account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Permissions  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
