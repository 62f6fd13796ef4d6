package domain

import "time"

// Task is a unit of work owned by a single user.
type Task struct {
	ID        string
	Name      string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
