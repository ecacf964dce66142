package domain

import "time"

// User represents an account holder. Every expense belongs to exactly one user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
