package domain

import "time"

type User struct {
	ID           string
	Firstname    string
	Lastname     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}

type LoginAttempt struct {
	ID          string
	Email       string
	IPAddress   string
	AttemptTime time.Time
	Successful  bool
}
