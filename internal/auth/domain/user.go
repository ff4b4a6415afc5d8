package domain

import "time"

type User struct {
	ID           string
	FirstName    string
	Email        string // trimmed, lower-cased, unique
	PasswordHash string // argon2id PHC string or legacy bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
