package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	BirthYear    int       `json:"birth_year"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
