package models

import "time"

// User represents a registered account. ID is the login chosen at sign-up.
type User struct {
	ID           string    `json:"userId"       bson:"_id"`
	Email        string    `json:"email"        bson:"email"`
	DisplayName  string    `json:"displayName"  bson:"display_name"`
	PasswordHash string    `json:"-"            bson:"password_hash"` // never serialize
	CreatedAt    time.Time `json:"created_at"   bson:"created_at"`
}

// LoginRequest is the body for POST /api/v1/login.
type LoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// SignupForm carries the fields posted to /signup.
type SignupForm struct {
	UserID      string
	Email       string
	DisplayName string
	Password    string
}
