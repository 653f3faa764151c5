package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/security"
	"github.com/twiese99/EmojiApp/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Passwords hashes credentials with the keyed digest first and bcrypt on top.
type Passwords struct {
	hash security.HashFunc
	cost int
}

func NewPasswords(hash security.HashFunc, cost int) *Passwords {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Passwords{hash: hash, cost: cost}
}

func (p *Passwords) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(p.hash(password)), p.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (p *Passwords) Check(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(p.hash(password))) == nil
}

// Authenticate looks up userID and checks password against the stored hash.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (p *Passwords) Authenticate(ctx context.Context, users UserStore, userID, password string) (*models.User, error) {
	u, err := users.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !p.Check(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
