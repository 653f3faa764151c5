// Package store holds the persistence backends for users and phrases.
package store

import (
	"context"
	"errors"

	"github.com/twiese99/EmojiApp/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Repository is the data-access contract every backend satisfies.
type Repository interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error

	Phrases(ctx context.Context, userID string) ([]models.Phrase, error)
	RecentPhrases(ctx context.Context, limit int) ([]models.Phrase, error)
	Phrase(ctx context.Context, id string) (*models.Phrase, error)
	AddPhrase(ctx context.Context, userID, emoji, text string) (*models.Phrase, error)
	RemovePhrase(ctx context.Context, userID, id string) error

	Close()
}
