package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twiese99/EmojiApp/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresStore handles user and phrase CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users and phrases tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            VARCHAR(20)  PRIMARY KEY,
			email         VARCHAR(128) UNIQUE NOT NULL,
			display_name  VARCHAR(256) NOT NULL,
			password_hash VARCHAR(64)  NOT NULL,
			created_at    TIMESTAMPTZ  DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS phrases (
			id         UUID         PRIMARY KEY,
			user_id    VARCHAR(20)  NOT NULL REFERENCES users(id),
			emoji      VARCHAR(255) NOT NULL,
			phrase     VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ  DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS phrases_user_id_idx ON phrases (user_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, display_name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("create user %q: %w", u.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE id = $1`, id,
	))
}

func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = $1`, email,
	))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) Phrases(ctx context.Context, userID string) ([]models.Phrase, error) {
	return s.queryPhrases(ctx,
		`SELECT id, user_id, emoji, phrase, created_at FROM phrases
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresStore) RecentPhrases(ctx context.Context, limit int) ([]models.Phrase, error) {
	return s.queryPhrases(ctx,
		`SELECT id, user_id, emoji, phrase, created_at FROM phrases
		 ORDER BY created_at DESC LIMIT $1`, limit)
}

func (s *PostgresStore) queryPhrases(ctx context.Context, sql string, args ...any) ([]models.Phrase, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	phrases, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Phrase, error) {
		var p models.Phrase
		err := row.Scan(&p.ID, &p.UserID, &p.Emoji, &p.Phrase, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	return phrases, nil
}

func (s *PostgresStore) Phrase(ctx context.Context, id string) (*models.Phrase, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var p models.Phrase
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, emoji, phrase, created_at FROM phrases WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.Emoji, &p.Phrase, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get phrase: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) AddPhrase(ctx context.Context, userID, emoji, text string) (*models.Phrase, error) {
	p := models.Phrase{
		ID:        uuid.NewString(),
		UserID:    userID,
		Emoji:     emoji,
		Phrase:    text,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO phrases (id, user_id, emoji, phrase, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.UserID, p.Emoji, p.Phrase, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add phrase: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) RemovePhrase(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM phrases WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("remove phrase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
