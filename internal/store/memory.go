package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twiese99/EmojiApp/internal/models"
)

// MemoryStore keeps users and phrases in process memory. Used for local
// development (DB_DRIVER=memory) and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]models.User
	phrases map[string]models.Phrase
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]models.User),
		phrases: make(map[string]models.Phrase),
		now:     time.Now,
	}
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return ErrAlreadyExists
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrAlreadyExists
		}
	}
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Phrases(_ context.Context, userID string) ([]models.Phrase, error) {
	return s.collect(func(p models.Phrase) bool { return p.UserID == userID }, 0), nil
}

func (s *MemoryStore) RecentPhrases(_ context.Context, limit int) ([]models.Phrase, error) {
	return s.collect(func(models.Phrase) bool { return true }, limit), nil
}

// collect returns matching phrases newest first, at most limit when limit > 0.
func (s *MemoryStore) collect(match func(models.Phrase) bool, limit int) []models.Phrase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Phrase, 0)
	for _, p := range s.phrases {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemoryStore) Phrase(_ context.Context, id string) (*models.Phrase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.phrases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) AddPhrase(_ context.Context, userID, emoji, text string) (*models.Phrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Phrase{
		ID:        uuid.NewString(),
		UserID:    userID,
		Emoji:     emoji,
		Phrase:    text,
		CreatedAt: s.now().UTC(),
	}
	s.phrases[p.ID] = p
	return &p, nil
}

func (s *MemoryStore) RemovePhrase(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.phrases[id]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	delete(s.phrases, id)
	return nil
}
