package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/twiese99/EmojiApp/internal/models"
)

// Cache is the byte cache CachedRepository stores phrase lists in.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// CachedRepository caches per-user phrase lists in front of another
// Repository. Entries are keyed by a per-user version that every write
// bumps, so a list read before a write is never served after it. Cache
// errors never fail a request; they are logged and the backend is used
// directly.
type CachedRepository struct {
	Repository
	cache Cache
	ttl   time.Duration
}

func NewCachedRepository(repo Repository, cache Cache, ttl time.Duration) *CachedRepository {
	return &CachedRepository{Repository: repo, cache: cache, ttl: ttl}
}

func versionKey(userID string) string {
	return "phrases-version:" + userID
}

func phrasesKey(userID, version string) string {
	return "phrases:" + userID + ":" + version
}

// version returns the current list version of userID, "0" before the first
// write.
func (r *CachedRepository) version(ctx context.Context, userID string) (string, error) {
	raw, ok, err := r.cache.Get(ctx, versionKey(userID))
	if err != nil {
		return "", err
	}
	if !ok {
		return "0", nil
	}
	return string(raw), nil
}

func (r *CachedRepository) Phrases(ctx context.Context, userID string) ([]models.Phrase, error) {
	version, err := r.version(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("phrase cache version failed")
		return r.Repository.Phrases(ctx, userID)
	}

	key := phrasesKey(userID, version)
	if raw, ok, err := r.cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("phrase cache get failed")
	} else if ok {
		var phrases []models.Phrase
		if err := json.Unmarshal(raw, &phrases); err == nil {
			return phrases, nil
		}
		log.Warn().Str("key", key).Msg("phrase cache entry corrupt")
	}

	phrases, err := r.Repository.Phrases(ctx, userID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(phrases); err == nil {
		if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("phrase cache set failed")
		}
	}
	return phrases, nil
}

func (r *CachedRepository) AddPhrase(ctx context.Context, userID, emoji, text string) (*models.Phrase, error) {
	p, err := r.Repository.AddPhrase(ctx, userID, emoji, text)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, userID)
	return p, nil
}

func (r *CachedRepository) RemovePhrase(ctx context.Context, userID, id string) error {
	if err := r.Repository.RemovePhrase(ctx, userID, id); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedRepository) invalidate(ctx context.Context, userID string) {
	key := versionKey(userID)
	if _, err := r.cache.Incr(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("phrase cache invalidate failed")
	}
}
