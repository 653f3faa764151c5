// Package phrases serves the JWT-protected JSON API over a user's phrases.
package phrases

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/twiese99/EmojiApp/internal/auth"
	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/store"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Store defines the phrase persistence the API needs.
type Store interface {
	Phrases(ctx context.Context, userID string) ([]models.Phrase, error)
	Phrase(ctx context.Context, id string) (*models.Phrase, error)
	AddPhrase(ctx context.Context, userID, emoji, text string) (*models.Phrase, error)
	RemovePhrase(ctx context.Context, userID, id string) error
}

// Handler holds phrase API handlers. Every route expects a principal set by
// middleware.RequireJWT.
type Handler struct {
	store Store
}

func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

// Routes mounts the handlers on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
}

// List returns all phrases of the current user.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.Principal(r.Context())
	phrases, err := h.store.Phrases(r.Context(), user.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	if phrases == nil {
		phrases = []models.Phrase{}
	}
	writeJSON(w, http.StatusOK, phrases)
}

// Create adds a phrase for the current user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.Principal(r.Context())

	var req models.PhraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data received")
		return
	}
	req.Emoji = strings.TrimSpace(req.Emoji)
	req.Phrase = strings.TrimSpace(req.Phrase)
	if req.Emoji == "" || req.Phrase == "" {
		writeError(w, http.StatusBadRequest, "emoji and phrase are required")
		return
	}

	phrase, err := h.store.AddPhrase(r.Context(), user.ID, req.Emoji, req.Phrase)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, phrase)
}

// Get returns one phrase owned by the current user.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.Principal(r.Context())
	phrase, err := h.store.Phrase(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && phrase.UserID != user.ID) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phrase)
}

// Delete removes one phrase owned by the current user.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.Principal(r.Context())
	err := h.store.RemovePhrase(r.Context(), user.ID, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func internalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("phrases api")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
