package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/twiese99/EmojiApp/internal/auth"
	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/routes"
	"github.com/twiese99/EmojiApp/internal/security"
	"github.com/twiese99/EmojiApp/internal/store"
)

// Phrases lists the signed-in user's phrases, optionally filtered by ?q=.
// The page carries a security code its forms must post back.
func (h *Handler) Phrases(w http.ResponseWriter, r *http.Request) {
	user := auth.SessionUser(r.Context())
	if user == nil {
		redirect(w, r, routes.Href(routes.Signin))
		return
	}

	phrases, err := h.store.Phrases(r.Context(), user.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query != "" {
		phrases = filterPhrases(phrases, query)
	}

	// The forms post back from this page, so the referer of a genuine
	// submission is this host.
	host := requestHost(r)
	date := h.now().UnixMilli()
	h.render(w, "phrases", view{
		User:    user,
		Phrases: phrases,
		Query:   query,
		Date:    date,
		Code:    security.Code(h.hash, date, user.ID, host, host),
	})
}

// PhrasesAction handles the add and delete forms of the phrases page.
func (h *Handler) PhrasesAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := strconv.ParseInt(r.PostFormValue("date"), 10, 64)
	if err != nil {
		redirect(w, r, routes.Href(routes.Phrases))
		return
	}
	code := r.PostFormValue("code")
	if code == "" {
		redirect(w, r, routes.Href(routes.Phrases))
		return
	}

	user := auth.SessionUser(r.Context())
	if user == nil || !security.VerifyCode(h.hash, h.now(), date, user.ID, requestHost(r), refererHost(r), code) {
		redirect(w, r, routes.Href(routes.Signin))
		return
	}

	// Actions return to the list as it was filtered.
	back := routes.Href(routes.Phrases, "q", strings.TrimSpace(r.PostFormValue("q")))

	switch action := r.PostFormValue("action"); action {
	case "delete":
		id := r.PostFormValue("id")
		if id == "" {
			http.Error(w, "Missing parameter: id", http.StatusBadRequest)
			return
		}
		if err := h.store.RemovePhrase(r.Context(), user.ID, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			internalError(w, err)
			return
		}
	case "add":
		emoji := strings.TrimSpace(r.PostFormValue("emoji"))
		text := strings.TrimSpace(r.PostFormValue("phrase"))
		if emoji == "" || text == "" {
			http.Error(w, "Missing parameter: emoji and phrase are required", http.StatusBadRequest)
			return
		}
		if _, err := h.store.AddPhrase(r.Context(), user.ID, emoji, text); err != nil {
			internalError(w, err)
			return
		}
	case "":
		http.Error(w, "Missing parameter: action", http.StatusBadRequest)
		return
	default:
		http.Error(w, "Unknown action: "+action, http.StatusBadRequest)
		return
	}

	redirect(w, r, back)
}

func filterPhrases(phrases []models.Phrase, query string) []models.Phrase {
	q := strings.ToLower(query)
	out := make([]models.Phrase, 0, len(phrases))
	for _, p := range phrases {
		if strings.Contains(strings.ToLower(p.Phrase), q) || strings.Contains(p.Emoji, query) {
			out = append(out, p)
		}
	}
	return out
}
