package web

import (
	"net/http"

	"github.com/twiese99/EmojiApp/internal/auth"
)

const homeSampleSize = 5

// Home renders the landing page with a sample of recent phrases.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	recent, err := h.store.RecentPhrases(r.Context(), homeSampleSize)
	if err != nil {
		internalError(w, err)
		return
	}
	h.render(w, "home", view{User: auth.SessionUser(r.Context()), Phrases: recent})
}

// About renders the about page.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, "about", view{User: auth.SessionUser(r.Context())})
}
