package web

import (
	"errors"
	"net/http"

	"github.com/twiese99/EmojiApp/internal/auth"
	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/routes"
)

// SigninForm renders the sign-in page. Signed-in users go to their phrases.
func (h *Handler) SigninForm(w http.ResponseWriter, r *http.Request) {
	if auth.SessionUser(r.Context()) != nil {
		redirect(w, r, routes.Href(routes.Phrases))
		return
	}
	h.render(w, "signin", view{})
}

// Signin checks the posted credentials and starts a session.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userID := r.PostFormValue("userId")
	password := r.PostFormValue("password")

	user, err := h.passwords.Authenticate(r.Context(), h.store, userID, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.render(w, "signin", view{
			Error: "Invalid username or password",
			Form:  models.SignupForm{UserID: userID},
		})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if err := h.sessions.Set(w, auth.EPSession{UserID: user.ID}); err != nil {
		internalError(w, err)
		return
	}
	redirect(w, r, routes.Href(routes.Phrases))
}

// Signout ends the session.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	redirect(w, r, routes.Href(routes.Home))
}
