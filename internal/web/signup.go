package web

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/twiese99/EmojiApp/internal/auth"
	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/routes"
	"github.com/twiese99/EmojiApp/internal/store"
)

const (
	minUserIDLength   = 4
	maxUserIDLength   = 20
	minPasswordLength = 6
)

var userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// SignupForm renders the sign-up page. Signed-in users go to their phrases.
func (h *Handler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if auth.SessionUser(r.Context()) != nil {
		redirect(w, r, routes.Href(routes.Phrases))
		return
	}
	h.render(w, "signup", view{})
}

// Signup creates the account, starts its session and sends the user to
// their phrases. Validation failures re-render the form.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := models.SignupForm{
		UserID:      strings.TrimSpace(r.PostFormValue("userId")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		DisplayName: strings.TrimSpace(r.PostFormValue("displayName")),
		Password:    r.PostFormValue("password"),
	}

	fail := func(msg string) {
		form.Password = ""
		h.render(w, "signup", view{Error: msg, Form: form})
	}

	if msg := validateSignup(form); msg != "" {
		fail(msg)
		return
	}

	_, err := h.store.UserByID(r.Context(), form.UserID)
	if err == nil {
		fail("User with the following login is already registered")
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		internalError(w, err)
		return
	}
	_, err = h.store.UserByEmail(r.Context(), form.Email)
	if err == nil {
		fail("User with the following email is already registered")
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		internalError(w, err)
		return
	}

	hash, err := h.passwords.Hash(form.Password)
	if err != nil {
		internalError(w, err)
		return
	}
	if form.DisplayName == "" {
		form.DisplayName = form.UserID
	}
	user := &models.User{
		ID:           form.UserID,
		Email:        form.Email,
		DisplayName:  form.DisplayName,
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			fail("User with the following login or email is already registered")
			return
		}
		internalError(w, err)
		return
	}

	if err := h.sessions.Set(w, auth.EPSession{UserID: user.ID}); err != nil {
		internalError(w, err)
		return
	}
	redirect(w, r, routes.Href(routes.Phrases))
}

// validateSignup returns a user-facing message for the first problem found,
// or "".
func validateSignup(f models.SignupForm) string {
	switch {
	case len(f.UserID) < minUserIDLength:
		return "User ID should be at least 4 characters long"
	case len(f.UserID) > maxUserIDLength:
		return "User ID should be at most 20 characters long"
	case !userIDPattern.MatchString(f.UserID):
		return "User ID should consist of digits, letters, dots or underscores"
	case f.Email == "" || !strings.Contains(f.Email, "@"):
		return "A valid email address is required"
	case len(f.Password) < minPasswordLength:
		return "Password should be at least 6 characters long"
	}
	return ""
}
