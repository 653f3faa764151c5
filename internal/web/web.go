// Package web serves the HTML pages: home, about, phrases and the sign-in,
// sign-up and sign-out flows.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/twiese99/EmojiApp/internal/auth"
	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/routes"
	"github.com/twiese99/EmojiApp/internal/security"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"home", "about", "phrases", "signin", "signup"}

var funcs = template.FuncMap{
	"url":   routes.URL,
	"asset": routes.Asset,
}

// Store defines the persistence the pages need.
type Store interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	Phrases(ctx context.Context, userID string) ([]models.Phrase, error)
	RecentPhrases(ctx context.Context, limit int) ([]models.Phrase, error)
	AddPhrase(ctx context.Context, userID, emoji, text string) (*models.Phrase, error)
	RemovePhrase(ctx context.Context, userID, id string) error
}

// Handler holds the HTML route handlers. The session user is expected in
// the request context, put there by middleware.LoadSession.
type Handler struct {
	store     Store
	hash      security.HashFunc
	passwords *auth.Passwords
	sessions  *auth.SessionCodec
	templates map[string]*template.Template
	now       func() time.Time
}

func NewHandler(s Store, hash security.HashFunc, passwords *auth.Passwords, sessions *auth.SessionCodec) (*Handler, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := template.New(p).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+p+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", p, err)
		}
		templates[p] = t
	}
	return &Handler{
		store:     s,
		hash:      hash,
		passwords: passwords,
		sessions:  sessions,
		templates: templates,
		now:       time.Now,
	}, nil
}

// Routes mounts every page on r. credentials wrap the sign-in and sign-up
// form posts.
func (h *Handler) Routes(r chi.Router, credentials ...func(http.Handler) http.Handler) {
	r.Get(routes.Home, h.Home)
	r.Get(routes.About, h.About)
	r.Get(routes.Phrases, h.Phrases)
	r.Post(routes.Phrases, h.PhrasesAction)
	r.Get(routes.Signin, h.SigninForm)
	r.With(credentials...).Post(routes.Signin, h.Signin)
	r.Get(routes.Signup, h.SignupForm)
	r.With(credentials...).Post(routes.Signup, h.Signup)
	r.Post(routes.Signout, h.Signout)
}

// view is the data every template renders from.
type view struct {
	User    *models.User
	Error   string
	Phrases []models.Phrase
	Query   string
	Date    int64
	Code    string
	Form    models.SignupForm
}

func (h *Handler) render(w http.ResponseWriter, page string, v view) {
	var buf bytes.Buffer
	if err := h.templates[page].ExecuteTemplate(&buf, "layout", v); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}

func internalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("page handler failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// requestHost is the Host header without port.
func requestHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		return r.Host
	}
	return host
}

// refererHost is the host of the Referer header, or "" when absent.
func refererHost(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
