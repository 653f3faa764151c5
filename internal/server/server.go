// Package server assembles the middleware stack and route table.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/twiese99/EmojiApp/internal/auth"
	"github.com/twiese99/EmojiApp/internal/logging"
	"github.com/twiese99/EmojiApp/internal/middleware"
	"github.com/twiese99/EmojiApp/internal/phrases"
	"github.com/twiese99/EmojiApp/internal/routes"
	"github.com/twiese99/EmojiApp/internal/security"
	"github.com/twiese99/EmojiApp/internal/static"
	"github.com/twiese99/EmojiApp/internal/store"
	"github.com/twiese99/EmojiApp/internal/web"
)

// Deps are the collaborators the application is wired from.
type Deps struct {
	Repo        store.Repository
	Assets      static.Source // nil serves the embedded images
	Hasher      *security.Hasher
	Tokens      *auth.JWTService
	BcryptCost  int
	CORSOrigins []string
	Logger      zerolog.Logger
	Metrics     *middleware.Metrics
	Limiter     *middleware.RateLimiter // nil disables credential throttling
}

// NewRouter builds the application handler.
func NewRouter(d Deps) (http.Handler, error) {
	if d.Metrics == nil {
		d.Metrics = middleware.NewMetrics()
	}
	var guard []func(http.Handler) http.Handler
	if d.Limiter != nil {
		guard = append(guard, d.Limiter.Handler)
	}
	sessions := auth.NewSessionCodec(d.Hasher.Hash)
	passwords := auth.NewPasswords(d.Hasher.Hash, d.BcryptCost)

	pages, err := web.NewHandler(d.Repo, d.Hasher.Hash, passwords, sessions)
	if err != nil {
		return nil, fmt.Errorf("web handler: %w", err)
	}
	authHandler := auth.NewHandler(d.Repo, passwords, d.Tokens)
	phrasesHandler := phrases.NewHandler(d.Repo)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RecordPeer)
	r.Use(chimw.RealIP)
	r.Use(chimw.SetHeader("Server", "EmojiApp"))
	r.Use(middleware.Recoverer)
	r.Use(logging.RequestLogger(d.Logger))
	r.Use(d.Metrics.Instrument)

	r.Get(routes.Health, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle(routes.Metrics, d.Metrics.Handler())
	r.Handle(routes.Static+"/*", http.StripPrefix(routes.Static, static.Handler(d.Assets)))

	// HTML pages (cookie session)
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessions, d.Repo))
		pages.Routes(r, guard...)
	})

	// JSON API (bearer token)
	apiCORS := cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	})
	r.Group(func(r chi.Router) {
		r.Use(apiCORS)
		r.With(guard...).Post(routes.Login, authHandler.Login)
		r.Route(routes.PhrasesAPI, func(r chi.Router) {
			r.Use(middleware.RequireJWT(d.Tokens, d.Repo))
			phrasesHandler.Routes(r)
		})
	})
	// Login registers POST only; its preflight lands here.
	r.Options(routes.APIVersion+"/*", apiCORS(http.NotFoundHandler()).ServeHTTP)

	return r, nil
}
