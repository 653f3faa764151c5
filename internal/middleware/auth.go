package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/twiese99/EmojiApp/internal/auth"
)

// RequireJWT is middleware that validates a bearer token, resolves its id
// claim to a user and injects that user as the request principal.
func RequireJWT(tokens *auth.JWTService, users auth.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "not authenticated")
				return
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			user, err := auth.ResolvePrincipal(r.Context(), users, id)
			if err != nil {
				log.Error().Err(err).Str("user_id", id).Msg("principal lookup failed")
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if user == nil {
				unauthorized(w, "unknown user")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), user)))
		})
	}
}

// LoadSession resolves the SESSION cookie to a user and stores it in the
// request context. Requests without a valid session pass through untouched.
func LoadSession(codec *auth.SessionCodec, users auth.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := codec.Get(r)
			if s == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.ResolvePrincipal(r.Context(), users, s.UserID)
			if err != nil {
				log.Error().Err(err).Str("user_id", s.UserID).Msg("session user lookup failed")
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSessionUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="`+auth.Realm+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
