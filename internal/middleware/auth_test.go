package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiese99/EmojiApp/internal/auth"
	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/security"
	"github.com/twiese99/EmojiApp/internal/store"
)

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := auth.Principal(r.Context()); u != nil {
			w.Write([]byte("principal:" + u.ID))
			return
		}
		if u := auth.SessionUser(r.Context()); u != nil {
			w.Write([]byte("session:" + u.ID))
			return
		}
		w.Write([]byte("anonymous"))
	})
}

func newUsers(t *testing.T) *store.MemoryStore {
	t.Helper()
	users := store.NewMemoryStore()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{ID: "alice", Email: "a@example.com"}))
	return users
}

func TestRequireJWT(t *testing.T) {
	users := newUsers(t)
	tokens := auth.NewJWTService("jwt-secret", time.Hour)
	h := RequireJWT(tokens, users)(principalEcho())

	valid, err := tokens.Issue(&models.User{ID: "alice"})
	require.NoError(t, err)
	ghost, err := tokens.Issue(&models.User{ID: "ghost"})
	require.NoError(t, err)
	foreign, err := auth.NewJWTService("other-secret", time.Hour).Issue(&models.User{ID: "alice"})
	require.NoError(t, err)
	expired, err := auth.NewJWTService("jwt-secret", -time.Minute).Issue(&models.User{ID: "alice"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, "principal:alice"},
		{"no header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, ""},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized, ""},
		{"bad signature", "Bearer " + foreign, http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/phrases", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="emojiapp"`, rec.Header().Get("WWW-Authenticate"))
				assert.Contains(t, rec.Body.String(), `"error"`)
				assert.NotContains(t, rec.Body.String(), "principal:")
				return
			}
			assert.Equal(t, tc.body, rec.Body.String())
		})
	}
}

func TestLoadSession(t *testing.T) {
	users := newUsers(t)
	h, err := security.NewHasher([]byte("session-key"))
	require.NoError(t, err)
	codec := auth.NewSessionCodec(h.Hash)
	handler := LoadSession(codec, users)(principalEcho())

	cookieFor := func(c *auth.SessionCodec, id string) *http.Cookie {
		v, err := c.Encode(auth.EPSession{UserID: id})
		require.NoError(t, err)
		return &http.Cookie{Name: auth.SessionCookie, Value: v}
	}
	other, err := security.NewHasher([]byte("other-key"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   string
	}{
		{"valid", cookieFor(codec, "alice"), "session:alice"},
		{"none", nil, "anonymous"},
		{"bad mac", cookieFor(auth.NewSessionCodec(other.Hash), "alice"), "anonymous"},
		{"deleted user", cookieFor(codec, "ghost"), "anonymous"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, rec.Body.String())
		})
	}
}
