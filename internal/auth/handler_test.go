package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/store"
)

func newLoginHandler(t *testing.T) (*Handler, *JWTService) {
	t.Helper()
	p := newPasswords(t)
	users := store.NewMemoryStore()
	hashed, err := p.Hash("hunter22")
	require.NoError(t, err)
	require.NoError(t, users.CreateUser(context.Background(), &models.User{ID: "alice", Email: "a@example.com", PasswordHash: hashed}))

	tokens := NewJWTService("jwt-secret", time.Hour)
	return NewHandler(users, p, tokens), tokens
}

func TestLogin_JSON_Success(t *testing.T) {
	h, tokens := newLoginHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"userId":"alice","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)
}

func TestLogin_Form_Success(t *testing.T) {
	h, _ := newLoginHandler(t)

	form := url.Values{"userId": {"alice"}, "password": {"hunter22"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)
}

func TestLogin_Failures(t *testing.T) {
	h, _ := newLoginHandler(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"userId":"alice","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"userId":"ghost","password":"hunter22"}`, http.StatusUnauthorized},
		{"missing fields", `{"userId":"alice"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), `"error"`)
			assert.NotContains(t, rec.Body.String(), `"token"`)
		})
	}
}
