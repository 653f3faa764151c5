package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/twiese99/EmojiApp/internal/auth"
	"github.com/twiese99/EmojiApp/internal/middleware"
	"github.com/twiese99/EmojiApp/internal/models"
	"github.com/twiese99/EmojiApp/internal/security"
	"github.com/twiese99/EmojiApp/internal/store"
)

type app struct {
	handler http.Handler
	repo    *store.MemoryStore
	tokens  *auth.JWTService
}

func newApp(t *testing.T) *app {
	t.Helper()
	return newAppWithRepo(t, store.NewMemoryStore())
}

func newAppWithRepo(t *testing.T, repo store.Repository, opts ...func(*Deps)) *app {
	t.Helper()
	hasher, err := security.NewHasherFromHex("6819b57a326945c1968f45236589")
	require.NoError(t, err)
	tokens := auth.NewJWTService("jwt-secret", time.Hour)

	deps := Deps{
		Repo:       repo,
		Hasher:     hasher,
		Tokens:     tokens,
		BcryptCost: bcrypt.MinCost,
		Logger:     zerolog.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h, err := NewRouter(deps)
	require.NoError(t, err)

	mem, _ := repo.(*store.MemoryStore)
	return &app{handler: h, repo: mem, tokens: tokens}
}

func (a *app) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func form(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.SessionCookie)
	return nil
}

func (a *app) signup(t *testing.T, id, password string) *http.Cookie {
	t.Helper()
	rec := a.do(form("/signup", url.Values{
		"userId": {id}, "email": {id + "@example.com"}, "displayName": {strings.ToUpper(id)}, "password": {password},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	return sessionCookie(t, rec)
}

func TestSignupCreatesOneUserAndSession(t *testing.T) {
	a := newApp(t)

	cookie := a.signup(t, "alice", "hunter22")

	u, err := a.repo.UserByID(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "ALICE", u.DisplayName)
	_, err = a.repo.UserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)

	rec := a.do(httptest.NewRequest(http.MethodGet, "/phrases", nil), cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALICE&#39;s phrases")

	// A second signup with the same id must not create another user.
	rec = a.do(form("/signup", url.Values{
		"userId": {"alice"}, "email": {"other@example.com"}, "password": {"hunter22"},
	}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSigninSessionIsAcceptedByPhrases(t *testing.T) {
	a := newApp(t)
	a.signup(t, "alice", "hunter22")

	rec := a.do(form("/signin", url.Values{"userId": {"alice"}, "password": {"hunter22"}}))
	require.Equal(t, http.StatusFound, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = a.do(httptest.NewRequest(http.MethodGet, "/phrases", nil), cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(form("/signin", url.Values{"userId": {"alice"}, "password": {"wrong!"}}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
	assert.Empty(t, rec.Result().Cookies())
}

func TestTamperedSessionIsNotAuthenticated(t *testing.T) {
	a := newApp(t)
	cookie := a.signup(t, "alice", "hunter22")

	payload, mac, ok := strings.Cut(cookie.Value, "/")
	require.True(t, ok)
	flipped := []byte(mac)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}

	for name, value := range map[string]string{
		"altered mac": payload + "/" + string(flipped),
		"no mac":      payload,
	} {
		t.Run(name, func(t *testing.T) {
			rec := a.do(httptest.NewRequest(http.MethodGet, "/phrases", nil),
				&http.Cookie{Name: auth.SessionCookie, Value: value})
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/signin", rec.Header().Get("Location"))
		})
	}
}

func TestSignoutEndsSession(t *testing.T) {
	a := newApp(t)
	cookie := a.signup(t, "alice", "hunter22")

	rec := a.do(httptest.NewRequest(http.MethodPost, "/signout", nil), cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)
}

func apiLogin(t *testing.T, a *app, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func TestAPILogin(t *testing.T) {
	a := newApp(t)
	a.signup(t, "alice", "hunter22")

	rec := apiLogin(t, a, `{"userId":"alice","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp auth.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, err := a.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	rec = apiLogin(t, a, `{"userId":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestAPIPhrasesRequireToken(t *testing.T) {
	a := newApp(t)
	a.signup(t, "alice", "hunter22")
	_, err := a.repo.AddPhrase(context.Background(), "alice", "😀", "smile")
	require.NoError(t, err)

	rec := a.do(httptest.NewRequest(http.MethodGet, "/api/v1/phrases", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var login auth.TokenResponse
	require.NoError(t, json.Unmarshal(apiLogin(t, a, `{"userId":"alice","password":"hunter22"}`).Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/phrases", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = a.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Phrase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "smile", list[0].Phrase)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/phrases", strings.NewReader(`{"emoji":"🐱","phrase":"cat"}`))
	req.Header.Set("Authorization", "Bearer "+login.Token)
	req.Header.Set("Content-Type", "application/json")
	rec = a.do(req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAPITokenForUnknownUser(t *testing.T) {
	a := newApp(t)
	token, err := a.tokens.Issue(&models.User{ID: "ghost"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/phrases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := a.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAmbientRoutes(t *testing.T) {
	a := newApp(t)

	rec := a.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EmojiApp", rec.Header().Get("Server"))

	rec = a.do(httptest.NewRequest(http.MethodGet, "/static/emoji.svg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(httptest.NewRequest(http.MethodGet, "/about", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "emojiapp_http_requests_total")
}

func TestCredentialEndpointsAreThrottled(t *testing.T) {
	a := newAppWithRepo(t, store.NewMemoryStore(), func(d *Deps) {
		d.Limiter = middleware.NewRateLimiter(1, 2)
	})

	wrong := url.Values{"userId": {"alice"}, "password": {"guess!"}}
	assert.Equal(t, http.StatusOK, a.do(form("/signin", wrong)).Code)
	assert.Equal(t, http.StatusOK, a.do(form("/signin", wrong)).Code)

	rec := a.do(form("/signin", wrong))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// The API login shares the client's budget and answers in JSON.
	rec = apiLogin(t, a, `{"userId":"alice","password":"guess!"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	// Reading pages is never throttled.
	assert.Equal(t, http.StatusOK, a.do(httptest.NewRequest(http.MethodGet, "/signin", nil)).Code)
}

func TestThrottleKeysOnSocketPeer(t *testing.T) {
	a := newAppWithRepo(t, store.NewMemoryStore(), func(d *Deps) {
		d.Limiter = middleware.NewRateLimiter(1, 2)
	})

	throttled := 0
	for i := 0; i < 50; i++ {
		req := form("/signin", url.Values{"userId": {"alice"}, "password": {"guess!"}})
		req.RemoteAddr = "198.51.100.7:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		if a.do(req).Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.Equal(t, 48, throttled)
}

func TestAPIPreflight(t *testing.T) {
	a := newAppWithRepo(t, store.NewMemoryStore(), func(d *Deps) {
		d.CORSOrigins = []string{"https://app.example.com"}
	})

	for _, path := range []string{"/api/v1/login", "/api/v1/phrases"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", "https://app.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := a.do(req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

type downRepo struct{ *store.MemoryStore }

func (downRepo) RecentPhrases(context.Context, int) ([]models.Phrase, error) {
	return nil, errors.New("database unavailable")
}

func TestDataAccessFailureIs500WithMessage(t *testing.T) {
	a := newAppWithRepo(t, downRepo{store.NewMemoryStore()})

	rec := a.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "database unavailable\n", rec.Body.String())
}
