package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiese99/EmojiApp/internal/security"
)

func newCodec(t *testing.T, key string) *SessionCodec {
	t.Helper()
	h, err := security.NewHasher([]byte(key))
	require.NoError(t, err)
	return NewSessionCodec(h.Hash)
}

func TestSessionCodec_RoundTrip(t *testing.T) {
	c := newCodec(t, "session-key")

	value, err := c.Encode(EPSession{UserID: "alice"})
	require.NoError(t, err)

	s, err := c.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.UserID)
}

func TestSessionCodec_RejectsTampering(t *testing.T) {
	c := newCodec(t, "session-key")
	value, err := c.Encode(EPSession{UserID: "alice"})
	require.NoError(t, err)

	forged, err := c.Encode(EPSession{UserID: "mallory"})
	require.NoError(t, err)
	forgedPayload, _, _ := strings.Cut(forged, "/")
	_, mac, _ := strings.Cut(value, "/")

	otherKey, err := newCodec(t, "other-key").Encode(EPSession{UserID: "alice"})
	require.NoError(t, err)

	for name, v := range map[string]string{
		"swapped payload":       forgedPayload + "/" + mac,
		"signed with other key": otherKey,
		"no separator":          strings.ReplaceAll(value, "/", ""),
		"empty":                 "",
		"mac only":              "/" + mac,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(v)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestSessionCodec_CookieLifecycle(t *testing.T) {
	c := newCodec(t, "session-key")

	rec := httptest.NewRecorder()
	require.NoError(t, c.Set(rec, EPSession{UserID: "alice"}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	s := c.Get(req)
	require.NotNil(t, s)
	assert.Equal(t, "alice", s.UserID)

	rec = httptest.NewRecorder()
	c.Clear(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	assert.Nil(t, c.Get(httptest.NewRequest(http.MethodGet, "/", nil)))
}
