package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/twiese99/EmojiApp/internal/security"
)

const SessionCookie = "SESSION"

var ErrInvalidSession = errors.New("invalid session")

// EPSession is the state carried in the SESSION cookie. It is signed, not
// encrypted: clients can read it but cannot alter it.
type EPSession struct {
	UserID string `json:"userId"`
}

// SessionCodec reads and writes EPSession cookies authenticated with a
// keyed digest appended after a '/' separator.
type SessionCodec struct {
	hash security.HashFunc
}

func NewSessionCodec(hash security.HashFunc) *SessionCodec {
	return &SessionCodec{hash: hash}
}

// Encode serializes s and appends its MAC.
func (c *SessionCodec) Encode(s EPSession) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "/" + c.hash(payload), nil
}

// Decode verifies the MAC of value and returns the session it carries.
func (c *SessionCodec) Decode(value string) (*EPSession, error) {
	payload, mac, ok := strings.Cut(value, "/")
	if !ok || payload == "" {
		return nil, ErrInvalidSession
	}
	if !security.Equal(c.hash(payload), mac) {
		return nil, ErrInvalidSession
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidSession
	}
	var s EPSession
	if err := json.Unmarshal(raw, &s); err != nil || s.UserID == "" {
		return nil, ErrInvalidSession
	}
	return &s, nil
}

// Get returns the session of r, or nil when the cookie is missing or
// fails verification.
func (c *SessionCodec) Get(r *http.Request) *EPSession {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	s, err := c.Decode(cookie.Value)
	if err != nil {
		return nil
	}
	return s
}

// Set writes s as the SESSION cookie.
func (c *SessionCodec) Set(w http.ResponseWriter, s EPSession) error {
	value, err := c.Encode(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the SESSION cookie.
func (c *SessionCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
