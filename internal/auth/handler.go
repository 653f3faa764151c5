package auth

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/twiese99/EmojiApp/internal/models"
)

// Handler serves the token login endpoint of the JSON API.
type Handler struct {
	users     UserStore
	passwords *Passwords
	tokens    *JWTService
}

func NewHandler(users UserStore, passwords *Passwords, tokens *JWTService) *Handler {
	return &Handler{users: users, passwords: passwords, tokens: tokens}
}

// TokenResponse is the body returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// Login checks credentials posted as JSON or as a form and returns a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.UserID == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId and password are required"})
		return
	}

	user, err := h.passwords.Authenticate(r.Context(), h.users, req.UserID, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("api login lookup failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func decodeLogin(r *http.Request) (models.LoginRequest, error) {
	var req models.LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.UserID = r.PostFormValue("userId")
	req.Password = r.PostFormValue("password")
	return req, nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
