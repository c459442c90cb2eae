package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	APIToken string
	Secret   []byte
	TTL      time.Duration
}

// ==========================
// Token (exchanges the shared API token for a short-lived JWT)
// ==========================
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		APIToken string `json:"api_token"`
	}

	if !decodeJSON(w, r, &input) {
		return
	}

	if input.APIToken == "" || subtle.ConstantTimeCompare([]byte(input.APIToken), []byte(h.APIToken)) != 1 {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	ttl := h.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	expires := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   "cli",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
	if err != nil {
		log.Error().Err(err).Msg("sign token failed")
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      signed,
		"expires_at": expires.UTC(),
	})
}
