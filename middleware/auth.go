package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthCookieName is the cookie the HTML login sets.
const AuthCookieName = "auth_token"

var ErrInvalidToken = errors.New("invalid or expired token")

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// ParseToken verifies an HS256 token and returns its claims.
func (a *Authenticator) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// tokenFromRequest берёт токен из заголовка Authorization, затем из cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(AuthCookieName); err == nil {
		return c.Value
	}
	return ""
}

func (a *Authenticator) withClaims(r *http.Request) (*http.Request, bool) {
	raw := tokenFromRequest(r)
	if raw == "" {
		return r, false
	}
	claims, err := a.ParseToken(raw)
	if err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("rejected auth token")
		return r, false
	}
	ctx := context.WithValue(r.Context(), userContextKey, claims)
	if userID, err := GetUserIDFromContext(ctx); err == nil {
		l := log.Ctx(ctx).With().Int("user_id", userID).Logger()
		ctx = l.WithContext(ctx)
	}
	return r.WithContext(ctx), true
}

// Optional attaches the user's claims to the context when a valid token is present.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, _ = a.withClaims(r)
		next.ServeHTTP(w, r)
	})
}

// Required rejects requests without a valid token with a JSON 401.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, ok := a.withClaims(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="mytournaments"`)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": ErrInvalidToken.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}
