// Package middleware holds the HTTP middleware shared by the local API and
// the spreadsheet endpoint server.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/atinyakov/utm-manager/internal/app/service"
)

// ContextKey is a custom type used for keys in the context.
type ContextKey string

// UserIDKey is the context key holding the resolved owner id.
const UserIDKey ContextKey = "userID"

// TokenCookie is the cookie carrying the owner JWT.
const TokenCookie = "token"

// InjectUserID adds the owner id to the request context.
func InjectUserID(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	return req.WithContext(ctx)
}

// UserID returns the owner id stored by WithJWT.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// WithJWT resolves the owner of a request. A bearer token wins over the
// token cookie; an invalid token is rejected with 401. Without any token
// the owner is fallback(), or a freshly issued token when fallback is nil.
func WithJWT(auth service.AuthIface, fallback func() string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := bearer(r); ok {
				claims, err := auth.ParseRawJWT(raw)
				if err != nil {
					http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, InjectUserID(r, claims.UserID))
				return
			}

			if cookie, err := r.Cookie(TokenCookie); err == nil {
				claims, err := auth.ParseClaims(cookie)
				if err != nil {
					http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, InjectUserID(r, claims.UserID))
				return
			}

			if fallback != nil {
				next.ServeHTTP(w, InjectUserID(r, fallback()))
				return
			}

			tokenString, userID, err := auth.BuildJWTString("")
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     TokenCookie,
				Value:    tokenString,
				Expires:  time.Now().Add(service.TokenExp),
				HttpOnly: true,
				Path:     "/",
			})

			next.ServeHTTP(w, InjectUserID(r, userID))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[7:])
	return token, token != ""
}
