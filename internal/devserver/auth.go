package devserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/photostream/photostream/devmode"
	"github.com/photostream/photostream/internal/devserver/respond"
)

type ctxKey int

const userIDKey ctxKey = iota

// extractBearer extracts the token from an "Authorization: Bearer <token>"
// header.
func extractBearer(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid Authorization header format, expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// requireUser authenticates development tokens and stores the user id in the
// request context.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearer(r)
		if err != nil {
			respond.WriteUnauthorized(w, err.Error())
			return
		}
		userID, ok := devmode.UserIDFromToken(token)
		if !ok {
			respond.WriteUnauthorized(w, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// authUser returns the authenticated user id of r.
func authUser(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// actingUser resolves the user a request acts for: the body's userId when
// given, which must then match the authenticated user.
func actingUser(r *http.Request, bodyUserID string) (string, bool) {
	me := authUser(r)
	if bodyUserID != "" && bodyUserID != me {
		return "", false
	}
	return me, true
}
