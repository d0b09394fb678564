// Package devmode provides the development token scheme shared by the client
// and the development backend.
package devmode

import "strings"

// TokenPrefix marks a development bearer token. The authenticated user id
// follows the prefix. Never accept these tokens outside local development.
const TokenPrefix = "LOCAL_DEV_MODE_NOT_FOR_PRODUCTION."

// Token returns the development bearer token that authenticates as userID.
func Token(userID string) string {
	return TokenPrefix + userID
}

// UserIDFromToken returns the user id carried by a development token.
func UserIDFromToken(token string) (string, bool) {
	id, ok := strings.CutPrefix(token, TokenPrefix)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}
