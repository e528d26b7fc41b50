package apitest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// Secret signs every token the fake backend issues.
const Secret = "apitest-secret"

// Token mints a token shaped like the ones the backend issues on login.
func Token(t *testing.T, userID int64, exp time.Time) string {
	t.Helper()

	raw, err := sign(userID, exp)
	require.NoError(t, err)

	return raw
}

func sign(userID int64, exp time.Time) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     jwt.NewNumericDate(exp),
	}).SignedString([]byte(Secret))
}

// verify returns the user id of a valid, unexpired token.
func verify(raw string) (int64, bool) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		return []byte(Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, false
	}

	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}

	return int64(id), true
}
