package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseAccessToken проверяет выпуск и разбор токена.
func TestParseAccessToken(t *testing.T) {
	verifier := NewTokenVerifier("secret", "event-planner")
	userID := uuid.New()

	token, expiresAt, err := verifier.IssueAccessToken(userID, time.Minute)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := verifier.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

// TestParseAccessTokenRejects проверяет отказ для чужого секрета, издателя и истекшего токена.
func TestParseAccessTokenRejects(t *testing.T) {
	verifier := NewTokenVerifier("secret", "event-planner")
	userID := uuid.New()

	foreign, _, err := NewTokenVerifier("other", "event-planner").IssueAccessToken(userID, time.Minute)
	require.NoError(t, err)
	_, err = verifier.ParseAccessToken(foreign)
	assert.Error(t, err)

	otherIssuer, _, err := NewTokenVerifier("secret", "someone-else").IssueAccessToken(userID, time.Minute)
	require.NoError(t, err)
	_, err = verifier.ParseAccessToken(otherIssuer)
	assert.Error(t, err)

	past := NewTokenVerifier("secret", "event-planner")
	past.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := past.IssueAccessToken(userID, time.Minute)
	require.NoError(t, err)
	_, err = verifier.ParseAccessToken(expired)
	assert.Error(t, err)
}

// TestJWTMiddleware проверяет, что middleware кладет user_id и токен в контекст.
func TestJWTMiddleware(t *testing.T) {
	verifier := NewTokenVerifier("secret", "event-planner")
	userID := uuid.New()
	token, _, err := verifier.IssueAccessToken(userID, time.Minute)
	require.NoError(t, err)

	e := echo.New()
	handler := JWTMiddleware(verifier)(func(c echo.Context) error {
		gotUser, ok := UserIDFromContext(c)
		require.True(t, ok)
		assert.Equal(t, userID, gotUser)

		gotToken, ok := TokenFromContext(c)
		require.True(t, ok)
		assert.Equal(t, token, gotToken)
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer broken"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		err := handler(e.NewContext(req, httptest.NewRecorder()))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, header)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	}
}
