package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMiddleware(t *testing.T, header string, chain ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/assets", nil)
	if header != "" {
		req.Header.Set(headerAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := echo.HandlerFunc(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	})
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	require.NoError(t, h(c))
	return rec, c, called
}

func TestRequireJWT(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	m := NewMiddleware(svc)
	u := testUser(false)
	token, err := svc.Generate(u)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		rec, _, called := runMiddleware(t, "", m.RequireJWT())
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec, _, called := runMiddleware(t, "Basic "+token, m.RequireJWT())
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec, _, called := runMiddleware(t, "Bearer nope", m.RequireJWT())
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec, c, called := runMiddleware(t, "Bearer "+token, m.RequireJWT())
		assert.True(t, called)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		id, err := GetUserID(c)
		require.NoError(t, err)
		assert.Equal(t, u.ID, id)
		assert.False(t, IsAdmin(c))
	})
}

func TestRequireAdmin(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	m := NewMiddleware(svc)

	clientToken, err := svc.Generate(testUser(false))
	require.NoError(t, err)
	adminToken, err := svc.Generate(testUser(true))
	require.NoError(t, err)

	rec, _, called := runMiddleware(t, "Bearer "+clientToken, m.RequireJWT(), m.RequireAdmin())
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _, called = runMiddleware(t, "Bearer "+adminToken, m.RequireJWT(), m.RequireAdmin())
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetUserID_Missing(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := GetUserID(c)
	assert.Error(t, err)
}
