package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

func newCtx(t *testing.T, token string, useCookie bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		if useCookie {
			req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
		} else {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func token(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(id, role, time.Now().Add(time.Hour), secret)
	require.NoError(t, err)
	return tok
}

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestOptionalAuth_Guest(t *testing.T) {
	m := NewAuthenticator(secret)
	c, rec := newCtx(t, "", false)

	require.NoError(t, m.OptionalAuth(ok)(c))
	require.Equal(t, http.StatusOK, rec.Code)
	_, found := UserID(c)
	require.False(t, found)
}

func TestOptionalAuth_InvalidTokenIsGuest(t *testing.T) {
	m := NewAuthenticator(secret)
	c, _ := newCtx(t, "garbage", false)

	require.NoError(t, m.OptionalAuth(ok)(c))
	_, found := UserID(c)
	require.False(t, found)
}

func TestOptionalAuth_Identity(t *testing.T) {
	m := NewAuthenticator(secret)
	c, _ := newCtx(t, token(t, 5, RoleUser), true)

	require.NoError(t, m.OptionalAuth(ok)(c))
	id, found := UserID(c)
	require.True(t, found)
	require.Equal(t, uint(5), id)
	require.Equal(t, RoleUser, Role(c))
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthenticator(secret)

	c, _ := newCtx(t, "", false)
	err := m.RequireAuth(ok)(c)
	he, isHTTP := err.(*echo.HTTPError)
	require.True(t, isHTTP)
	require.Equal(t, http.StatusUnauthorized, he.Code)

	c, rec := newCtx(t, token(t, 3, RoleUser), false)
	require.NoError(t, m.RequireAuth(ok)(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthenticator(secret)

	c, _ := newCtx(t, token(t, 3, RoleUser), false)
	err := m.RequireAdmin(ok)(c)
	he, isHTTP := err.(*echo.HTTPError)
	require.True(t, isHTTP)
	require.Equal(t, http.StatusForbidden, he.Code)

	c, rec := newCtx(t, token(t, 1, RoleAdmin), true)
	require.NoError(t, m.RequireAdmin(ok)(c))
	require.Equal(t, http.StatusOK, rec.Code)
}
