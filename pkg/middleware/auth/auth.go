package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	AccessCookie = "accessToken"

	RoleAdmin = "admin"
	RoleUser  = "user"

	ctxUserID = "user_id"
	ctxRole   = "role"
)

type Authenticator struct {
	JWTSecret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

// Authenticate resolves the caller identity from the request. It returns
// nil claims when no token is present.
func (m *Authenticator) Authenticate(c echo.Context) (*tokens.AccessClaims, error) {
	raw := bearerToken(c)
	if raw == "" {
		return nil, nil
	}
	claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// OptionalAuth attaches the caller identity when a valid token is sent and
// lets anonymous or invalid-token requests through as guests.
func (m *Authenticator) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.Authenticate(c)
		if err == nil && claims != nil {
			setUserContext(c, claims)
		}
		return next(c)
	}
}

func (m *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *Authenticator) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *Authenticator) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.Authenticate(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		if claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}
		if validator != nil {
			if verr := validator(claims); verr != nil {
				return verr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

// UserID returns the authenticated user id set by one of the middlewares.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok && id != 0
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}

func bearerToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if v, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(v)
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	id, err := claims.UserID()
	if err != nil {
		return
	}
	c.Set(ctxUserID, id)
	c.Set(ctxRole, claims.Role)
}
