package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

// Auth validates bearer tokens signed with a local shared secret (HS256).
// An empty secret disables authentication entirely, which is the expected
// setup when the API only listens on localhost.
type Auth struct {
	secret []byte
	parser *jwt.Parser
}

// NewAuth creates a new Auth instance.
func NewAuth(secret string) *Auth {
	a := &Auth{}
	if secret != "" {
		a.secret = []byte(secret)
		a.parser = jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	}
	return a
}

// UserFromAuthHeader extracts the user identifier from the Authorization
// header. In open mode every request maps to the single local user.
func (a *Auth) UserFromAuthHeader(header string) (string, error) {
	if a.secret == nil {
		return "local", nil
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingAuthorization
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errBadAuthorization
	}

	parsed, err := a.parser.Parse(strings.TrimSpace(header[len(prefix):]), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return "", errors.New("token expired")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}

func requireAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := auth.UserFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return c.String(http.StatusUnauthorized, err.Error())
			}
			c.Set("user", user)
			return next(c)
		}
	}
}
