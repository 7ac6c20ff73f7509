package middleware

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"recruitflow/internal/auth"
	"recruitflow/internal/errors"
	"recruitflow/internal/model"
)

// TokenLookup reads the bearer header first and falls back to the session cookie.
const TokenLookup = "header:Authorization:Bearer ,cookie:" + auth.CookieName

const contextKeyToken = "user"

// SessionValidator confirms that a token still belongs to a usable session.
type SessionValidator interface {
	ValidateSession(ctx context.Context, claims *auth.Claims) error
}

// JWT parses and verifies the token into *auth.Claims. Any failure is a 401.
func JWT(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: echojwt.AlgorithmHS256,
		ContextKey:    contextKeyToken,
		TokenLookup:   TokenLookup,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errors.ErrUnauthorized
		},
	})
}

// ClaimsFrom returns the claims stored by JWT.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	token, ok := c.Get(contextKeyToken).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*auth.Claims)
	return claims, ok
}

// RequireActive rejects refresh tokens, revoked tokens and users that are no longer active.
func RequireActive(sessions SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok || !claims.IsAccess() {
				return errors.ErrUnauthorized
			}
			if err := sessions.ValidateSession(c.Request().Context(), claims); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireRoles allows the request through only for the given roles.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return errors.ErrUnauthorized
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return errors.ErrForbidden
		}
	}
}
