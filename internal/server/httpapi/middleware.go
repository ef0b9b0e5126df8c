package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/server/auth"
)

const claimsKey = "claims"

// authenticate verifies the bearer token and stores its claims on the
// context. Without a configured secret every request is refused as not
// configured.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(s.jwtSecret) == 0 {
			return s.fail(c, "", common.ErrNotConfigured)
		}

		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return s.fail(c, "", common.ErrMissingToken)
		}

		claims, err := auth.ParseToken(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			return s.fail(c, "", err)
		}

		c.Set(claimsKey, claims)
		return next(c)
	}
}

func claimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

func userID(c echo.Context) string {
	if claims := claimsFrom(c); claims != nil {
		return claims.UserID()
	}
	return ""
}
