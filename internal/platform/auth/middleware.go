package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Claims carried by careflow access tokens. Subject holds the actor id.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Middleware validates a Bearer token signed with HS256 and resolves the
// Actor into both the echo context and the request context. Requests
// without a valid token are rejected with 401.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header must be a bearer token")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			actorID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}
			if !ValidRole(claims.Role) {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown role")
			}

			setActor(c, Actor{ID: actorID, Role: claims.Role})
			return next(c)
		}
	}
}

// DevMiddleware resolves the actor from X-Actor-ID and X-Actor-Role headers.
// Only wired when ENV=development; it lets local clients skip token minting.
func DevMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idHeader := c.Request().Header.Get("X-Actor-ID")
			role := c.Request().Header.Get("X-Actor-Role")
			if idHeader == "" || role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing X-Actor-ID or X-Actor-Role header")
			}

			actorID, err := strconv.ParseInt(idHeader, 10, 64)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "X-Actor-ID must be an integer")
			}
			if !ValidRole(role) {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown role")
			}

			setActor(c, Actor{ID: actorID, Role: role})
			return next(c)
		}
	}
}

// RequireRole allows the request through only when the actor holds one of
// the given roles. Admin passes every guard.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if actor.Role == RoleAdmin {
				return next(c)
			}
			for _, role := range roles {
				if actor.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

func setActor(c echo.Context, actor Actor) {
	c.Set("actor_id", actor.ID)
	c.Set("actor_role", actor.Role)
	c.SetRequest(c.Request().WithContext(WithActor(c.Request().Context(), actor)))
}
