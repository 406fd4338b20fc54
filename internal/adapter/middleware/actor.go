package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"farm-loan-ledger/internal/domain/actor"
)

const (
	HeaderActorID   = "Ax-Actor-Id"
	HeaderActorRole = "Ax-Actor-Role"

	actorContextKey = "actor"
)

// RequireRole admits requests whose gateway-asserted role is one of roles and
// stores the actor on the echo context.
func RequireRole(roles ...actor.Role) echo.MiddlewareFunc {
	allowed := make(map[actor.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			role := actor.Role(strings.ToLower(strings.TrimSpace(c.Request().Header.Get(HeaderActorRole))))
			if !reHex32.MatchString(id) || !role.Valid() {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid actor headers"})
			}
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "role " + string(role) + " may not perform this action"})
			}
			c.Set(actorContextKey, actor.Actor{ID: id, Role: role})
			return next(c)
		}
	}
}

// ActorFrom returns the actor set by RequireRole.
func ActorFrom(c echo.Context) (actor.Actor, bool) {
	a, ok := c.Get(actorContextKey).(actor.Actor)
	return a, ok
}
