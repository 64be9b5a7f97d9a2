package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/model"
	"github.com/rhodessheriff/sheriffd/internal/security"
)

// Header carrying the session token. Authorization: Bearer is accepted as an
// equivalent for API clients.
const sessionTokenHeader = "X-Session-Token"

// Context keys set by AuthMiddleware.
const (
	ctxKeyToken   = "auth_token"
	ctxKeySession = "auth_session"
	ctxKeyUser    = "auth_user"
)

// extractToken pulls the session token from the request headers. The
// X-Session-Token header wins; otherwise a Bearer Authorization header is
// accepted.
func extractToken(ctx echo.Context) string {
	if token := ctx.Request().Header.Get(sessionTokenHeader); token != "" {
		return token
	}
	authHeader := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware requires a live session. The session's user is re-read from
// the store on every request so rank checks never act on stale data; a
// session whose user vanished is treated as expired.
func (c *Controller) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		token := extractToken(ctx)
		if token == "" {
			return c.HandleError(ctx, nil, "Kein Session-Token", http.StatusUnauthorized)
		}

		session, ok := c.Sessions.Resolve(token)
		if !ok {
			return c.HandleError(ctx, nil, "Session ungültig oder abgelaufen", http.StatusUnauthorized)
		}

		user, ok := c.Store.GetUser(session.UserID)
		if !ok {
			c.Sessions.Destroy(token)
			return c.HandleError(ctx, nil, "Session ungültig oder abgelaufen", http.StatusUnauthorized)
		}

		ctx.Set(ctxKeyToken, token)
		ctx.Set(ctxKeySession, session)
		ctx.Set(ctxKeyUser, user)
		return next(ctx)
	}
}

// currentUser returns the authenticated user set by AuthMiddleware.
func currentUser(ctx echo.Context) model.User {
	user, _ := ctx.Get(ctxKeyUser).(model.User)
	return user
}

// currentToken returns the session token of the authenticated request.
func currentToken(ctx echo.Context) string {
	token, _ := ctx.Get(ctxKeyToken).(string)
	return token
}

// RequirePermission gates a route on the permission table. The generic denial
// message matches the client's expectations.
func (c *Controller) RequirePermission(perm security.Permission) echo.MiddlewareFunc {
	return c.requirePermissionMessage(perm, "Keine Berechtigung")
}

func (c *Controller) requirePermissionMessage(perm security.Permission, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			user := currentUser(ctx)
			if !security.Allowed(perm, user.Rank) {
				return c.HandleError(ctx, nil, message, http.StatusForbidden)
			}
			return next(ctx)
		}
	}
}
