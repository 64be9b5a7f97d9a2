package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/security"
)

func (c *Controller) initAuthRoutes(g *echo.Group) {
	// login is registered unauthenticated in initRoutes
	g.POST("/auth/logout", c.Logout)
	g.POST("/auth/change-password", c.ChangePassword)
}

// loginRequest is the login payload.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the public user plus a fresh session token.
type loginResponse struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Rank               string `json:"rank"`
	MustChangePassword int    `json:"mustChangePassword"`
	SessionToken       string `json:"sessionToken"`
}

// Login verifies credentials and opens a session. Unknown username and wrong
// password get the same answer.
func (c *Controller) Login(ctx echo.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	user, ok := c.Store.GetUserByUsername(req.Username)
	if !ok || !security.VerifyPassword(user.Password, req.Password) {
		return c.HandleError(ctx, nil, "Ungültiger Benutzername oder Passwort", http.StatusUnauthorized)
	}

	token := c.Sessions.Create(user.ID, user.Username)

	c.Audit.Record("Login", audit.EntityUser, user.ID,
		fmt.Sprintf("Benutzer %s hat sich angemeldet", user.Username), user.Username)

	return ctx.JSON(http.StatusOK, loginResponse{
		ID:                 user.ID,
		Username:           user.Username,
		Rank:               string(user.Rank),
		MustChangePassword: user.MustChangePassword,
		SessionToken:       token,
	})
}

// Logout destroys the current session.
func (c *Controller) Logout(ctx echo.Context) error {
	user := currentUser(ctx)
	c.Sessions.Destroy(currentToken(ctx))

	c.Audit.Record("Logout", audit.EntityUser, user.ID,
		fmt.Sprintf("Benutzer %s hat sich abgemeldet", user.Username), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// changePasswordRequest carries the new password for the calling user.
type changePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ChangePassword updates the caller's own password and rotates the session
// token so older tokens stop working immediately.
func (c *Controller) ChangePassword(ctx echo.Context) error {
	var req changePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	if len(req.NewPassword) < c.Settings.Security.MinPasswords {
		return c.HandleError(ctx, nil,
			fmt.Sprintf("Passwort muss mindestens %d Zeichen lang sein", c.Settings.Security.MinPasswords),
			http.StatusBadRequest)
	}

	user := currentUser(ctx)

	hash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return c.HandleError(ctx, err, "Server-Fehler", http.StatusInternalServerError)
	}
	c.Store.UpdateUserPassword(user.ID, hash)

	newToken := c.Sessions.Rotate(currentToken(ctx), user.ID, user.Username)

	c.Audit.Record("Passwort geändert", audit.EntityUser, user.ID,
		fmt.Sprintf("Benutzer %s hat das Passwort geändert", user.Username), user.Username)

	return ctx.JSON(http.StatusOK, map[string]any{
		"success":      true,
		"sessionToken": newToken,
	})
}
