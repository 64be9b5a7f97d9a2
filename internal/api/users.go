package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/model"
	"github.com/rhodessheriff/sheriffd/internal/security"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

func (c *Controller) initUserRoutes(g *echo.Group) {
	g.GET("/users", c.GetUsers)
	g.POST("/users", c.CreateUser,
		c.requirePermissionMessage(security.PermManageUsers, "Nur der Sheriff kann Benutzer anlegen"))
}

// GetUsers lists all accounts without password hashes.
func (c *Controller) GetUsers(ctx echo.Context) error {
	users := c.Store.AllUsers()
	public := make([]model.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return ctx.JSON(http.StatusOK, public)
}

// createUserRequest is the account creation payload.
type createUserRequest struct {
	Username           string     `json:"username"`
	Password           string     `json:"password"`
	Rank               model.Rank `json:"rank"`
	MustChangePassword int        `json:"mustChangePassword"`
}

// CreateUser adds a deputy account. Sheriff only.
func (c *Controller) CreateUser(ctx echo.Context) error {
	var req createUserRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	if req.Username == "" {
		return c.HandleError(ctx, nil, "Benutzername erforderlich", http.StatusBadRequest)
	}
	if len(req.Password) < c.Settings.Security.MinPasswords {
		return c.HandleError(ctx, nil,
			fmt.Sprintf("Passwort muss mindestens %d Zeichen lang sein", c.Settings.Security.MinPasswords),
			http.StatusBadRequest)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return c.HandleError(ctx, err, "Server-Fehler", http.StatusInternalServerError)
	}

	user, err := c.Store.CreateUser(store.UserInput{
		Username:           req.Username,
		Password:           hash,
		Rank:               req.Rank,
		MustChangePassword: req.MustChangePassword,
	})
	if err != nil {
		return c.HandleStoreError(ctx, err)
	}

	caller := currentUser(ctx)
	c.Audit.Record("Benutzer erstellt", audit.EntityUser, user.ID,
		fmt.Sprintf("Neuer Benutzer %s (%s) wurde angelegt", user.Username, user.Rank), caller.Username)

	return ctx.JSON(http.StatusOK, user.Public())
}
