package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/audit"
)

func (c *Controller) initNoteRoutes(g *echo.Group) {
	g.GET("/notes/global", c.GetGlobalNotes)
	g.POST("/notes/global", c.CreateGlobalNote)
	g.PATCH("/notes/global/:id", c.UpdateGlobalNote)
	g.DELETE("/notes/global/:id", c.DeleteGlobalNote)

	g.GET("/notes/user", c.GetUserNotes)
	g.POST("/notes/user", c.CreateUserNote)
	g.PATCH("/notes/user/:id", c.UpdateUserNote)
	g.DELETE("/notes/user/:id", c.DeleteUserNote)
}

type noteContentRequest struct {
	Content string `json:"content"`
}

// GetGlobalNotes lists the shared notes, newest first.
func (c *Controller) GetGlobalNotes(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Store.AllGlobalNotes())
}

// CreateGlobalNote adds a shared note authored by the caller.
func (c *Controller) CreateGlobalNote(ctx echo.Context) error {
	var req noteContentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	user := currentUser(ctx)
	note := c.Store.CreateGlobalNote(req.Content, user.Username)

	c.Audit.Record("Notiz erstellt", audit.EntityNote, note.ID,
		"Gemeinsame Notiz wurde erstellt", user.Username)

	return ctx.JSON(http.StatusOK, note)
}

// UpdateGlobalNote edits a shared note. Any deputy may edit; the editor is
// recorded on the note.
func (c *Controller) UpdateGlobalNote(ctx echo.Context) error {
	id := ctx.Param("id")

	var req noteContentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	if _, ok := c.Store.GetGlobalNote(id); !ok {
		return c.HandleError(ctx, nil, "Notiz nicht gefunden", http.StatusNotFound)
	}

	user := currentUser(ctx)
	c.Store.UpdateGlobalNote(id, req.Content, user.Username)

	c.Audit.Record("Notiz bearbeitet", audit.EntityNote, id,
		"Gemeinsame Notiz wurde bearbeitet", user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeleteGlobalNote removes a shared note.
func (c *Controller) DeleteGlobalNote(ctx echo.Context) error {
	id := ctx.Param("id")

	if _, ok := c.Store.GetGlobalNote(id); !ok {
		return c.HandleError(ctx, nil, "Notiz nicht gefunden", http.StatusNotFound)
	}

	user := currentUser(ctx)
	c.Store.DeleteGlobalNote(id)

	c.Audit.Record("Notiz gelöscht", audit.EntityNote, id,
		"Gemeinsame Notiz wurde gelöscht", user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// GetUserNotes lists the caller's private notes. Notes are always scoped to
// the session user; there is no way to read another deputy's notes.
func (c *Controller) GetUserNotes(ctx echo.Context) error {
	user := currentUser(ctx)
	return ctx.JSON(http.StatusOK, c.Store.UserNotes(user.ID))
}

// CreateUserNote adds a private note for the caller.
func (c *Controller) CreateUserNote(ctx echo.Context) error {
	var req noteContentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	user := currentUser(ctx)
	note := c.Store.CreateUserNote(user.ID, req.Content)
	return ctx.JSON(http.StatusOK, note)
}

// UpdateUserNote edits one of the caller's private notes. Notes owned by
// someone else look like they do not exist.
func (c *Controller) UpdateUserNote(ctx echo.Context) error {
	id := ctx.Param("id")

	var req noteContentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	user := currentUser(ctx)
	note, ok := c.Store.GetUserNote(id)
	if !ok || note.UserID != user.ID {
		return c.HandleError(ctx, nil, "Notiz nicht gefunden", http.StatusNotFound)
	}

	c.Store.UpdateUserNote(id, req.Content)
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeleteUserNote removes one of the caller's private notes.
func (c *Controller) DeleteUserNote(ctx echo.Context) error {
	id := ctx.Param("id")

	user := currentUser(ctx)
	note, ok := c.Store.GetUserNote(id)
	if !ok || note.UserID != user.ID {
		return c.HandleError(ctx, nil, "Notiz nicht gefunden", http.StatusNotFound)
	}

	c.Store.DeleteUserNote(id)
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}
