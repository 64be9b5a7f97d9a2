package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/security"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

func (c *Controller) initJailRoutes(g *echo.Group) {
	g.GET("/jail", c.GetJailRecords)
	g.POST("/jail", c.CreateJailRecord)
	g.PATCH("/jail/:id/release", c.ReleaseInmate)
	g.DELETE("/jail/:id", c.DeleteJailRecord, c.RequirePermission(security.PermDeleteRecords))
}

// GetJailRecords lists all jail records, newest start time first.
func (c *Controller) GetJailRecords(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Store.AllJailRecords())
}

// CreateJailRecord books a person into jail.
func (c *Controller) CreateJailRecord(ctx echo.Context) error {
	var req store.JailRecordInput
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	record := c.Store.CreateJailRecord(req)

	user := currentUser(ctx)
	c.Audit.Record("Inhaftierung", audit.EntityJail, record.ID,
		fmt.Sprintf("%s wurde inhaftiert (%d Min., %s)", record.PersonName, record.DurationMinutes, record.Crime),
		user.Username)

	return ctx.JSON(http.StatusOK, record)
}

// ReleaseInmate marks a jail record released.
func (c *Controller) ReleaseInmate(ctx echo.Context) error {
	id := ctx.Param("id")

	record, ok := c.Store.GetJailRecord(id)
	if !ok {
		return c.HandleError(ctx, nil, "Eintrag nicht gefunden", http.StatusNotFound)
	}

	c.Store.ReleaseInmate(id)

	user := currentUser(ctx)
	c.Audit.Record("Entlassung", audit.EntityJail, id,
		fmt.Sprintf("%s wurde entlassen", record.PersonName), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeleteJailRecord removes a jail record. Gated on the delete permission.
func (c *Controller) DeleteJailRecord(ctx echo.Context) error {
	id := ctx.Param("id")

	record, ok := c.Store.GetJailRecord(id)
	if !ok {
		return c.HandleError(ctx, nil, "Eintrag nicht gefunden", http.StatusNotFound)
	}

	c.Store.DeleteJailRecord(id)

	user := currentUser(ctx)
	c.Audit.Record("Eintrag gelöscht", audit.EntityJail, id,
		fmt.Sprintf("Inhaftierung von %s wurde gelöscht", record.PersonName), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}
