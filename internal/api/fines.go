package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/security"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

func (c *Controller) initFineRoutes(g *echo.Group) {
	g.GET("/fines", c.GetFines)
	g.POST("/fines", c.CreateFine)
	g.DELETE("/fines/:id", c.DeleteFine, c.RequirePermission(security.PermDeleteRecords))
}

// GetFines lists the fine catalog.
func (c *Controller) GetFines(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Store.AllFines())
}

// CreateFine adds a catalog entry.
func (c *Controller) CreateFine(ctx echo.Context) error {
	var req store.FineInput
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	fine := c.Store.CreateFine(req)

	user := currentUser(ctx)
	c.Audit.Record("Bußgeld erstellt", audit.EntityFine, fine.ID,
		fmt.Sprintf("Bußgeld %q ($%d) wurde angelegt", fine.Violation, fine.Amount), user.Username)

	return ctx.JSON(http.StatusOK, fine)
}

// DeleteFine removes a catalog entry. Gated on the delete permission.
func (c *Controller) DeleteFine(ctx echo.Context) error {
	id := ctx.Param("id")

	if _, ok := c.Store.GetFine(id); !ok {
		return c.HandleError(ctx, nil, "Bußgeld nicht gefunden", http.StatusNotFound)
	}

	c.Store.DeleteFine(id)

	user := currentUser(ctx)
	c.Audit.Record("Bußgeld gelöscht", audit.EntityFine, id, "Bußgeld wurde gelöscht", user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}
