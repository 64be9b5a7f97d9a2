package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/security"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

func (c *Controller) initWeaponRoutes(g *echo.Group) {
	g.GET("/weapons", c.GetWeapons)
	g.POST("/weapons", c.CreateWeapon)
	g.PATCH("/weapons/:id/status", c.UpdateWeaponStatus)
	g.DELETE("/weapons/:id", c.DeleteWeapon, c.RequirePermission(security.PermDeleteRecords))
}

// GetWeapons lists the weapon registry, newest first.
func (c *Controller) GetWeapons(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Store.AllWeapons())
}

// CreateWeapon registers a weapon. The caller becomes createdBy/updatedBy.
func (c *Controller) CreateWeapon(ctx echo.Context) error {
	var req store.WeaponInput
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	user := currentUser(ctx)
	weapon, err := c.Store.CreateWeapon(req, user.Username)
	if err != nil {
		return c.HandleStoreError(ctx, err)
	}

	c.Audit.Record("Waffe registriert", audit.EntityWeapon, weapon.ID,
		fmt.Sprintf("Waffe %s (%s) für %s wurde registriert", weapon.SerialNumber, weapon.WeaponType, weapon.Owner),
		user.Username)

	return ctx.JSON(http.StatusOK, weapon)
}

// UpdateWeaponStatus moves a weapon through its category's status vocabulary.
func (c *Controller) UpdateWeaponStatus(ctx echo.Context) error {
	id := ctx.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	weapon, ok := c.Store.GetWeapon(id)
	if !ok {
		return c.HandleError(ctx, nil, "Waffe nicht gefunden", http.StatusNotFound)
	}

	user := currentUser(ctx)
	if err := c.Store.UpdateWeaponStatus(id, req.Status, user.Username); err != nil {
		return c.HandleStoreError(ctx, err)
	}

	c.Audit.Record("Waffenstatus geändert", audit.EntityWeapon, id,
		fmt.Sprintf("Waffe %s Status: %s → %s", weapon.SerialNumber, weapon.Status, req.Status), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeleteWeapon removes a weapon from the registry. Gated on the delete
// permission.
func (c *Controller) DeleteWeapon(ctx echo.Context) error {
	id := ctx.Param("id")

	weapon, ok := c.Store.GetWeapon(id)
	if !ok {
		return c.HandleError(ctx, nil, "Waffe nicht gefunden", http.StatusNotFound)
	}

	c.Store.DeleteWeapon(id)

	user := currentUser(ctx)
	c.Audit.Record("Waffe gelöscht", audit.EntityWeapon, id,
		fmt.Sprintf("Waffe %s wurde gelöscht", weapon.SerialNumber), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}
