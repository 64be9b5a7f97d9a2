package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/model"
	"github.com/rhodessheriff/sheriffd/internal/security"
)

func (c *Controller) initLawRoutes(g *echo.Group) {
	g.GET("/laws", c.GetCityLaws)
	g.POST("/laws", c.SaveCityLaws, c.RequirePermission(security.PermEditLaws))
}

// GetCityLaws returns the law document. Before the first save an empty
// placeholder document comes back instead of a 404.
func (c *Controller) GetCityLaws(ctx echo.Context) error {
	laws, ok := c.Store.CityLaws()
	if !ok {
		return ctx.JSON(http.StatusOK, model.CityLaws{
			ID:        model.CityLawsID,
			Content:   "",
			UpdatedAt: time.Now(),
			UpdatedBy: "",
		})
	}
	return ctx.JSON(http.StatusOK, laws)
}

// SaveCityLaws overwrites the law document. Sheriff and Chief Deputy only.
func (c *Controller) SaveCityLaws(ctx echo.Context) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	user := currentUser(ctx)
	laws := c.Store.SaveCityLaws(req.Content, user.Username)

	c.Audit.Record("Gesetze aktualisiert", audit.EntityLaws, model.CityLawsID,
		"Stadtgesetze wurden aktualisiert", user.Username)

	return ctx.JSON(http.StatusOK, laws)
}
