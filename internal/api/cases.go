package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/security"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

func (c *Controller) initCaseRoutes(g *echo.Group) {
	g.GET("/cases", c.GetCases)
	g.POST("/cases", c.CreateCase)
	g.PATCH("/cases/:id", c.UpdateCase)
	g.PATCH("/cases/:id/status", c.UpdateCaseStatus)
	g.DELETE("/cases/:id", c.DeleteCase, c.RequirePermission(security.PermDeleteRecords))

	g.GET("/persons", c.GetPersons)
}

// GetCases lists all case files, newest first.
func (c *Controller) GetCases(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Store.AllCases())
}

// CreateCase opens a new case file.
func (c *Controller) CreateCase(ctx echo.Context) error {
	var req store.CaseInput
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	caseData, err := c.Store.CreateCase(req)
	if err != nil {
		return c.HandleStoreError(ctx, err)
	}

	user := currentUser(ctx)
	c.Audit.Record("Fallakte erstellt", audit.EntityCase, caseData.ID,
		fmt.Sprintf("Fallakte %s für %s wurde angelegt", caseData.CaseNumber, caseData.PersonName), user.Username)

	return ctx.JSON(http.StatusOK, caseData)
}

// UpdateCase applies a partial update to a case file.
func (c *Controller) UpdateCase(ctx echo.Context) error {
	id := ctx.Param("id")

	var upd store.CaseUpdate
	if err := ctx.Bind(&upd); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	caseData, ok := c.Store.GetCase(id)
	if !ok {
		return c.HandleError(ctx, nil, "Fallakte nicht gefunden", http.StatusNotFound)
	}

	if err := c.Store.UpdateCase(id, upd); err != nil {
		return c.HandleStoreError(ctx, err)
	}

	user := currentUser(ctx)
	c.Audit.Record("Fallakte bearbeitet", audit.EntityCase, id,
		fmt.Sprintf("Fallakte %s wurde aktualisiert", caseData.CaseNumber), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// UpdateCaseStatus changes the workflow status of a case. The audit entry
// captures the transition.
func (c *Controller) UpdateCaseStatus(ctx echo.Context) error {
	id := ctx.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	caseData, ok := c.Store.GetCase(id)
	if !ok {
		return c.HandleError(ctx, nil, "Fallakte nicht gefunden", http.StatusNotFound)
	}

	if err := c.Store.UpdateCaseStatus(id, req.Status); err != nil {
		return c.HandleStoreError(ctx, err)
	}

	user := currentUser(ctx)
	c.Audit.Record("Status geändert", audit.EntityCase, id,
		fmt.Sprintf("Fallakte %s Status: %s → %s", caseData.CaseNumber, caseData.Status, req.Status), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeleteCase removes a case file. Gated on the delete permission.
func (c *Controller) DeleteCase(ctx echo.Context) error {
	id := ctx.Param("id")

	caseData, ok := c.Store.GetCase(id)
	if !ok {
		return c.HandleError(ctx, nil, "Fallakte nicht gefunden", http.StatusNotFound)
	}

	c.Store.DeleteCase(id)

	user := currentUser(ctx)
	c.Audit.Record("Fallakte gelöscht", audit.EntityCase, id,
		fmt.Sprintf("Fallakte %s wurde gelöscht", caseData.CaseNumber), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// GetPersons returns the per-person aggregation of all case files.
func (c *Controller) GetPersons(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Store.GetPersonsSummary())
}
