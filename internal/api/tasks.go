package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/security"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

func (c *Controller) initTaskRoutes(g *echo.Group) {
	assignGate := c.requirePermissionMessage(security.PermAssignTasks,
		"Keine Berechtigung zum Zuweisen von Aufgaben")

	g.GET("/tasks", c.GetTasks)
	g.POST("/tasks", c.CreateTask, assignGate)
	g.PATCH("/tasks/:id/status", c.UpdateTaskStatus)
	g.PATCH("/tasks/:id/transfer", c.TransferTask, assignGate)
}

// GetTasks lists all tasks, newest first.
func (c *Controller) GetTasks(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Store.AllTasks())
}

// CreateTask assigns a new task. Gated on the assign permission.
func (c *Controller) CreateTask(ctx echo.Context) error {
	var req store.TaskInput
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	task, err := c.Store.CreateTask(req)
	if err != nil {
		return c.HandleStoreError(ctx, err)
	}

	user := currentUser(ctx)
	c.Audit.Record("Aufgabe erstellt", audit.EntityTask, task.ID,
		fmt.Sprintf("Aufgabe %q wurde an %s vergeben", task.Title, task.AssignedTo), user.Username)

	return ctx.JSON(http.StatusOK, task)
}

// UpdateTaskStatus changes a task's workflow status. Any deputy may do this,
// including working someone else's task.
func (c *Controller) UpdateTaskStatus(ctx echo.Context) error {
	id := ctx.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	task, ok := c.Store.GetTask(id)
	if !ok {
		return c.HandleError(ctx, nil, "Aufgabe nicht gefunden", http.StatusNotFound)
	}

	if err := c.Store.UpdateTaskStatus(id, req.Status); err != nil {
		return c.HandleStoreError(ctx, err)
	}

	user := currentUser(ctx)
	c.Audit.Record("Aufgabenstatus geändert", audit.EntityTask, id,
		fmt.Sprintf("Aufgabe %q Status: %s → %s", task.Title, task.Status, req.Status), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// TransferTask reassigns a task to another deputy. Gated on the assign
// permission.
func (c *Controller) TransferTask(ctx echo.Context) error {
	id := ctx.Param("id")

	var req struct {
		AssignedTo string `json:"assignedTo"`
	}
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Ungültige Anfrage", http.StatusBadRequest)
	}

	task, ok := c.Store.GetTask(id)
	if !ok {
		return c.HandleError(ctx, nil, "Aufgabe nicht gefunden", http.StatusNotFound)
	}

	oldAssignee := task.AssignedTo
	c.Store.TransferTask(id, req.AssignedTo)

	user := currentUser(ctx)
	c.Audit.Record("Aufgabe übertragen", audit.EntityTask, id,
		fmt.Sprintf("Aufgabe %q von %s an %s übertragen", task.Title, oldAssignee, req.AssignedTo), user.Username)

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}
