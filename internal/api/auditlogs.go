package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rhodessheriff/sheriffd/internal/model"
)

// recentAuditLimit caps the dashboard's recent-activity feed.
const recentAuditLimit = 10

func (c *Controller) initAuditRoutes(g *echo.Group) {
	g.GET("/audit", c.GetAuditLogs)
	g.GET("/audit/recent", c.GetRecentAuditLogs)
	g.GET("/dashboard/stats", c.GetDashboardStats)
}

// GetAuditLogs returns the full audit trail, newest first.
func (c *Controller) GetAuditLogs(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Store.AllAuditLogs())
}

// GetRecentAuditLogs returns the newest audit entries for the dashboard.
func (c *Controller) GetRecentAuditLogs(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Store.RecentAuditLogs(recentAuditLimit))
}

// dashboardStats is the dashboard headline numbers.
type dashboardStats struct {
	ActiveCases       int `json:"activeCases"`
	CurrentInmates    int `json:"currentInmates"`
	RegisteredWeapons int `json:"registeredWeapons"`
}

// GetDashboardStats counts open cases, current inmates and registered
// weapons.
func (c *Controller) GetDashboardStats(ctx echo.Context) error {
	stats := dashboardStats{
		RegisteredWeapons: len(c.Store.AllWeapons()),
	}
	for _, caseData := range c.Store.AllCases() {
		if caseData.Status != model.CaseStatusClosed {
			stats.ActiveCases++
		}
	}
	for _, record := range c.Store.AllJailRecords() {
		if record.Released == 0 {
			stats.CurrentInmates++
		}
	}
	return ctx.JSON(http.StatusOK, stats)
}
