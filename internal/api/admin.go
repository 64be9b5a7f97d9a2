package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rhodessheriff/sheriffd/internal/conf"
	"github.com/rhodessheriff/sheriffd/internal/logging"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

// AdminController serves the snapshot maintenance channel on its own echo
// instance, bound to a separate port. It never shares routes or sessions with
// the public API; access control is the optional X-Admin-Key header.
type AdminController struct {
	Echo     *echo.Echo
	Store    *store.Store
	Settings *conf.AdminSettings

	logger *slog.Logger
}

// NewAdmin creates the admin controller and registers its routes on e.
func NewAdmin(e *echo.Echo, s *store.Store, settings *conf.AdminSettings) *AdminController {
	a := &AdminController{
		Echo:     e,
		Store:    s,
		Settings: settings,
		logger:   logging.ForService("admin"),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("50M")) // snapshots carry photo data URLs

	e.GET("/export", a.Export)
	e.GET("/status", a.Status)

	keyed := e.Group("", a.RequireAdminKey)
	keyed.POST("/import", a.Import)
	keyed.POST("/reset", a.Reset)
	keyed.POST("/save", a.Save)

	return a
}

// RequireAdminKey enforces the X-Admin-Key header when a key is configured.
// An empty configured key leaves the channel open, for local use.
func (a *AdminController) RequireAdminKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if a.Settings.APIKey == "" {
			return next(ctx)
		}
		if ctx.Request().Header.Get("X-Admin-Key") != a.Settings.APIKey {
			return ctx.JSON(http.StatusForbidden, map[string]string{"message": "Ungültiger Admin-Key"})
		}
		return next(ctx)
	}
}

// Export streams the full state as a downloadable JSON document.
func (a *AdminController) Export(ctx echo.Context) error {
	snap := a.Store.ExportState()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="storage-export.json"`)
	return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// Import replaces the store contents with the posted snapshot. With
// ?dryRun=1 the document is only validated and the store stays untouched.
func (a *AdminController) Import(ctx echo.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	dryRun := ctx.QueryParam("dryRun") == "1" || ctx.QueryParam("dryRun") == "true"
	if dryRun {
		result := store.ValidateState(body)
		return ctx.JSON(http.StatusOK, map[string]any{
			"dryRun": true,
			"valid":  result.Valid,
			"errors": result.Errors,
		})
	}

	result, err := a.Store.ImportState(body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"message": "Validation failed",
			"errors":  result.Errors,
		})
	}

	a.logger.Info("state imported via admin channel", "ip", ctx.RealIP())
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Reset discards all data and restores the seed dataset.
func (a *AdminController) Reset(ctx echo.Context) error {
	a.Store.ResetToSeed()
	a.logger.Warn("state reset via admin channel", "ip", ctx.RealIP())
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Save forces an immediate snapshot write.
func (a *AdminController) Save(ctx echo.Context) error {
	if err := a.Store.SaveNow(); err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Status reports the snapshot file's existence, size and mtime.
func (a *AdminController) Status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, a.Store.Status())
}
