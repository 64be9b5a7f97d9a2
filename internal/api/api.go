// Package api implements the REST interface of the Sheriff's Office service.
// Client-facing messages are German, matching the web client's wire format.
package api

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/conf"
	"github.com/rhodessheriff/sheriffd/internal/errors"
	"github.com/rhodessheriff/sheriffd/internal/logging"
	"github.com/rhodessheriff/sheriffd/internal/security"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Store    *store.Store
	Settings *conf.Settings
	Sessions *security.SessionManager
	Audit    *audit.Recorder

	logger         *slog.Logger
	apiLogger      *slog.Logger // request log, file-backed when enabled
	apiLoggerClose func() error
	startTime      time.Time
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithRequestLogger overrides the file-backed request logger. Used in tests.
func WithRequestLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.apiLogger = logger
	}
}

// New creates the API controller and registers all routes on e under /api.
func New(e *echo.Echo, s *store.Store, settings *conf.Settings,
	sessions *security.SessionManager, recorder *audit.Recorder, opts ...Option) *Controller {

	c := &Controller{
		Echo:      e,
		Store:     s,
		Settings:  settings,
		Sessions:  sessions,
		Audit:     recorder,
		logger:    logging.ForService("api"),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiLogger == nil && settings.Log.Enabled {
		level := slog.LevelInfo
		if settings.WebServer.Debug {
			level = slog.LevelDebug
		}
		fileLogger, closeFunc, err := logging.NewFileLogger(settings.Log.Path, "api", level)
		if err != nil {
			c.logger.Warn("failed to create request log file, request logging disabled",
				"path", settings.Log.Path, "error", err)
			c.apiLogger = logging.NewDiscardLogger("api")
		} else {
			c.apiLogger = fileLogger
			c.apiLoggerClose = closeFunc
		}
	}
	if c.apiLogger == nil {
		c.apiLogger = logging.NewDiscardLogger("api")
	}

	c.Group = e.Group("/api")
	c.Group.Use(middleware.Recover())
	c.Group.Use(middleware.CORS())
	c.Group.Use(middleware.BodyLimit("10M")) // case photos arrive as data URLs
	c.Group.Use(c.LoggingMiddleware())

	c.initRoutes()
	return c
}

// LoggingMiddleware logs every API request to the structured request log.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)

			req := ctx.Request()
			res := ctx.Response()

			// LogAttrs avoids allocations when the level is disabled
			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.String("ip", ctx.RealIP()),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			c.apiLogger.LogAttrs(req.Context(), slog.LevelInfo, "API Request", attrs...)

			return err
		}
	}
}

// initRoutes registers all API endpoints.
func (c *Controller) initRoutes() {
	// Publicly accessible
	c.Group.GET("/health", c.HealthCheck)
	c.Group.POST("/auth/login", c.Login)

	protected := c.Group.Group("", c.AuthMiddleware)

	routeInitializers := []struct {
		name string
		fn   func(g *echo.Group)
	}{
		{"auth routes", c.initAuthRoutes},
		{"user routes", c.initUserRoutes},
		{"case routes", c.initCaseRoutes},
		{"jail routes", c.initJailRoutes},
		{"fine routes", c.initFineRoutes},
		{"law routes", c.initLawRoutes},
		{"weapon routes", c.initWeaponRoutes},
		{"task routes", c.initTaskRoutes},
		{"note routes", c.initNoteRoutes},
		{"audit routes", c.initAuditRoutes},
	}
	for _, initializer := range routeInitializers {
		initializer.fn(protected)
		c.logger.Debug("initialized route group", "group", initializer.name)
	}
}

// HealthCheck reports service liveness.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"timestamp":      time.Now().Format(time.RFC3339),
		"uptime_seconds": time.Since(c.startTime).Seconds(),
	})
}

// Shutdown releases controller resources, closing the request log file.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Error("failed to close request log file", "error", err)
		}
	}
}

// ErrorResponse is the JSON error body. Message is the client-facing German
// text; CorrelationID links the response to the server log.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates a new API error response.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a short random identifier for error tracking.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError logs err and returns the error response to the client. For 500s
// the wrapped error text stays out of the body; the correlation id is enough
// to find it in the log.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)
	if code >= http.StatusInternalServerError {
		errorResp.Error = message
	}

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}
	c.apiLogger.Error("API Error",
		"correlation_id", errorResp.CorrelationID,
		"message", message,
		"error", errorStr,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	)

	return ctx.JSON(code, errorResp)
}

// HandleStoreError maps a store error onto the HTTP taxonomy: validation 400,
// conflict 409, not-found 404, everything else a generic 500.
func (c *Controller) HandleStoreError(ctx echo.Context, err error) error {
	switch {
	case errors.IsValidation(err):
		return c.HandleError(ctx, err, "Ungültige Eingabe", http.StatusBadRequest)
	case errors.IsCategory(err, errors.CategoryConflict):
		return c.HandleError(ctx, err, "Wert bereits vergeben", http.StatusConflict)
	case errors.IsNotFound(err):
		return c.HandleError(ctx, err, "Nicht gefunden", http.StatusNotFound)
	default:
		return c.HandleError(ctx, err, "Server-Fehler", http.StatusInternalServerError)
	}
}
