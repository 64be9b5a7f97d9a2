package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/rhodessheriff/sheriffd/internal/api"
	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/conf"
	"github.com/rhodessheriff/sheriffd/internal/logging"
	"github.com/rhodessheriff/sheriffd/internal/security"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(current func() *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST service and the admin snapshot channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(current())
		},
	}
}

func runServe(settings *conf.Settings) error {
	logger := logging.ForService("server")

	s := store.New(settings.Storage.DataFile)
	if err := s.Load(); err != nil {
		// A broken snapshot must not keep the office offline; start from seed.
		logger.Warn("could not load snapshot, continuing with seed data", "error", err)
	}

	sessions := security.NewSessionManager(settings.Security.SessionTTL, settings.Security.SweepEvery)
	recorder := audit.NewRecorder(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartAutosave(ctx, settings.Storage.AutosaveInterval)

	e := echo.New()
	e.HideBanner = true
	e.Debug = settings.WebServer.Debug
	controller := api.New(e, s, settings, sessions, recorder)
	defer controller.Shutdown()

	errChan := make(chan error, 2)

	webAddr := net.JoinHostPort(settings.WebServer.Host, settings.WebServer.Port)
	go func() {
		logger.Info("web server listening", "addr", webAddr)
		if err := e.Start(webAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var adminEcho *echo.Echo
	if settings.Admin.Enabled {
		adminEcho = echo.New()
		adminEcho.HideBanner = true
		api.NewAdmin(adminEcho, s, &settings.Admin)

		adminAddr := net.JoinHostPort(settings.WebServer.Host, settings.Admin.Port)
		go func() {
			logger.Info("admin server listening", "addr", adminAddr)
			if err := adminEcho.Start(adminAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errChan:
		logger.Error("server failed", "error", err)
		return err
	}

	// Stop autosave and trigger its final save before closing listeners.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("web server shutdown failed", "error", err)
	}
	if adminEcho != nil {
		if err := adminEcho.Shutdown(shutdownCtx); err != nil {
			logger.Error("admin server shutdown failed", "error", err)
		}
	}

	if err := s.SaveNow(); err != nil {
		logger.Error("final save failed", "error", err)
		return err
	}
	return nil
}
