package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains in-flight
// requests. Site generation calls several slow providers, hence the long
// write timeout.
func (app *Application) Serve(mux *http.ServeMux) error {
	srv := &http.Server{
		Addr:         app.Config.HTTPPort,
		Handler:      app.BuildRoutes(mux),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
	shutdownErr := make(chan error)

	go func() {
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		s := <-shutdown
		app.Logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			shutdownErr <- err
			return
		}

		app.Logger.Info("completing background tasks before shutting down")
		shutdownErr <- nil
	}()

	app.Logger.Info("starting server", "addr", app.Config.HTTPPort, "dev_mode", app.Config.DevMode)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return err
	}

	app.Logger.Info("stopped server", "addr", app.Config.HTTPPort)
	return nil
}
