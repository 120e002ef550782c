package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/stwalsh4118/wardlens/internal/config"
	"github.com/stwalsh4118/wardlens/internal/datasource"
	"github.com/stwalsh4118/wardlens/internal/handlers"
	"github.com/stwalsh4118/wardlens/internal/logger"
	"github.com/stwalsh4118/wardlens/internal/middleware"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP server port (overrides PORT)")
	return cmd
}

func runServe(port string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}

	log.Info("Starting wardlens API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"data_source": cfg.Data.Source,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.Data.Watch && cfg.Data.Source == config.SourceFile {
		watcher, err := datasource.NewWatcher(cfg.Data.Dir, a.loader, log)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			watcher.Stop()
			return err
		}
		defer watcher.Stop()
	}

	// Warm the cache so the first dashboard request does not pay for every fetch.
	a.loader.Prefetch(catalog(cfg.Datasets).All()...)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: newRouter(cfg, log, a),
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Error("Server failed to start", err, nil)
			return err
		}
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": cfg.Server.ShutdownTimeout.String(),
		})
		return err
	}

	log.Info("Server exited", nil)
	return nil
}

// newRouter builds the gin engine with middleware and every route.
func newRouter(cfg *config.Config, log *logger.Logger, a *app) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check and API v1 routes
	health := handlers.NewHealthHandler(a.service, cfg.Server.Env, a.service.Districts())
	if a.db != nil {
		health.WithPool(a.db)
	}

	handlers.RegisterRoutes(router, health, handlers.NewAnalysisHandler(a.service))
	return router
}
