package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"

	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/handlers"
	"github.com/SscSPs/gl_engine/internal/middleware"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := a.openStore(ctx)
	if err != nil {
		a.logger.Error("Failed to open store", slog.String("driver", a.cfg.StoreDriver), slog.String("error", err.Error()))
		return err
	}
	defer st.close()

	svc := services.NewServiceContainer(a.cfg, st.repos)

	if a.cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(a.logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		a.logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		return err
	}

	var rateLimiter *limiter.Limiter
	if a.cfg.RateLimit != "" {
		rateLimiter, err = middleware.NewRateLimiter(a.cfg.RateLimit)
		if err != nil {
			a.logger.Error("Invalid rate limit", slog.String("rate", a.cfg.RateLimit), slog.String("error", err.Error()))
			return err
		}
	}

	handlers.RegisterRoutes(r, a.cfg, svc, rateLimiter, func(c *gin.Context) error {
		return st.ping(c.Request.Context())
	})

	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", slog.String("port", a.cfg.Port), slog.String("store", a.cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("Server failed to run", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
