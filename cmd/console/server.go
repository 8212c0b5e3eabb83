// ABOUTME: Console server wiring: backend client, schema cache, admin, portal and session routes.
// ABOUTME: The schema cache lives in Redis when configured and in the local SQLite store otherwise.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/admin"
	"github.com/pyconkr/console/internal/auth"
	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/cache"
	"github.com/pyconkr/console/internal/config"
	"github.com/pyconkr/console/internal/logging"
	"github.com/pyconkr/console/internal/notify"
	"github.com/pyconkr/console/internal/portal"
	"github.com/pyconkr/console/internal/sessions"
	"github.com/pyconkr/console/internal/store"
)

type sessionOptions struct {
	Event      string
	Types      []string
	EnableLink bool
}

type console struct {
	handler http.Handler
	store   *store.Store
	redis   *redis.Client
}

func (c *console) Handler() http.Handler { return c.handler }

func (c *console) Close() error {
	if c.redis != nil {
		c.redis.Close()
	}
	return c.store.Close()
}

func newBackendClient(cfg *config.Config, logger *zap.Logger) (*backend.Client, error) {
	client, err := backend.NewClient(backend.Config{
		BaseURL:        cfg.APIDomain,
		Timeout:        cfg.APITimeout,
		Language:       cfg.Language,
		CSRFCookieName: cfg.CSRFCookieName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return client, nil
}

func newConsole(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts sessionOptions) (*console, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := store.New(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	c := &console{store: s}

	client, err := newBackendClient(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	var schemaCache backend.Cache = s
	if cfg.RedisURL != "" {
		c.redis, err = cache.Dial(ctx, cfg.RedisURL, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		schemaCache = cache.NewRedis(c.redis, cache.DefaultPrefix, logger)
	}

	overrides, err := config.LoadHintOverrides(cfg.HintOverridesPath)
	if err != nil {
		c.Close()
		return nil, err
	}
	schemas := backend.NewCachedSchemaProvider(client, schemaCache, cfg.SchemaTTL, overrides, logger)

	secret, persistent := cfg.FlashKey()
	if !persistent {
		logger.Warn("No flash secret configured, notifications will not survive a restart")
	}
	flash := notify.NewFlash(secret, cfg.SecureCookies)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(cfg.CSRFCookieName))
	r.Use(logging.Middleware(s, logger))

	admin.NewHandlers(admin.Config{
		Client:          client,
		Schemas:         schemas,
		Store:           s,
		Flash:           flash,
		Apps:            admin.RegistryApps(),
		Language:        cfg.Language,
		NotificationTTL: cfg.NotificationTTL,
		Logger:          logger,
	}).RegisterRoutes(r)

	portal.NewHandlers(portal.Config{
		Client:          client,
		Flash:           flash,
		Language:        cfg.Language,
		NotificationTTL: cfg.NotificationTTL,
		Logger:          logger,
	}).RegisterRoutes(r)

	sessions.NewHandlers(sessions.Config{
		Client:     client,
		Event:      opts.Event,
		Types:      opts.Types,
		EnableLink: opts.EnableLink,
		Language:   cfg.Language,
		Logger:     logger,
	}).RegisterRoutes(r)

	c.handler = r
	return c, nil
}

// listen serves handler on addr until ctx is cancelled.
func listen(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down", zap.String("addr", addr))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
