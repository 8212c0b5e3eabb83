// ABOUTME: Entry point for the PyCon KR console.
// ABOUTME: Cobra commands for the web console, the development backend, seeding and the terminal editor.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/cache"
	"github.com/pyconkr/console/internal/config"
	"github.com/pyconkr/console/internal/editor"
	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/logging"
	"github.com/pyconkr/console/internal/mockapi"
	"github.com/pyconkr/console/internal/seed"
	"github.com/pyconkr/console/internal/store"
	"github.com/pyconkr/console/internal/tui"
	_ "github.com/pyconkr/console/plugins/cms" // Register CMS resources
	"github.com/pyconkr/console/plugins/event"
	_ "github.com/pyconkr/console/plugins/sponsor" // Register sponsor resources
)

var (
	configPath string
	port       int
	dbPath     string
	seedSize   string
	noSeed     bool
	editLang   string

	sessionEvent string
	sessionTypes []string
	sessionLinks bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "console",
		Short: "PyCon KR console: schema-driven admin, participant portal and session list",
		Long: `The PyCon KR console edits backend resources through forms generated from
their JSON Schema, serves the participant portal where speakers request
changes to their sessions, and renders the public session list.

Quick Start:
  console mock --seed small   # Development backend on :8081
  console serve               # Console on :8080 against CONSOLE_API_DOMAIN
  console edit sponsor tier   # Terminal editor for a new sponsor tier`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default from configuration)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the console HTTP server",
		Long: `Start the console on the configured port.

The server provides:
  • Admin console at http://localhost:PORT/
  • Participant portal at http://localhost:PORT/portal
  • Session list at http://localhost:PORT/sessions
  • Health check at /healthz and Prometheus metrics at /metrics

Environment Variables:
  CONSOLE_API_DOMAIN   Backend base URL
  CONSOLE_REDIS_URL    Share the schema cache through Redis
  CONSOLE_LANGUAGE     ko or en`,
		RunE: runServe,
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from configuration)")
	serveCmd.Flags().StringVar(&sessionEvent, "event", event.DefaultEvent, "Event shown by the session list")
	serveCmd.Flags().StringSliceVar(&sessionTypes, "types", []string{"talk"}, "Session types shown by the session list")
	serveCmd.Flags().BoolVar(&sessionLinks, "session-links", false, "Link session cards to their detail pages")

	mockCmd := &cobra.Command{
		Use:   "mock",
		Short: "Start the development backend",
		Long: `Serve the admin, participant portal and public APIs from a local SQLite
database so the console can run without the real backend.`,
		RunE: runMock,
	}
	mockCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from configuration)")
	mockCmd.Flags().StringVar(&seedSize, "seed", "", "Seed the database before serving (small, medium or large)")

	seedCmd := &cobra.Command{
		Use:   "seed [size]",
		Short: "Seed the development database",
		Long: `Generate conference content and store it for every registered app.

AI-Powered Generation:
  Set OPENAI_API_KEY to generate sessions and sponsors with OpenAI.
  Falls back to static data if no API key is provided.

Sizes: small, medium (default), large`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSeed,
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe resources and cached schemas, then reseed",
		RunE:  runReset,
	}
	resetCmd.Flags().StringVar(&seedSize, "size", "medium", "Seed size")
	resetCmd.Flags().BoolVar(&noSeed, "no-seed", false, "Only wipe, do not reseed")

	schemaCmd := &cobra.Command{
		Use:   "schema <app> <resource>",
		Short: "Print the schema and UI hints the console uses for a resource",
		Args:  cobra.ExactArgs(2),
		RunE:  runSchema,
	}

	editCmd := &cobra.Command{
		Use:   "edit <app> <resource> [id]",
		Short: "Edit a resource in the terminal",
		Long: `Open the schema-driven editor in the terminal. Without an id a new
instance is created.

Keys:
  tab / shift+tab   move between fields
  ctrl+s            save
  ctrl+d            delete (asks first)
  ctrl+n            start a new instance
  esc               quit`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runEdit,
	}
	editCmd.Flags().StringVar(&editLang, "lang", "", "Interface language (ko or en)")

	rootCmd.AddCommand(serveCmd, mockCmd, seedCmd, resetCmd, schemaCmd, editCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// validateAndCleanDBPath validates and cleans a database path.
func validateAndCleanDBPath(path string) (string, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == ":memory:" {
		return cleanPath, nil
	}
	cleanPath = filepath.Clean(cleanPath)

	if cleanPath == "" || cleanPath == "." || cleanPath == "/" {
		return "", fmt.Errorf("database path cannot be empty, '.', or '/'")
	}
	if runtime.GOOS == "windows" && len(cleanPath) == 2 && cleanPath[1] == ':' {
		return "", fmt.Errorf("database path cannot be a bare drive letter")
	}
	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("database path cannot contain '..'")
	}

	badPatterns := []string{".git", ".svn", "node_modules", ".env", "credentials", "secret"}
	lowerPath := strings.ToLower(cleanPath)
	for _, pattern := range badPatterns {
		if strings.Contains(lowerPath, pattern) {
			return "", fmt.Errorf("database path cannot contain '%s' directory", pattern)
		}
	}
	return cleanPath, nil
}

// setup loads the configuration, applies flag overrides and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	cfg.DatabasePath, err = validateAndCleanDBPath(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(logging.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if port != 0 {
		cfg.Port = port
	}

	ctx, stop := signalContext()
	defer stop()

	c, err := newConsole(ctx, cfg, logger, sessionOptions{
		Event:      sessionEvent,
		Types:      sessionTypes,
		EnableLink: sessionLinks,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("Console listening",
		zap.String("addr", cfg.Addr()),
		zap.String("api", cfg.APIDomain),
		zap.String("database", cfg.DatabasePath))
	return listen(ctx, cfg.Addr(), c.Handler(), logger)
}

func runMock(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if port != 0 {
		cfg.MockPort = port
	}

	ctx, stop := signalContext()
	defer stop()

	s, err := store.New(cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	if seedSize != "" {
		if err := seedStore(ctx, s, cfg, logger, seedSize); err != nil {
			return err
		}
	}

	srv := mockapi.New(s, logger, mockapi.Options{CSRFCookieName: cfg.CSRFCookieName})
	logger.Info("Development backend listening", zap.String("addr", cfg.MockAddr()), zap.String("database", cfg.DatabasePath))
	return listen(ctx, cfg.MockAddr(), srv.Handler(), logger)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	size := "medium"
	if len(args) > 0 {
		size = args[0]
	}

	s, err := store.New(cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	return seedStore(cmd.Context(), s, cfg, logger, size)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	s, err := store.New(cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	resources, err := s.ResetResources(ctx)
	if err != nil {
		return err
	}
	schemas, err := s.PurgeSchemaCache(ctx)
	if err != nil {
		return err
	}
	logger.Info("Database wiped", zap.Int64("resources", resources), zap.Int64("schemas", schemas))

	if noSeed {
		return nil
	}
	return seedStore(ctx, s, cfg, logger, seedSize)
}

func seedStore(ctx context.Context, s *store.Store, cfg *config.Config, logger *zap.Logger, size string) error {
	gen := seed.NewGenerator(seed.Config{APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel}, logger)
	results, err := mockapi.Seed(ctx, s, gen, size, logger)
	if err != nil {
		return err
	}

	total := 0
	for _, res := range results {
		for _, n := range res.Records {
			total += n
		}
	}
	logger.Info("Seeding complete", zap.String("size", size), zap.Int("apps", len(results)), zap.Int("records", total))
	return nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newBackendClient(cfg, logger)
	if err != nil {
		return err
	}
	overrides, err := config.LoadHintOverrides(cfg.HintOverridesPath)
	if err != nil {
		return err
	}
	provider := backend.NewCachedSchemaProvider(client, nil, 0, overrides, logger)

	info, err := provider.FetchSchema(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	if editLang != "" {
		cfg.Language = i18n.Parse(editLang)
	}

	// the terminal belongs to the editor, so nothing is logged
	logger := zap.NewNop()
	client, err := newBackendClient(cfg, logger)
	if err != nil {
		return err
	}
	overrides, err := config.LoadHintOverrides(cfg.HintOverridesPath)
	if err != nil {
		return err
	}

	desc := editor.Descriptor{App: args[0], Resource: args[1]}
	if len(args) == 3 {
		desc.ID = args[2]
	}

	ctx, stop := signalContext()
	defer stop()
	err = tui.Run(ctx, desc, tui.Config{
		Client:   client,
		Schemas:  backend.NewCachedSchemaProvider(client, cache.NewMemory(), cfg.SchemaTTL, overrides, logger),
		Language: cfg.Language,
		Logger:   logger,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
