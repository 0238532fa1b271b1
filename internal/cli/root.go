package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/app"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/observability"
)

// errPostgresRequired guards commands whose effect must outlive the process.
var errPostgresRequired = errors.New("POSTGRES_DSN is required: the in-memory store is discarded when this command exits (use BOOTSTRAP_ADMIN_EMAIL/BOOTSTRAP_ADMIN_PASSWORD with serve instead)")

var rootCmd = &cobra.Command{
	Use:          "support-desk",
	Short:        "Customer support ticketing API",
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(adminsCmd)
}

// bootstrap loads configuration and a logger for any subcommand.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger, nil
}

// withApp builds the full service graph. One-shot commands that write data
// pass requireDB so they refuse to run against the in-memory store.
func withApp(ctx context.Context, requireDB bool, fn func(*app.App) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if requireDB && cfg.Postgres.DSN == "" {
		return errPostgresRequired
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
