// Package cli is the terminal front end: each command walks one of the
// product list, product detail or cart flows.
package cli

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"storefront/client/internal/config"
	"storefront/client/internal/container"
	"storefront/client/internal/domain"
)

// Builder creates the application for a single command invocation
type Builder func(ctx context.Context, configPath string) (*container.Container, error)

// DefaultBuilder loads configuration from configPath and wires the real stack
func DefaultBuilder(ctx context.Context, configPath string) (*container.Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Debug("Configuration loaded successfully")

	app, err := container.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	return app, nil
}

type runner struct {
	build      Builder
	configPath string
}

func NewRootCommand(build Builder) *cobra.Command {
	r := &runner{build: build}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the product catalog and manage your shopping cart",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&r.configPath, "config", "", "config file (default ./config.yaml)")

	root.AddCommand(
		r.productsCommand(),
		r.categoriesCommand(),
		r.productCommand(),
		r.cartCommand(),
	)

	return root
}

// withApp builds the container around fn and closes it afterwards, which
// flushes any cart snapshot that failed to persist
func (r *runner) withApp(fn func(cmd *cobra.Command, args []string, app *container.Container) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := r.build(cmd.Context(), r.configPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				log.Errorf("❌ Failed to shut down cleanly: %v", err)
			}
		}()

		return fn(cmd, args, app)
	}
}

// catalogFailure adds a retry hint to errors caused by the catalog being unreachable
func catalogFailure(err error) error {
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w (the catalog is unavailable, run the command again to retry)", err)
	}
	return err
}
