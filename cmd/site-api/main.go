/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Command site-api serves the public catalog API of the salon site (services, stylists and availability)
// backed by Acuity Scheduling.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vahairstudio/site-api/internal/app"
	"github.com/vahairstudio/site-api/internal/version"
	"github.com/vahairstudio/site-api/log"
)

func main() {
	if err := newRootCommand(os.Stdout).ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "site-api",
		Short:         "Public catalog API of the salon site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.AddCommand(newServeCommand(), newVersionCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var configPath, envPrefix string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. SIGINT and SIGTERM stop it gracefully.

Configuration is read from the YAML file given by --config and from environment variables
prefixed by --env-prefix (e.g. SITE_API_SERVER_ADDRESS). Acuity credentials are read from
ACUITY_USER_ID and ACUITY_API_KEY, without them fallback data is served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath, envPrefix)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")
	cmd.Flags().StringVar(&envPrefix, "env-prefix", app.DefaultEnvPrefix, "prefix of the configuration environment variables")
	return cmd
}

func serve(ctx context.Context, configPath, envPrefix string) error {
	cfg, err := app.LoadConfig(configPath, envPrefix)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, closeLogger := log.NewLogger(cfg.Log)
	defer closeLogger()

	logger.Info("starting site API", log.String("version", version.Get().Version))

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create site API", log.Error(err))
		return err
	}
	if err = a.Service.StartContext(ctx); err != nil {
		logger.Error("site API stopped with error", log.Error(err))
		return err
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "site-api", version.Get())
			return err
		},
	}
}
