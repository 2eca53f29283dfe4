package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/khoahotran/summit-cms/internal/bootstrap"
	"github.com/khoahotran/summit-cms/internal/config"
	"github.com/khoahotran/summit-cms/pkg/logger"
)

// appLoader builds the application graph for commands that touch the stores.
type appLoader func(ctx context.Context, configDir string) (*bootstrap.App, error)

func loadApp(ctx context.Context, configDir string) (*bootstrap.App, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, logger.NewZapLogger(cfg.App.Env))
}

func newRootCmd(load appLoader) *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "summitctl",
		Short:         "Operate the Summit CMS media collections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding config.yaml and .env")

	withApp := func(run func(cmd *cobra.Command, app *bootstrap.App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context(), configDir)
			if err != nil {
				return err
			}
			defer app.Close()
			return run(cmd, app, args)
		}
	}

	root.AddCommand(
		newRenumberCmd(withApp),
		newSweepCmd(withApp),
		newOrphansCmd(withApp),
		newBackupCmd(withApp),
		newHashPasswordCmd(),
	)
	return root
}
