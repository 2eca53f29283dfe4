package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/khoahotran/summit-cms/internal/application/usecase/backup"
	"github.com/khoahotran/summit-cms/internal/bootstrap"
	"github.com/khoahotran/summit-cms/internal/domain/orphan"
	"github.com/khoahotran/summit-cms/pkg/auth"
)

type appRunner func(run func(cmd *cobra.Command, app *bootstrap.App, args []string) error) func(*cobra.Command, []string) error

func newRenumberCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "renumber <collection>",
		Short: "Rewrite item orders to 0..n-1 keeping their current sequence",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, args []string) error {
			if err := app.Items.Renumber(cmd.Context(), args[0]); err != nil {
				return err
			}
			items, err := app.Items.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renumbered %d items in %s\n", len(items), args[0])
			return nil
		}),
	}
}

func newSweepCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep <collection>",
		Short: "Record remote assets of a collection that no item references",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, args []string) error {
			found, err := app.Reconciler.Sweep(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d orphaned assets recorded\n", len(found))
			return printOrphans(cmd, found)
		}),
	}
}

func newOrphansCmd(withApp appRunner) *cobra.Command {
	orphans := &cobra.Command{
		Use:   "orphans",
		Short: "Inspect and purge orphaned remote assets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List unresolved orphaned assets",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ []string) error {
			assets, err := app.Reconciler.List(cmd.Context())
			if err != nil {
				return err
			}
			return printOrphans(cmd, assets)
		}),
	}

	purge := &cobra.Command{
		Use:   "purge <id>",
		Short: "Delete an orphan's remote asset and mark it resolved",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, args []string) error {
			asset, err := app.Reconciler.Purge(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %s (%s)\n", asset.ID, asset.RemoteRef)
			return nil
		}),
	}

	orphans.AddCommand(list, purge)
	return orphans
}

func newBackupCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Dump the postgres record tables into the remote media store",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ []string) error {
			if app.Config.Records.Driver != bootstrap.DriverPostgres {
				return fmt.Errorf("backup only supports the %s record driver, got %q", bootstrap.DriverPostgres, app.Config.Records.Driver)
			}
			uc := backup.NewBackupUseCase(app.Config.DB.DSN, backup.PgDump, app.Uploader, app.Logger)
			res, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup stored at %s\n", res.URL)
			return nil
		}),
	}
}

// newHashPasswordCmd prints a bcrypt hash for AUTH_ADMIN_PASSWORD_HASH.
func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of an admin password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return fmt.Errorf("cannot hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func printOrphans(cmd *cobra.Command, assets []*orphan.Asset) error {
	if len(assets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no orphaned assets")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOLLECTION\tREMOTE REF\tREASON\tDETECTED")
	for _, a := range assets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Collection, a.RemoteRef, a.Reason, a.DetectedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
