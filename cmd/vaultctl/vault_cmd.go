package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"client-vault/internal/client/vault"
	"client-vault/internal/domain/asset"

	"github.com/spf13/cobra"
)

var errNoSelection = errors.New("name asset ids or pass --all")

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := appFrom(cmd)
			ctrl := app.vault()
			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			return printAssets(app.out, ctrl.Assets())
		},
	}
}

func newDownloadCmd(opts *options) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "download [asset-id...]",
		Short: "Download assets one at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctrl, err := selectAssets(cmd, app, args, all)
			if err != nil {
				return err
			}

			report, err := ctrl.BulkDownload(cmd.Context())
			if report != nil {
				fmt.Fprintf(app.out, "Saved %d, opened %d, failed %d\n", len(report.Saved), len(report.Opened), len(report.Failed))
				for id, ferr := range report.Failed {
					fmt.Fprintf(app.out, "  %s: %v\n", id, ferr)
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "every asset")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", defaultOutDir, "destination directory")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "delete [asset-id...]",
		Short: "Delete assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctrl, err := selectAssets(cmd, app, args, all)
			if err != nil {
				return err
			}

			err = ctrl.BulkDelete(cmd.Context())
			var partial *vault.PartialFailureError
			switch {
			case errors.As(err, &partial):
				fmt.Fprintf(app.out, "Warning: %d item(s) could not be deleted: %v\n", len(partial.Failed), partial.FailedIDs())
			case errors.Is(err, vault.ErrCancelled):
				fmt.Fprintln(app.out, "Nothing deleted")
				return nil
			case err == nil:
				fmt.Fprintln(app.out, "Deleted")
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "every asset")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip confirmation")
	return cmd
}

// selectAssets loads the vault and selects ids, or everything with all.
func selectAssets(cmd *cobra.Command, app *App, ids []string, all bool) (*vault.Controller, error) {
	if !all && len(ids) == 0 {
		return nil, errNoSelection
	}

	ctrl := app.vault()
	if err := ctrl.Load(cmd.Context()); err != nil {
		return nil, err
	}

	if all {
		ctrl.SelectAll()
		return ctrl, nil
	}

	for _, id := range ids {
		if ctrl.IsSelected(id) {
			continue
		}
		ctrl.Toggle(id)
		if !ctrl.IsSelected(id) {
			return nil, fmt.Errorf("asset %s not found", id)
		}
	}
	return ctrl, nil
}

func printAssets(out io.Writer, list []asset.Asset) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No assets")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tFORMAT\tSIZE\tCREATED\tTITLE")
	for _, a := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", a.ID, a.Type, a.Format, a.Size, a.CreatedAt.Format("2006-01-02 15:04"), a.Title)
	}
	return tw.Flush()
}
