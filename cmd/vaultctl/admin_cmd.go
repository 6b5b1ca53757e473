package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"client-vault/internal/client/admin"

	"github.com/spf13/cobra"
)

func newAdminCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage client assets as an operator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.admin = true
			return cmd.Root().PersistentPreRunE(cmd, args)
		},
	}
	cmd.AddCommand(
		newAdminClientsCmd(),
		newAdminListCmd(),
		newAdminUploadCmd(),
		newAdminDeleteCmd(opts),
	)
	return cmd
}

func newAdminClientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List client accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := appFrom(cmd)
			clients, err := app.admin().Clients(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tCOMPANY")
			for _, c := range clients {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Username, c.Email, c.CompanyName)
			}
			return tw.Flush()
		},
	}
}

func newAdminListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <client-id>",
		Short: "List a client's assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			mgr := app.admin()
			if err := mgr.Open(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printAssets(app.out, mgr.Assets())
		},
	}
}

func newAdminUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <client-id> <file...>",
		Short: "Upload files to a client's vault",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			mgr := app.admin()
			if err := mgr.Open(cmd.Context(), args[0]); err != nil {
				return err
			}

			files := make([]admin.UploadFile, 0, len(args)-1)
			for _, path := range args[1:] {
				files = append(files, localFile(path))
			}

			results, err := mgr.Upload(cmd.Context(), files)
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(app.out, "FAILED  %s: %v\n", r.File.Name, r.Err)
					continue
				}
				fmt.Fprintf(app.out, "OK      %s -> %s\n", r.File.Name, r.Asset.ID)
			}
			if err != nil {
				return err
			}
			if failed := admin.Failures(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d uploads failed", len(failed), len(results))
			}
			return nil
		},
	}
}

func newAdminDeleteCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <client-id> <asset-id>",
		Short: "Delete one of a client's assets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			mgr := app.admin()
			if err := mgr.Open(cmd.Context(), args[0]); err != nil {
				return err
			}

			err := mgr.Delete(cmd.Context(), args[1])
			if errors.Is(err, admin.ErrCancelled) {
				fmt.Fprintln(app.out, "Nothing deleted")
				return nil
			}
			if err == nil {
				fmt.Fprintln(app.out, "Deleted")
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func localFile(path string) admin.UploadFile {
	return admin.UploadFile{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}
