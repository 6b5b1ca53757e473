package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

type appKey struct{}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Access the agency client vault",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), opts, in, out, errOut)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return appFrom(cmd).Close()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api", envOr(envAPIURL, defaultAPIURL), "vault API base URL ($"+envAPIURL+")")
	flags.StringVar(&opts.stateDB, "state", envOr(envStateDB, ""), "credential database path ($"+envStateDB+")")
	flags.BoolVar(&opts.admin, "admin", false, "act on the admin credential")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newOAuthURLCmd(),
		newReconcileCmd(),
		newWhoamiCmd(),
		newLogoutCmd(),
		newListCmd(),
		newDownloadCmd(opts),
		newDeleteCmd(opts),
		newAdminCmd(opts),
	)
	return root
}

func appFrom(cmd *cobra.Command) *App {
	return cmd.Context().Value(appKey{}).(*App)
}
