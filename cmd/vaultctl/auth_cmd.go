package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"client-vault/internal/client/api"

	"github.com/spf13/cobra"
)

const envPassword = "VAULT_PASSWORD"

func newLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username|email>",
		Short: "Sign in with a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			pw, err := app.secret(password, "Password")
			if err != nil {
				return err
			}

			id, err := app.reconciler(app.role()).Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Signed in as %s (%s)\n", id.Username, app.role())
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password ($"+envPassword+", prompted when empty)")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var req api.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create a client account and sign in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			req.Username, req.Email = args[0], args[1]

			pw, err := app.secret(req.Password, "Choose a password")
			if err != nil {
				return err
			}
			req.Password = pw

			id, err := app.reconciler(app.role()).Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Account %s created\n", id.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password ($"+envPassword+", prompted when empty)")
	cmd.Flags().StringVar(&req.CompanyName, "company", "", "company name")
	return cmd
}

func newOAuthURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "oauth-url",
		Short: "Print the Google sign-in URL; finish with `vaultctl reconcile <callback-url>`",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := appFrom(cmd)
			fmt.Fprintln(app.out, app.api.OAuthURL(app.role()))
			return nil
		},
	}
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [redirect-url]",
		Short: "Resolve the session from a sign-in redirect URL or the stored credential",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			page := &url.URL{}
			if len(args) == 1 {
				u, err := url.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid url: %w", err)
				}
				page = u
			}

			id, err := app.reconciler(app.role()).Reconcile(cmd.Context(), page)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Signed in as %s (%s)\n", id.Username, app.role())
			if app.nav.current != nil {
				fmt.Fprintf(app.out, "Continue at %s\n", app.nav.current)
			}
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := appFrom(cmd)
			id, err := app.guard.Require(cmd.Context(), app.role())
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "id:       %s\nusername: %s\nemail:    %s\n", id.ID, id.Username, id.Email)
			if id.CompanyName != "" {
				fmt.Fprintf(app.out, "company:  %s\n", id.CompanyName)
			}
			fmt.Fprintf(app.out, "admin:    %t\n", id.IsAdmin)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := appFrom(cmd)
			if app.opts.admin {
				app.admin().Logout(cmd.Context())
			} else {
				app.vault().Logout(cmd.Context())
			}
			return nil
		},
	}
}

// secret returns flag, then $VAULT_PASSWORD, then a line read from stdin.
func (a *App) secret(flag, prompt string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv(envPassword); v != "" {
		return v, nil
	}

	fmt.Fprintf(a.out, "%s: ", prompt)
	line, err := a.in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("password is required")
	}
	return line, nil
}
