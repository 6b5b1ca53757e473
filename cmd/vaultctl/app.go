package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"client-vault/internal/client/admin"
	"client-vault/internal/client/api"
	"client-vault/internal/client/credential"
	"client-vault/internal/client/guard"
	"client-vault/internal/client/session"
	"client-vault/internal/client/vault"
	"client-vault/internal/domain/identity"
)

const (
	envAPIURL     = "VAULT_API_URL"
	envStateDB    = "VAULT_STATE_DB"
	defaultAPIURL = "http://localhost:8080"
	stateDirName  = "client-vault"
	stateFileName = "credentials.db"
	defaultOutDir = "."
)

type options struct {
	apiURL  string
	stateDB string
	admin   bool
	verbose bool
	yes     bool
	outDir  string
}

// App wires the client core for one command invocation.
type App struct {
	opts   *options
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger

	api   *api.Client
	store *credential.SQLiteStore
	nav   *terminalNavigator
	guard *guard.Guard
}

func newApp(ctx context.Context, opts *options, in io.Reader, out, errOut io.Writer) (*App, error) {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	path := opts.stateDB
	if path == "" {
		var err error
		if path, err = defaultStatePath(); err != nil {
			return nil, err
		}
	}

	store, err := credential.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	nav := &terminalNavigator{out: errOut}
	return &App{
		opts:   opts,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
		api:    api.New(opts.apiURL),
		store:  store,
		nav:    nav,
		guard:  guard.New(store, nav, logger),
	}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) role() identity.Role {
	if a.opts.admin {
		return identity.RoleAdmin
	}
	return identity.RoleClient
}

func (a *App) reconciler(role identity.Role) *session.Reconciler {
	return session.NewReconciler(role, a.api, a.store, a.nav, a.logger)
}

func (a *App) confirmer() *terminalConfirmer {
	return &terminalConfirmer{in: a.in, out: a.out, assumeYes: a.opts.yes}
}

func (a *App) vault() *vault.Controller {
	return vault.NewController(vault.Deps{
		API:       a.api,
		Guard:     a.guard,
		Confirmer: a.confirmer(),
		Saver:     &dirSaver{dir: a.opts.outDir},
		Opener:    &printOpener{out: a.out},
		Logger:    a.logger,
	}, vault.DefaultPolicy())
}

func (a *App) admin() *admin.Manager {
	return admin.NewManager(a.api, a.guard, a.confirmer(), admin.DefaultPolicy(), a.logger)
}

func defaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, stateDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
