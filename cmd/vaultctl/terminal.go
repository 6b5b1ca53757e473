package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"client-vault/internal/client/nav"
	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/identity"
)

// terminalNavigator turns redirects into a sign-in hint.
type terminalNavigator struct {
	out        io.Writer
	redirected bool
	current    *url.URL
}

func (n *terminalNavigator) RedirectToLogin(role identity.Role) {
	n.redirected = true
	hint := "vaultctl login"
	if role == identity.RoleAdmin {
		hint = "vaultctl login --admin"
	}
	fmt.Fprintf(n.out, "Not signed in (%s). Run `%s` to continue.\n", nav.LoginPath(role), hint)
}

func (n *terminalNavigator) ReplaceURL(u *url.URL) {
	n.current = u
}

type terminalConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func (c *terminalConfirmer) Confirm(_ context.Context, prompt string) bool {
	if c.assumeYes {
		return true
	}
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// dirSaver copies downloaded files into dir, never overwriting.
type dirSaver struct {
	dir string
}

func (s *dirSaver) Save(_ context.Context, a asset.Asset, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	dst, err := createUnique(s.dir, fileNameFor(a))
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return err
	}
	return dst.Close()
}

func fileNameFor(a asset.Asset) string {
	name := filepath.Base(strings.ReplaceAll(a.Title, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = a.ID
	}
	if a.Format != "" && asset.Format(name) == "" {
		name += "." + a.Format
	}
	return name
}

func createUnique(dir, name string) (*os.File, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		return f, err
	}
}

// printOpener prints the direct link for the user to open.
type printOpener struct {
	out io.Writer
}

func (o *printOpener) Open(_ context.Context, link string) error {
	_, err := fmt.Fprintf(o.out, "Could not download, open directly: %s\n", link)
	return err
}
