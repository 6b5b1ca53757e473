// Package vault is the client-facing asset view: load the signed-in client's
// assets, keep a selection, and run bulk download and bulk delete over it.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"client-vault/internal/client/api"
	"client-vault/internal/client/guard"
	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/identity"

	"golang.org/x/sync/errgroup"
)

const (
	opBulkDelete   = "bulk delete"
	tempFilePrefix = "vault-*"
)

type AssetAPI interface {
	ListAssets(ctx context.Context, token, ownerID string) ([]asset.Asset, error)
	DeleteAsset(ctx context.Context, token, id string) error
	FetchBinary(ctx context.Context, url string) (io.ReadCloser, error)
}

// Confirmer gates destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Saver hands a downloaded temporary file to the user. The file is removed
// once Save returns.
type Saver interface {
	Save(ctx context.Context, a asset.Asset, path string) error
}

// Opener is the direct-link fallback when content cannot be fetched.
type Opener interface {
	Open(ctx context.Context, url string) error
}

type Deps struct {
	API       AssetAPI
	Guard     *guard.Guard
	Confirmer Confirmer
	Saver     Saver
	Opener    Opener
	Sleeper   Sleeper
	Logger    *slog.Logger
}

type Controller struct {
	deps   Deps
	policy Policy

	mu        sync.Mutex
	assets    []asset.Asset
	selection map[string]struct{}
	loading   bool
}

func NewController(deps Deps, policy Policy) *Controller {
	if deps.Sleeper == nil {
		deps.Sleeper = sleepContext
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = deps.Logger.With("view", "vault")

	return &Controller{
		deps:      deps,
		policy:    policy.normalized(),
		selection: make(map[string]struct{}),
	}
}

// Load fetches the signed-in client's own assets.
func (c *Controller) Load(ctx context.Context) error {
	id, err := c.deps.Guard.Require(ctx, identity.RoleClient)
	if err != nil {
		return err
	}

	c.setLoading(true)
	defer c.setLoading(false)

	list, err := c.deps.API.ListAssets(ctx, id.Token, id.ID)
	if err != nil {
		c.deps.Logger.Error("load assets", "err", err)
		if errors.Is(err, api.ErrAuthorizationDenied) {
			c.reset()
		}
		return c.deps.Guard.Check(ctx, identity.RoleClient, err)
	}

	c.replace(list)
	return nil
}

// Toggle flips id in the selection. Ids not in the loaded list are ignored.
func (c *Controller) Toggle(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.selection[id]; ok {
		delete(c.selection, id)
		return
	}
	if c.indexOf(id) >= 0 {
		c.selection[id] = struct{}{}
	}
}

// SelectAll clears the selection when everything is selected and selects
// every loaded asset otherwise.
func (c *Controller) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Toggle only admits loaded ids and every list replacement prunes the
	// selection, so the selection is always a subset of the list.
	if len(c.selection) == len(c.assets) {
		clear(c.selection)
		return
	}
	for _, a := range c.assets {
		c.selection[a.ID] = struct{}{}
	}
}

func (c *Controller) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selection[id]
	return ok
}

// Selected returns the selected assets ordered by creation time, then id.
func (c *Controller) Selected() []asset.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]asset.Asset, 0, len(c.selection))
	for _, a := range c.assets {
		if _, ok := c.selection[a.ID]; ok {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (c *Controller) Assets() []asset.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]asset.Asset(nil), c.assets...)
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Logout drops the client credential and everything loaded with it.
func (c *Controller) Logout(ctx context.Context) {
	c.reset()
	c.deps.Guard.Expel(ctx, identity.RoleClient)
}

// DownloadReport lists the outcome of each item of a bulk download.
type DownloadReport struct {
	Saved  []string
	Opened []string
	Failed map[string]error
}

// BulkDownload saves the selected assets one at a time, waiting the policy
// delay between items. An item whose content cannot be fetched or saved
// falls back to the Opener; the remaining items still run. Media URLs are
// fetched without the vault credential, so a refusal from the media host
// never signs the client out.
func (c *Controller) BulkDownload(ctx context.Context) (*DownloadReport, error) {
	if _, err := c.deps.Guard.Require(ctx, identity.RoleClient); err != nil {
		return nil, err
	}

	items := c.Selected()
	if len(items) == 0 {
		return nil, ErrNothingSelected
	}

	report := &DownloadReport{Failed: make(map[string]error)}
	for i, a := range items {
		if i > 0 {
			if err := c.deps.Sleeper(ctx, c.policy.DownloadDelay); err != nil {
				return report, err
			}
		}

		err := c.download(ctx, a)
		if err == nil {
			report.Saved = append(report.Saved, a.ID)
			continue
		}

		c.deps.Logger.Warn("download failed, opening direct link", "asset_id", a.ID, "err", err)
		if openErr := c.deps.Opener.Open(ctx, a.URL); openErr != nil {
			report.Failed[a.ID] = fmt.Errorf("%w; open: %w", err, openErr)
			continue
		}
		report.Opened = append(report.Opened, a.ID)
	}

	return report, nil
}

func (c *Controller) download(ctx context.Context, a asset.Asset) error {
	body, err := c.deps.API.FetchBinary(ctx, a.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	pattern := tempFilePrefix
	if a.Format != "" {
		pattern += "." + a.Format
	}
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return err
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return c.deps.Saver.Save(ctx, a, path)
}

// BulkDelete deletes every selected asset in parallel after confirmation.
// On full success the items leave the list and the selection is cleared.
// Otherwise the list is refetched and a *PartialFailureError is returned;
// failed items stay selected for a retry.
func (c *Controller) BulkDelete(ctx context.Context) error {
	id, err := c.deps.Guard.Require(ctx, identity.RoleClient)
	if err != nil {
		return err
	}

	items := c.Selected()
	if len(items) == 0 {
		return ErrNothingSelected
	}

	if !c.deps.Confirmer.Confirm(ctx, fmt.Sprintf("Delete %d selected asset(s)? This cannot be undone.", len(items))) {
		return ErrCancelled
	}

	var (
		mu      sync.Mutex
		deleted []string
		failed  = make(map[string]error)
		denied  error
	)

	g := new(errgroup.Group)
	g.SetLimit(c.policy.DeleteConcurrency)
	for _, a := range items {
		g.Go(func() error {
			err := c.deps.API.DeleteAsset(ctx, id.Token, a.ID)
			if errors.Is(err, api.ErrNotFound) {
				err = nil
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				deleted = append(deleted, a.ID)
			case errors.Is(err, api.ErrAuthorizationDenied):
				denied = err
				failed[a.ID] = err
			default:
				failed[a.ID] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	if denied != nil {
		c.reset()
		return c.deps.Guard.Check(ctx, identity.RoleClient, denied)
	}

	if len(failed) == 0 {
		c.remove(deleted, true)
		c.deps.Logger.Info("bulk delete", "deleted", len(deleted))
		return nil
	}

	c.deps.Logger.Warn("bulk delete partially failed", "deleted", len(deleted), "failed", len(failed))
	list, err := c.deps.API.ListAssets(ctx, id.Token, id.ID)
	switch {
	case err == nil:
		c.replace(list)
	case errors.Is(err, api.ErrAuthorizationDenied):
		c.reset()
		return c.deps.Guard.Check(ctx, identity.RoleClient, err)
	default:
		c.deps.Logger.Error("refetch after bulk delete", "err", err)
		c.remove(deleted, false)
	}

	return &PartialFailureError{Op: opBulkDelete, Total: len(items), Failed: failed}
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = v
}

// replace installs list and drops selected ids that are no longer present.
func (c *Controller) replace(list []asset.Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.assets = append([]asset.Asset(nil), list...)
	for id := range c.selection {
		if c.indexOf(id) < 0 {
			delete(c.selection, id)
		}
	}
}

func (c *Controller) remove(ids []string, clearSelection bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
		delete(c.selection, id)
	}

	kept := c.assets[:0]
	for _, a := range c.assets {
		if _, ok := gone[a.ID]; !ok {
			kept = append(kept, a)
		}
	}
	c.assets = kept

	if clearSelection {
		clear(c.selection)
	}
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets = nil
	clear(c.selection)
}

// indexOf must be called with mu held.
func (c *Controller) indexOf(id string) int {
	for i, a := range c.assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}
