// Package admin is the operator-facing asset manager: browse, upload and
// delete assets on behalf of a chosen client account.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"sync"

	"client-vault/internal/client/api"
	"client-vault/internal/client/guard"
	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/identity"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultUploadConcurrency = 8
	// DefaultSoftLimit bounds one upload action.
	DefaultSoftLimit = 50
)

var (
	ErrValidation = errors.New("validation failed")
	ErrCancelled  = errors.New("cancelled")
)

type AssetAPI interface {
	ListAssets(ctx context.Context, token, ownerID string) ([]asset.Asset, error)
	CreateAsset(ctx context.Context, token string, input asset.CreateAssetInput) (*asset.Asset, error)
	DeleteAsset(ctx context.Context, token, id string) error
	UploadMedia(ctx context.Context, token, ownerID, name, contentType string, body io.Reader) (string, error)
	ListClients(ctx context.Context, token string) ([]identity.ClientIdentity, error)
}

type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type Policy struct {
	UploadConcurrency int
	SoftLimit         int
}

func DefaultPolicy() Policy {
	return Policy{UploadConcurrency: DefaultUploadConcurrency, SoftLimit: DefaultSoftLimit}
}

// UploadFile is one file picked for upload. Open is called once, from the
// upload job.
type UploadFile struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// UploadResult is the outcome of one UploadJob: Asset on success, Err
// otherwise.
type UploadResult struct {
	File  UploadFile
	Asset *asset.Asset
	Err   error
}

// Failures returns the failed results in input order.
func Failures(results []UploadResult) []UploadResult {
	var out []UploadResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

type Manager struct {
	api     AssetAPI
	guard   *guard.Guard
	confirm Confirmer
	policy  Policy
	logger  *slog.Logger

	mu        sync.Mutex
	clientID  string
	assets    []asset.Asset
	loading   bool
	uploading bool
}

func NewManager(assetAPI AssetAPI, g *guard.Guard, confirm Confirmer, policy Policy, logger *slog.Logger) *Manager {
	if policy.UploadConcurrency <= 0 {
		policy.UploadConcurrency = DefaultUploadConcurrency
	}
	if policy.SoftLimit <= 0 {
		policy.SoftLimit = DefaultSoftLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		api:     assetAPI,
		guard:   g,
		confirm: confirm,
		policy:  policy,
		logger:  logger.With("view", "admin"),
	}
}

// Clients lists the client accounts an operator can manage.
func (m *Manager) Clients(ctx context.Context) ([]identity.ClientIdentity, error) {
	id, err := m.guard.Require(ctx, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	clients, err := m.api.ListClients(ctx, id.Token)
	if err != nil {
		return nil, m.fail(ctx, err)
	}
	return clients, nil
}

// Open loads clientID's assets with the operator's own credential.
func (m *Manager) Open(ctx context.Context, clientID string) error {
	id, err := m.guard.Require(ctx, identity.RoleAdmin)
	if err != nil {
		return err
	}
	if clientID == "" {
		return fmt.Errorf("%w: no client selected", ErrValidation)
	}

	m.setFlag(&m.loading, true)
	defer m.setFlag(&m.loading, false)

	list, err := m.api.ListAssets(ctx, id.Token, clientID)
	if err != nil {
		m.logger.Error("load client assets", "client_id", clientID, "err", err)
		return m.fail(ctx, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientID = clientID
	m.assets = append([]asset.Asset(nil), list...)
	return nil
}

// Upload runs one independent job per file: store the bytes, then register
// the asset for the open client. A failed job never cancels its siblings.
// Created assets are prepended to the list in input order; the returned
// slice has one result per file.
func (m *Manager) Upload(ctx context.Context, files []UploadFile) ([]UploadResult, error) {
	id, err := m.guard.Require(ctx, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	clientID := m.clientID
	m.mu.Unlock()

	if err := m.validate(clientID, files); err != nil {
		return nil, err
	}

	m.setFlag(&m.uploading, true)
	defer m.setFlag(&m.uploading, false)

	results := make([]UploadResult, len(files))
	g := new(errgroup.Group)
	g.SetLimit(m.policy.UploadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			a, err := m.uploadOne(ctx, id.Token, clientID, f)
			results[i] = UploadResult{File: f, Asset: a, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var created []asset.Asset
	for _, r := range results {
		if r.Err == nil {
			created = append(created, *r.Asset)
			continue
		}
		m.logger.Warn("upload failed", "client_id", clientID, "file", r.File.Name, "err", r.Err)
		if errors.Is(r.Err, api.ErrAuthorizationDenied) {
			return results, m.fail(ctx, r.Err)
		}
	}

	m.mu.Lock()
	if m.clientID == clientID {
		m.assets = append(created, m.assets...)
	}
	m.mu.Unlock()

	m.logger.Info("upload finished", "client_id", clientID, "created", len(created), "failed", len(files)-len(created))
	return results, nil
}

func (m *Manager) validate(clientID string, files []UploadFile) error {
	switch {
	case clientID == "":
		return fmt.Errorf("%w: no client selected", ErrValidation)
	case len(files) == 0:
		return fmt.Errorf("%w: no files selected", ErrValidation)
	case len(files) > m.policy.SoftLimit:
		return fmt.Errorf("%w: %d files exceed the limit of %d per upload", ErrValidation, len(files), m.policy.SoftLimit)
	}

	for i, f := range files {
		if f.Name == "" || f.Open == nil {
			return fmt.Errorf("%w: file #%d has no name or content", ErrValidation, i+1)
		}
	}
	return nil
}

func (m *Manager) uploadOne(ctx context.Context, token, clientID string, f UploadFile) (*asset.Asset, error) {
	contentType := f.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(f.Name))
	}

	body, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer body.Close()

	counted := &countingReader{r: body}
	url, err := m.api.UploadMedia(ctx, token, clientID, f.Name, contentType, counted)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", f.Name, err)
	}

	created, err := m.api.CreateAsset(ctx, token, asset.CreateAssetInput{
		OwnerID: clientID,
		Title:   f.Name,
		Type:    asset.Classify(contentType),
		URL:     url,
		Format:  asset.Format(f.Name),
		Size:    counted.n,
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", f.Name, err)
	}
	return created, nil
}

// Delete removes one asset of the open client after confirmation.
func (m *Manager) Delete(ctx context.Context, assetID string) error {
	id, err := m.guard.Require(ctx, identity.RoleAdmin)
	if err != nil {
		return err
	}

	m.mu.Lock()
	var target *asset.Asset
	for i := range m.assets {
		if m.assets[i].ID == assetID {
			a := m.assets[i]
			target = &a
			break
		}
	}
	m.mu.Unlock()

	if target == nil {
		return fmt.Errorf("%w: asset %s is not in the open list", ErrValidation, assetID)
	}
	if !m.confirm.Confirm(ctx, fmt.Sprintf("Delete %q? This cannot be undone.", target.Title)) {
		return ErrCancelled
	}

	if err := m.api.DeleteAsset(ctx, id.Token, assetID); err != nil && !errors.Is(err, api.ErrNotFound) {
		m.logger.Error("delete asset", "asset_id", assetID, "err", err)
		return m.fail(ctx, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.assets {
		if m.assets[i].ID == assetID {
			m.assets = append(m.assets[:i:i], m.assets[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Manager) Assets() []asset.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]asset.Asset(nil), m.assets...)
}

func (m *Manager) ClientID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientID
}

func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) Uploading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploading
}

func (m *Manager) Logout(ctx context.Context) {
	m.reset()
	m.guard.Expel(ctx, identity.RoleAdmin)
}

// fail forces admin re-authentication on authorization denial.
func (m *Manager) fail(ctx context.Context, err error) error {
	if errors.Is(err, api.ErrAuthorizationDenied) {
		m.reset()
	}
	return m.guard.Check(ctx, identity.RoleAdmin, err)
}

func (m *Manager) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientID = ""
	m.assets = nil
}

func (m *Manager) setFlag(flag *bool, v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*flag = v
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
