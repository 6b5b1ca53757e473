package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"client-vault/internal/client/api"
	"client-vault/internal/client/credential"
	"client-vault/internal/client/guard"
	"client-vault/internal/client/nav"
	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	quiet    = slog.New(slog.NewTextHandler(io.Discard, nil))
	operator = identity.ClientIdentity{ID: "admin-1", Username: "ops", IsAdmin: true, Token: "tok-admin"}
	denied   = &api.StatusError{StatusCode: 401, Message: "invalid or expired token"}
)

type fakeAPI struct {
	mu        sync.Mutex
	assets    []asset.Asset
	clients   []identity.ClientIdentity
	createErr map[string]error
	uploadErr map[string]error
	deleteErr error
	listErr   error
	inputs    []asset.CreateAssetInput
	uploads   map[string]string
	sizes     map[string]int
}

func newFakeAPI(existing ...asset.Asset) *fakeAPI {
	return &fakeAPI{
		assets:    existing,
		createErr: map[string]error{},
		uploadErr: map[string]error{},
		uploads:   map[string]string{},
		sizes:     map[string]int{},
	}
}

func (f *fakeAPI) ListAssets(_ context.Context, token, ownerID string) ([]asset.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []asset.Asset
	for _, a := range f.assets {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateAsset(_ context.Context, token string, in asset.CreateAssetInput) (*asset.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[in.Title]; err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	a := asset.Asset{ID: "new-" + in.Title, OwnerID: in.OwnerID, Title: in.Title, Type: in.Type, URL: in.URL, Format: in.Format, Size: in.Size}
	f.assets = append(f.assets, a)
	return &a, nil
}

func (f *fakeAPI) DeleteAsset(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeAPI) UploadMedia(_ context.Context, token, ownerID, name, contentType string, body io.Reader) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[name]; err != nil {
		return "", err
	}
	f.uploads[name] = contentType
	f.sizes[name] = len(raw)
	return "https://cdn.agency.example/" + ownerID + "/" + name, nil
}

func (f *fakeAPI) ListClients(_ context.Context, token string) ([]identity.ClientIdentity, error) {
	return f.clients, f.listErr
}

type stubConfirmer bool

func (s stubConfirmer) Confirm(context.Context, string) bool { return bool(s) }

type fixture struct {
	api   *fakeAPI
	store *credential.MemoryStore
	nav   *nav.Recorder
	mgr   *Manager
}

func newFixture(t *testing.T, confirm bool, existing ...asset.Asset) *fixture {
	t.Helper()
	f := &fixture{api: newFakeAPI(existing...), store: credential.NewMemoryStore(), nav: &nav.Recorder{}}
	require.NoError(t, f.store.Set(context.Background(), identity.RoleAdmin, operator))
	f.mgr = NewManager(f.api, guard.New(f.store, f.nav, quiet), stubConfirmer(confirm), DefaultPolicy(), quiet)
	return f
}

func (f *fixture) assertSignedOut(t *testing.T) {
	t.Helper()
	got, err := f.store.Get(context.Background(), identity.RoleAdmin)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []identity.Role{identity.RoleAdmin}, f.nav.Redirects())
}

func file(name, contentType, body string) UploadFile {
	return UploadFile{
		Name:        name,
		ContentType: contentType,
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func titles(list []asset.Asset) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Title)
	}
	return out
}

var existing = asset.Asset{ID: "old-1", OwnerID: "client-7", Title: "brief.png", Type: asset.TypeImage}

func TestOpen_UsesExplicitOwner(t *testing.T) {
	other := asset.Asset{ID: "x", OwnerID: "client-8", Title: "other.png"}
	f := newFixture(t, true, existing, other)

	require.NoError(t, f.mgr.Open(context.Background(), "client-7"))
	assert.Equal(t, []string{"brief.png"}, titles(f.mgr.Assets()))
	assert.Equal(t, "client-7", f.mgr.ClientID())
	assert.False(t, f.mgr.Loading())
}

func TestOpen_RequiresClient(t *testing.T) {
	f := newFixture(t, true)
	assert.ErrorIs(t, f.mgr.Open(context.Background(), ""), ErrValidation)
}

func TestOpen_NonAdminRedirected(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.store.Set(context.Background(), identity.RoleAdmin, identity.ClientIdentity{ID: "c1", Token: "tok"}))

	assert.ErrorIs(t, f.mgr.Open(context.Background(), "client-7"), guard.ErrAccessDenied)
	f.assertSignedOut(t)
}

func TestUpload_Independence(t *testing.T) {
	f := newFixture(t, true, existing)
	f.api.createErr["two.png"] = errors.New("registration failed")
	require.NoError(t, f.mgr.Open(context.Background(), "client-7"))

	results, err := f.mgr.Upload(context.Background(), []UploadFile{
		file("one.png", "image/png", "1111"),
		file("two.png", "image/png", "22"),
		file("three.mp4", "video/mp4", "333"),
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Asset)
	assert.NoError(t, results[2].Err)

	failed := Failures(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "two.png", failed[0].File.Name)

	assert.Equal(t, []string{"one.png", "three.mp4", "brief.png"}, titles(f.mgr.Assets()))
	assert.False(t, f.mgr.Uploading())
}

func TestUpload_DerivesMetadata(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.mgr.Open(context.Background(), "client-7"))

	_, err := f.mgr.Upload(context.Background(), []UploadFile{
		file("Reel.MP4", "video/mp4", "12345"),
		file("logo.png", "", "ab"),
	})
	require.NoError(t, err)
	require.Len(t, f.api.inputs, 2)

	byTitle := map[string]asset.CreateAssetInput{}
	for _, in := range f.api.inputs {
		byTitle[in.Title] = in
	}

	reel := byTitle["Reel.MP4"]
	assert.Equal(t, "client-7", reel.OwnerID)
	assert.Equal(t, asset.TypeVideo, reel.Type)
	assert.Equal(t, "mp4", reel.Format)
	assert.Equal(t, int64(5), reel.Size)

	logo := byTitle["logo.png"]
	assert.Equal(t, asset.TypeImage, logo.Type)
	assert.Equal(t, int64(2), logo.Size)
	assert.Equal(t, "image/png", f.api.uploads["logo.png"])
	assert.Equal(t, 5, f.api.sizes["Reel.MP4"])
}

func TestUpload_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("no client open", func(t *testing.T) {
		f := newFixture(t, true)
		_, err := f.mgr.Upload(ctx, []UploadFile{file("a.png", "image/png", "x")})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty file list", func(t *testing.T) {
		f := newFixture(t, true)
		require.NoError(t, f.mgr.Open(ctx, "client-7"))
		_, err := f.mgr.Upload(ctx, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("over soft limit", func(t *testing.T) {
		f := newFixture(t, true)
		require.NoError(t, f.mgr.Open(ctx, "client-7"))
		files := make([]UploadFile, DefaultSoftLimit+1)
		for i := range files {
			files[i] = file("f.png", "image/png", "x")
		}
		_, err := f.mgr.Upload(ctx, files)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, f.api.uploads)
	})

	t.Run("missing name", func(t *testing.T) {
		f := newFixture(t, true)
		require.NoError(t, f.mgr.Open(ctx, "client-7"))
		_, err := f.mgr.Upload(ctx, []UploadFile{file("", "image/png", "x")})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpload_UnauthorizedForcesLogout(t *testing.T) {
	f := newFixture(t, true)
	f.api.uploadErr["b.png"] = denied
	require.NoError(t, f.mgr.Open(context.Background(), "client-7"))

	results, err := f.mgr.Upload(context.Background(), []UploadFile{
		file("a.png", "image/png", "x"),
		file("b.png", "image/png", "y"),
	})
	assert.ErrorIs(t, err, api.ErrAuthorizationDenied)
	require.Len(t, results, 2)
	f.assertSignedOut(t)
	assert.Empty(t, f.mgr.Assets())
}

func TestOpen_UnauthorizedForcesLogout(t *testing.T) {
	f := newFixture(t, true)
	f.api.listErr = denied

	assert.ErrorIs(t, f.mgr.Open(context.Background(), "client-7"), denied)
	f.assertSignedOut(t)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed", func(t *testing.T) {
		f := newFixture(t, true, existing)
		require.NoError(t, f.mgr.Open(ctx, "client-7"))
		require.NoError(t, f.mgr.Delete(ctx, "old-1"))
		assert.Empty(t, f.mgr.Assets())
	})

	t.Run("declined", func(t *testing.T) {
		f := newFixture(t, false, existing)
		require.NoError(t, f.mgr.Open(ctx, "client-7"))
		assert.ErrorIs(t, f.mgr.Delete(ctx, "old-1"), ErrCancelled)
		assert.Len(t, f.mgr.Assets(), 1)
	})

	t.Run("already gone", func(t *testing.T) {
		f := newFixture(t, true, existing)
		f.api.deleteErr = &api.StatusError{StatusCode: 404}
		require.NoError(t, f.mgr.Open(ctx, "client-7"))
		require.NoError(t, f.mgr.Delete(ctx, "old-1"))
		assert.Empty(t, f.mgr.Assets())
	})

	t.Run("network failure keeps list", func(t *testing.T) {
		f := newFixture(t, true, existing)
		f.api.deleteErr = errors.New("connection reset")
		require.NoError(t, f.mgr.Open(ctx, "client-7"))
		assert.Error(t, f.mgr.Delete(ctx, "old-1"))
		assert.Len(t, f.mgr.Assets(), 1)
		assert.Empty(t, f.nav.Redirects())
	})

	t.Run("unauthorized", func(t *testing.T) {
		f := newFixture(t, true, existing)
		f.api.deleteErr = denied
		require.NoError(t, f.mgr.Open(ctx, "client-7"))
		assert.ErrorIs(t, f.mgr.Delete(ctx, "old-1"), denied)
		f.assertSignedOut(t)
	})
}

func TestClients(t *testing.T) {
	f := newFixture(t, true)
	f.api.clients = []identity.ClientIdentity{{ID: "client-7", Username: "acme"}}

	got, err := f.mgr.Clients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.api.clients, got)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, true, existing)
	require.NoError(t, f.mgr.Open(context.Background(), "client-7"))

	f.mgr.Logout(context.Background())
	f.assertSignedOut(t)
	assert.Empty(t, f.mgr.Assets())
	assert.Empty(t, f.mgr.ClientID())
}
