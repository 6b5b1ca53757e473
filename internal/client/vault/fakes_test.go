package vault

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"client-vault/internal/client/api"
	"client-vault/internal/client/credential"
	"client-vault/internal/client/guard"
	"client-vault/internal/client/nav"
	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/identity"

	"github.com/stretchr/testify/require"
)

var (
	quiet      = slog.New(slog.NewTextHandler(io.Discard, nil))
	errNetwork = errors.New("connection reset")
	denied     = &api.StatusError{StatusCode: 401, Message: "invalid or expired token"}
	signedIn   = identity.ClientIdentity{ID: "client-1", Username: "acme", Token: "tok-1"}
	epoch      = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func testAsset(id string, minute int, typ asset.Type) asset.Asset {
	return asset.Asset{
		ID:        id,
		OwnerID:   signedIn.ID,
		Title:     id + ".bin",
		Type:      typ,
		URL:       "https://cdn.agency.example/" + id,
		Format:    "bin",
		CreatedAt: epoch.Add(time.Duration(minute) * time.Minute),
	}
}

type fakeAssetAPI struct {
	mu        sync.Mutex
	assets    []asset.Asset
	listErr   error
	deleteErr map[string]error
	fetchErr  map[string]error
	deleted   []string
	fetched   []string
	listCalls int
}

func (f *fakeAssetAPI) ListAssets(_ context.Context, token, ownerID string) ([]asset.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]asset.Asset, 0, len(f.assets))
	for _, a := range f.assets {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssetAPI) DeleteAsset(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	for i, a := range f.assets {
		if a.ID == id {
			f.assets = append(f.assets[:i], f.assets[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return &api.StatusError{StatusCode: 404, Message: "asset not found"}
}

func (f *fakeAssetAPI) FetchBinary(_ context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := url[strings.LastIndex(url, "/")+1:]
	f.fetched = append(f.fetched, id)
	if err := f.fetchErr[id]; err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader("content of " + id)), nil
}

type fakeConfirmer struct {
	answer  bool
	prompts []string
}

func (f *fakeConfirmer) Confirm(_ context.Context, prompt string) bool {
	f.prompts = append(f.prompts, prompt)
	return f.answer
}

type fakeSaver struct {
	saved    []string
	contents map[string]string
	paths    []string
}

func (f *fakeSaver) Save(_ context.Context, a asset.Asset, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if f.contents == nil {
		f.contents = make(map[string]string)
	}
	f.saved = append(f.saved, a.ID)
	f.contents[a.ID] = string(raw)
	f.paths = append(f.paths, path)
	return nil
}

type fakeOpener struct {
	opened []string
	err    error
}

func (f *fakeOpener) Open(_ context.Context, url string) error {
	f.opened = append(f.opened, url)
	return f.err
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

type harness struct {
	api     *fakeAssetAPI
	store   *credential.MemoryStore
	nav     *nav.Recorder
	confirm *fakeConfirmer
	saver   *fakeSaver
	opener  *fakeOpener
	sleeper *recordingSleeper
	ctrl    *Controller
}

func newHarness(t *testing.T, assets ...asset.Asset) *harness {
	t.Helper()
	h := &harness{
		api:     &fakeAssetAPI{assets: assets, deleteErr: map[string]error{}, fetchErr: map[string]error{}},
		store:   credential.NewMemoryStore(),
		nav:     &nav.Recorder{},
		confirm: &fakeConfirmer{answer: true},
		saver:   &fakeSaver{},
		opener:  &fakeOpener{},
		sleeper: &recordingSleeper{},
	}
	require.NoError(t, h.store.Set(context.Background(), identity.RoleClient, signedIn))

	h.ctrl = NewController(Deps{
		API:       h.api,
		Guard:     guard.New(h.store, h.nav, quiet),
		Confirmer: h.confirm,
		Saver:     h.saver,
		Opener:    h.opener,
		Sleeper:   h.sleeper.Sleep,
		Logger:    quiet,
	}, DefaultPolicy())
	return h
}

func (h *harness) loaded(t *testing.T) *harness {
	t.Helper()
	require.NoError(t, h.ctrl.Load(context.Background()))
	return h
}

func (h *harness) assertSignedOut(t *testing.T) {
	t.Helper()
	got, err := h.store.Get(context.Background(), identity.RoleClient)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, []identity.Role{identity.RoleClient}, h.nav.Redirects())
}

func ids(list []asset.Asset) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}
