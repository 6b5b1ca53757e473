package vault

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"client-vault/internal/client/api"
	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeAssets() []asset.Asset {
	return []asset.Asset{
		testAsset("a1", 1, asset.TypeImage),
		testAsset("a2", 2, asset.TypeVideo),
		testAsset("a3", 3, asset.TypeImage),
	}
}

func TestLoad_OwnAssetsOnly(t *testing.T) {
	other := testAsset("x9", 0, asset.TypeImage)
	other.OwnerID = "client-2"
	h := newHarness(t, append(threeAssets(), other)...).loaded(t)

	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(h.ctrl.Assets()))
	assert.False(t, h.ctrl.Loading())
}

func TestLoad_WithoutCredentialRedirects(t *testing.T) {
	h := newHarness(t, threeAssets()...)
	require.NoError(t, h.store.Clear(context.Background(), "client"))

	assert.Error(t, h.ctrl.Load(context.Background()))
	assert.Zero(t, h.api.listCalls)
	assert.Len(t, h.nav.Redirects(), 1)
}

func TestToggle_Idempotent(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.ctrl.Toggle("a1")
	before := ids(h.ctrl.Selected())

	for _, id := range []string{"a1", "a2", "not-loaded", ""} {
		h.ctrl.Toggle(id)
		h.ctrl.Toggle(id)
		assert.Equal(t, before, ids(h.ctrl.Selected()), id)
	}
	assert.False(t, h.ctrl.IsSelected("not-loaded"))
}

func TestSelectAll_ToggleLaw(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		h := newHarness(t, threeAssets()[:n]...).loaded(t)

		h.ctrl.SelectAll()
		assert.Len(t, h.ctrl.Selected(), n)

		h.ctrl.SelectAll()
		assert.Empty(t, h.ctrl.Selected())

		if n > 1 {
			h.ctrl.Toggle("a1")
			h.ctrl.SelectAll()
			assert.Equal(t, ids(h.ctrl.Assets()), ids(h.ctrl.Selected()))
		}
	}
}

func TestSelectAll_AfterListShrinks(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.ctrl.SelectAll()

	h.api.assets = threeAssets()[:2]
	require.NoError(t, h.ctrl.Load(context.Background()))
	assert.Equal(t, []string{"a1", "a2"}, ids(h.ctrl.Selected()))

	h.ctrl.SelectAll()
	assert.Empty(t, h.ctrl.Selected())
}

func TestSelected_OrderedByCreation(t *testing.T) {
	list := []asset.Asset{
		testAsset("b", 5, asset.TypeImage),
		testAsset("c", 1, asset.TypeImage),
		testAsset("a", 5, asset.TypeImage),
	}
	h := newHarness(t, list...).loaded(t)
	h.ctrl.SelectAll()

	assert.Equal(t, []string{"c", "a", "b"}, ids(h.ctrl.Selected()))
}

func TestBulkDownload_SequentialWithDelay(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.ctrl.SelectAll()

	report, err := h.ctrl.BulkDownload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2", "a3"}, report.Saved)
	assert.Equal(t, []string{"a1", "a2", "a3"}, h.saver.saved)
	assert.Equal(t, "content of a2", h.saver.contents["a2"])
	assert.Equal(t, []time.Duration{DefaultDownloadDelay, DefaultDownloadDelay}, h.sleeper.waits)

	for _, p := range h.saver.paths {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "temporary file %s was not released", p)
	}
}

func TestBulkDownload_FailureFallsBackAndContinues(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.api.fetchErr["a2"] = errNetwork
	h.ctrl.SelectAll()

	report, err := h.ctrl.BulkDownload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2", "a3"}, h.api.fetched)
	assert.Equal(t, []string{"a1", "a3"}, report.Saved)
	assert.Equal(t, []string{"a2"}, report.Opened)
	assert.Equal(t, []string{"https://cdn.agency.example/a2"}, h.opener.opened)
	assert.Empty(t, report.Failed)
}

func TestBulkDownload_FallbackFailureIsReported(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.api.fetchErr["a1"] = errNetwork
	h.opener.err = errNetwork
	h.ctrl.SelectAll()

	report, err := h.ctrl.BulkDownload(context.Background())
	require.NoError(t, err)
	assert.Contains(t, report.Failed, "a1")
	assert.Equal(t, []string{"a2", "a3"}, report.Saved)
}

func TestBulkDownload_NothingSelected(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)

	_, err := h.ctrl.BulkDownload(context.Background())
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestBulkDelete_FullSuccess(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.ctrl.SelectAll()

	require.NoError(t, h.ctrl.BulkDelete(context.Background()))
	assert.Empty(t, h.ctrl.Assets())
	assert.Empty(t, h.ctrl.Selected())
	assert.ElementsMatch(t, []string{"a1", "a2", "a3"}, h.api.deleted)
	assert.Len(t, h.confirm.prompts, 1)
}

func TestBulkDelete_Declined(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.confirm.answer = false
	h.ctrl.SelectAll()

	assert.ErrorIs(t, h.ctrl.BulkDelete(context.Background()), ErrCancelled)
	assert.Empty(t, h.api.deleted)
	assert.Len(t, h.ctrl.Selected(), 3)
}

func TestBulkDelete_PartialFailure(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.api.deleteErr["a2"] = errNetwork
	h.ctrl.SelectAll()

	err := h.ctrl.BulkDelete(context.Background())
	var partial *PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []string{"a2"}, partial.FailedIDs())
	assert.Equal(t, 3, partial.Total)
	assert.Contains(t, err.Error(), "1 of 3")

	assert.Equal(t, []string{"a2"}, ids(h.ctrl.Assets()))
	assert.Equal(t, []string{"a2"}, ids(h.ctrl.Selected()))

	delete(h.api.deleteErr, "a2")
	require.NoError(t, h.ctrl.BulkDelete(context.Background()))
	assert.Empty(t, h.ctrl.Assets())
}

func TestBulkDelete_PartialFailureWithoutRefetch(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.api.deleteErr["a2"] = errNetwork
	h.ctrl.SelectAll()
	h.api.listErr = errNetwork

	var partial *PartialFailureError
	require.ErrorAs(t, h.ctrl.BulkDelete(context.Background()), &partial)
	assert.Equal(t, []string{"a2"}, ids(h.ctrl.Assets()))
}

func TestBulkDelete_AlreadyGoneCountsAsDeleted(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.ctrl.SelectAll()
	h.api.assets = h.api.assets[:2]

	require.NoError(t, h.ctrl.BulkDelete(context.Background()))
	assert.Empty(t, h.ctrl.Assets())
}

func TestForcedLogoutOnUnauthorized(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		h := newHarness(t, threeAssets()...)
		h.api.listErr = denied

		assert.ErrorIs(t, h.ctrl.Load(context.Background()), denied)
		h.assertSignedOut(t)
	})

	t.Run("delete", func(t *testing.T) {
		h := newHarness(t, threeAssets()...).loaded(t)
		h.api.deleteErr["a1"] = denied
		h.ctrl.SelectAll()

		assert.ErrorIs(t, h.ctrl.BulkDelete(context.Background()), denied)
		h.assertSignedOut(t)
		assert.Empty(t, h.ctrl.Assets())
		assert.Empty(t, h.ctrl.Selected())
	})
}

// mediaHost serves the vault API from the fake and downloads through a real
// client, so media answers take the production error path.
type mediaHost struct {
	*fakeAssetAPI
	client *api.Client
}

func (m mediaHost) FetchBinary(ctx context.Context, url string) (io.ReadCloser, error) {
	return m.client.FetchBinary(ctx, url)
}

func TestBulkDownload_MediaRefusalFallsBackWithoutSignOut(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/")
		if id == "a2" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<Error><Code>AccessDenied</Code></Error>"))
			return
		}
		_, _ = w.Write([]byte("content of " + id))
	}))
	t.Cleanup(media.Close)

	assets := threeAssets()
	for i := range assets {
		assets[i].URL = media.URL + "/" + assets[i].ID
	}
	h := newHarness(t, assets...)
	h.ctrl.deps.API = mediaHost{fakeAssetAPI: h.api, client: api.New(media.URL)}
	h.loaded(t)
	h.ctrl.SelectAll()

	report, err := h.ctrl.BulkDownload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a3"}, report.Saved)
	assert.Equal(t, []string{"a2"}, report.Opened)
	assert.Equal(t, []string{media.URL + "/a2"}, h.opener.opened)
	assert.Equal(t, "content of a3", h.saver.contents["a3"])

	got, err := h.store.Get(context.Background(), identity.RoleClient)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, h.nav.Redirects())
	assert.Len(t, h.ctrl.Assets(), 3)
}

func TestLogout(t *testing.T) {
	h := newHarness(t, threeAssets()...).loaded(t)
	h.ctrl.SelectAll()

	h.ctrl.Logout(context.Background())
	h.assertSignedOut(t)
	assert.Empty(t, h.ctrl.Assets())
	assert.Empty(t, h.ctrl.Selected())
}
