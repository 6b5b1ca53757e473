package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"client-vault/internal/audit"
	"client-vault/internal/auth"
	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/identity"
	"client-vault/internal/domain/user"
	apperrors "client-vault/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	users   []*user.User
	err     error
	created []user.CreateUserInput
}

func (f *fakeUserRepo) add(u *user.User) *user.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users = append(f.users, u)
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, in user.CreateUserInput) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	for _, u := range f.users {
		if u.Username == in.Username {
			f.mu.Unlock()
			return nil, apperrors.UsernameTaken()
		}
		if u.Email == in.Email {
			f.mu.Unlock()
			return nil, apperrors.EmailExists()
		}
	}
	f.created = append(f.created, in)
	f.mu.Unlock()
	return f.add(&user.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CompanyName:  in.CompanyName,
		GoogleID:     in.GoogleID,
	}), nil
}

func (f *fakeUserRepo) find(match func(*user.User) bool) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return f.find(func(u *user.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return f.find(func(u *user.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return f.find(func(u *user.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) ListClients(ctx context.Context) ([]*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*user.User
	for _, u := range f.users {
		if !u.IsAdmin {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) FindOrCreateGoogleUser(ctx context.Context, in user.CreateUserInput) (*user.User, error) {
	if u, err := f.find(func(u *user.User) bool { return u.GoogleID == in.GoogleID || u.Email == in.Email }); err == nil {
		u.GoogleID = in.GoogleID
		return u, nil
	}
	return f.Create(ctx, in)
}

type fakeHasher struct {
	burned int
}

func (h *fakeHasher) Hash(password string) (string, error) { return "hash:" + password, nil }
func (h *fakeHasher) Verify(password, hash string) bool { return hash == "hash:"+password }
func (h *fakeHasher) BurnTime(password string) { h.burned++ }

type fakeTokens struct {
	err error
}

func (t *fakeTokens) Generate(u *user.User) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return "tok-" + u.Username, nil
}

type fakeAssetRepo struct {
	mu      sync.Mutex
	assets  map[string]*asset.Asset
	created []asset.CreateAssetInput
	err     error
}

func newFakeAssetRepo(assets ...*asset.Asset) *fakeAssetRepo {
	f := &fakeAssetRepo{assets: map[string]*asset.Asset{}}
	for _, a := range assets {
		f.assets[a.ID] = a
	}
	return f
}

func (f *fakeAssetRepo) Create(ctx context.Context, in asset.CreateAssetInput) (*asset.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	a := &asset.Asset{
		ID:         uuid.NewString(),
		OwnerID:    in.OwnerID,
		Title:      in.Title,
		Type:       in.Type,
		URL:        in.URL,
		Format:     in.Format,
		Size:       in.Size,
		CreatedAt:  time.Now(),
		StorageKey: in.StorageKey,
	}
	f.assets[a.ID] = a
	return a, nil
}

func (f *fakeAssetRepo) GetByID(ctx context.Context, id string) (*asset.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[id]
	if !ok {
		return nil, apperrors.NotFound("asset not found")
	}
	return a, nil
}

func (f *fakeAssetRepo) ListByOwner(ctx context.Context, ownerID string) ([]*asset.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*asset.Asset
	for _, a := range f.assets {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssetRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assets[id]; !ok {
		return apperrors.NotFound("asset not found")
	}
	delete(f.assets, id)
	return nil
}

type fakeMedia struct {
	uploads map[string][]byte
	types   map[string]string
	deleted []string
	err     error
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{uploads: map[string][]byte{}, types: map[string]string{}}
}

const fakeMediaBase = "https://cdn.agency.example/"

func (m *fakeMedia) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.uploads[key] = data
	m.types[key] = contentType
	return fakeMediaBase + key, nil
}

func (m *fakeMedia) DeleteObject(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return m.err
}

func (m *fakeMedia) KeyForURL(raw string) (string, bool) {
	if !strings.HasPrefix(raw, fakeMediaBase) {
		return "", false
	}
	return strings.TrimPrefix(raw, fakeMediaBase), true
}

type fakeStates struct {
	roles map[string]identity.Role
	err   error
	n     int
}

func (s *fakeStates) Issue(ctx context.Context, role identity.Role, ttl time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.n++
	nonce := "nonce-" + string(rune('a'+s.n))
	s.roles[nonce] = role
	return nonce, nil
}

func (s *fakeStates) Consume(ctx context.Context, nonce string) (identity.Role, error) {
	role, ok := s.roles[nonce]
	if !ok {
		return "", apperrors.NotFound("oauth state not found or expired")
	}
	delete(s.roles, nonce)
	return role, nil
}

type fakeProvider struct {
	profile *auth.GoogleProfile
	err     error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*auth.GoogleProfile, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.profile, nil
}

func newJSONContext(method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func authenticate(c echo.Context, u *user.User) {
	c.Set(auth.ContextKeyUserID, u.ID)
	c.Set(auth.ContextKeyUsername, u.Username)
	c.Set(auth.ContextKeyIsAdmin, u.IsAdmin)
}

func decodeBody[T any](rec *httptest.ResponseRecorder) T {
	var out T
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

type auditEntry struct {
	action     audit.Action
	resourceID string
	status     audit.Status
}

type fakeAudit struct {
	entries []auditEntry
}

func (f *fakeAudit) Record(_ echo.Context, action audit.Action, _ audit.ResourceType, resourceID string, status audit.Status, _ map[string]any) {
	f.entries = append(f.entries, auditEntry{action: action, resourceID: resourceID, status: status})
}
