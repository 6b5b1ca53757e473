// Package api is the HTTP client for the vault API used by the client core.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"client-vault/internal/domain/asset"
	"client-vault/internal/domain/identity"
)

const (
	DefaultTimeout = 30 * time.Second

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
	bearerPrefix        = "Bearer "
	maxErrorBodyBytes   = 4 << 10

	pathCurrentUser = "/auth/current-user"
	pathLogin       = "/users/login"
	pathRegister    = "/users/register"
	pathUsers       = "/users"
	pathAssets      = "/assets"
	pathMedia       = "/media"
	pathGoogleAuth  = "/auth/google"

	formFieldFile    = "file"
	formFieldOwnerID = "ownerId"
	queryOwnerID     = "ownerId"
	queryRole        = "role"
	queryState       = "state"
	roleClient       = "client"
)

type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName,omitempty"`
}

type mediaResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUser exchanges a bearer token for the identity it belongs to. The
// returned identity never carries the token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*identity.ClientIdentity, error) {
	var out identity.ClientIdentity
	if err := c.doJSON(ctx, http.MethodGet, pathCurrentUser, token, nil, &out); err != nil {
		return nil, err
	}
	out.Token = ""
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*identity.ClientIdentity, error) {
	var out identity.ClientIdentity
	if err := c.doJSON(ctx, http.MethodPost, pathLogin, "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*identity.ClientIdentity, error) {
	var out identity.ClientIdentity
	if err := c.doJSON(ctx, http.MethodPost, pathRegister, "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAssets(ctx context.Context, token, ownerID string) ([]asset.Asset, error) {
	path := pathAssets
	if ownerID != "" {
		path += "?" + url.Values{queryOwnerID: {ownerID}}.Encode()
	}

	var out []asset.Asset
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAsset(ctx context.Context, token string, input asset.CreateAssetInput) (*asset.Asset, error) {
	var out asset.Asset
	if err := c.doJSON(ctx, http.MethodPost, pathAssets, token, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAsset(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, pathAssets+"/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) ListClients(ctx context.Context, token string) ([]identity.ClientIdentity, error) {
	path := pathUsers + "?" + url.Values{queryRole: {roleClient}}.Encode()

	var out []identity.ClientIdentity
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadMedia streams body to the media endpoint and returns the durable URL.
func (c *Client) UploadMedia(ctx context.Context, token, ownerID, name, contentType string, body io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipart(mw, ownerID, name, contentType, body))
	}()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathMedia, pr)
	if err != nil {
		_ = pr.Close()
		return "", err
	}
	defer pr.Close()
	req.Header.Set(headerContentType, mw.FormDataContentType())
	setBearer(req, token)

	var out mediaResponse
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func writeMultipart(mw *multipart.Writer, ownerID, name, contentType string, body io.Reader) error {
	if ownerID != "" {
		if err := mw.WriteField(formFieldOwnerID, ownerID); err != nil {
			return err
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formFieldFile, name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set(headerContentType, contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return mw.Close()
}

// FetchBinary opens an asset's content. The caller must close the reader;
// the request timeout stays armed until then. The media URL carries no
// credential, so a refusal is reported as *FetchError, never as
// ErrAuthorizationDenied.
func (c *Client) FetchBinary(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	ctx, cancel := c.withTimeout(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: GET %s: %w", ErrNetwork, redactURL(rawURL), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		return nil, &FetchError{URL: redactURL(rawURL), StatusCode: resp.StatusCode}
	}

	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

// OAuthURL is the entry point of the Google sign-in flow for role.
func (c *Client) OAuthURL(role identity.Role) string {
	return c.baseURL + pathGoogleAuth + "?" + url.Values{queryState: {string(role)}}.Encode()
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}
	setBearer(req, token)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set(headerAuthorization, bearerPrefix+token)
	}
}

func statusError(resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var body errorResponse
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelOnClose) Close() error {
	defer r.cancel()
	return r.ReadCloser.Close()
}
