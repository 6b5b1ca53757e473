// Package nav abstracts the page the client core runs in: where to send an
// unauthenticated user and how to rewrite the visible URL in place.
package nav

import (
	"net/url"
	"sync"

	"client-vault/internal/domain/identity"
)

const (
	ClientLoginPath = "/login"
	AdminLoginPath  = "/admin/login"

	QueryToken = "token"
	QueryLogin = "login"
	LoginOK    = "success"
)

type Navigator interface {
	// RedirectToLogin leaves the current view for role's login surface.
	RedirectToLogin(role identity.Role)
	// ReplaceURL rewrites the visible location without a reload or a new
	// history entry.
	ReplaceURL(u *url.URL)
}

// LoginPath returns the login surface for role.
func LoginPath(role identity.Role) string {
	if role == identity.RoleAdmin {
		return AdminLoginPath
	}
	return ClientLoginPath
}

// StripCredentials returns a copy of u without the token and login marker.
func StripCredentials(u *url.URL) *url.URL {
	out := *u
	q := out.Query()
	q.Del(QueryToken)
	q.Del(QueryLogin)
	out.RawQuery = q.Encode()
	return &out
}

// Recorder is a Navigator that only remembers what it was asked to do.
type Recorder struct {
	mu        sync.Mutex
	redirects []identity.Role
	current   *url.URL
}

func (r *Recorder) RedirectToLogin(role identity.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, role)
}

func (r *Recorder) ReplaceURL(u *url.URL) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.current = &cp
}

func (r *Recorder) Redirects() []identity.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]identity.Role(nil), r.redirects...)
}

// Current is the last replaced URL, or nil.
func (r *Recorder) Current() *url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
