package session

import (
	"net/url"

	"client-vault/internal/client/nav"
	"client-vault/internal/domain/identity"
)

// CredentialSource is where a page load's identity comes from. It is one of
// SourceURLToken, SourcePersisted or SourceNone.
type CredentialSource interface {
	isCredentialSource()
}

// SourceURLToken is a bearer token handed back by the OAuth redirect.
type SourceURLToken struct {
	Token string
}

// SourcePersisted is an identity already held by the credential store.
type SourcePersisted struct {
	Identity identity.ClientIdentity
}

type SourceNone struct{}

func (SourceURLToken) isCredentialSource()  {}
func (SourcePersisted) isCredentialSource() {}
func (SourceNone) isCredentialSource()      {}

// DetectSource picks the authoritative source: a URL token with the login
// success marker, then a persisted identity, then nothing.
func DetectSource(u *url.URL, persisted *identity.ClientIdentity) CredentialSource {
	if u != nil {
		q := u.Query()
		if token := q.Get(nav.QueryToken); token != "" && q.Get(nav.QueryLogin) == nav.LoginOK {
			return SourceURLToken{Token: token}
		}
	}
	if persisted != nil {
		return SourcePersisted{Identity: *persisted}
	}
	return SourceNone{}
}
