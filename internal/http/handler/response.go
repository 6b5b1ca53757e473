package handler

import (
	"net/http"

	"client-vault/internal/domain/identity"
	"client-vault/internal/domain/user"

	"github.com/labstack/echo/v4"
)

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}

func handleHTTPError(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		return respondError(c, he.Code, msg)
	}

	return respondError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// identities projects accounts onto their public shape; never nil so an empty
// directory encodes as [].
func identities(users []*user.User) []identity.ClientIdentity {
	out := make([]identity.ClientIdentity, 0, len(users))
	for _, u := range users {
		out = append(out, u.Identity())
	}
	return out
}
