package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserHandler serves the admin client directory.
type UserHandler struct {
	users ClientLister
}

func NewUserHandler(users ClientLister) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) ListClients(c echo.Context) error {
	if role := c.QueryParam(queryRole); role != "" && role != roleClientFilter {
		return respondError(c, http.StatusBadRequest, msgUnsupportedRoleFilter)
	}

	clients, err := h.users.ListClients(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to list clients: %v", err)
		return respondError(c, http.StatusInternalServerError, msgListClientsFail)
	}

	return c.JSON(http.StatusOK, identities(clients))
}
