package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"client-vault/internal/auth"

	"github.com/labstack/echo/v4"
)

const (
	contentTypeJSON          = "application/json"
	maxStrictBodyBytes int64 = 1 << 20 // Keep parser bound aligned with global body limit.
)

func bindStrictJSON(c echo.Context, dst any) error {
	if !strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), contentTypeJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, msgContentTypeJSONRequired)
	}

	body := io.LimitReader(c.Request().Body, maxStrictBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	return nil
}

// resolveOwner applies the ownership rule shared by asset and media routes:
// a client acts only on itself, an admin must name the target client.
func resolveOwner(c echo.Context, requested string) (string, error) {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, msgUserNotAuthenticated)
	}

	requested = strings.TrimSpace(requested)
	if auth.IsAdmin(c) {
		if requested == "" {
			return "", echo.NewHTTPError(http.StatusBadRequest, msgOwnerIDRequired)
		}
		return requested, nil
	}

	self := userID.String()
	if requested != "" && requested != self {
		return "", echo.NewHTTPError(http.StatusForbidden, msgOwnerForbidden)
	}
	return self, nil
}
