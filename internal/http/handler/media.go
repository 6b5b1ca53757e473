package handler

import (
	"net/http"
	"strings"

	"client-vault/internal/storage/s3"
	"client-vault/pkg/validator"

	"github.com/labstack/echo/v4"
)

type MediaHandler struct {
	media         MediaStore
	maxUploadSize int64
}

func NewMediaHandler(media MediaStore, maxUploadSize int64) *MediaHandler {
	return &MediaHandler{
		media:         media,
		maxUploadSize: maxUploadSize,
	}
}

// Upload stores one multipart file and returns its durable URL. It does not
// create an asset record.
func (h *MediaHandler) Upload(c echo.Context) error {
	ownerID, err := resolveOwner(c, c.FormValue(formFieldOwnerID))
	if err != nil {
		return handleHTTPError(c, err)
	}

	fh, err := c.FormFile(formFieldFile)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgFileRequired)
	}

	name := strings.TrimSpace(fh.Filename)
	if err := validator.FileName(name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	if err := validator.FileSize(fh.Size, h.maxUploadSize); err != nil {
		return respondError(c, http.StatusRequestEntityTooLarge, err.Error())
	}

	contentType := strings.TrimSpace(fh.Header.Get(echo.HeaderContentType))
	if err := validator.ContentType(contentType); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	src, err := fh.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgOpenUploadFail)
	}
	defer src.Close()

	key := s3.BuildObjectKey(ownerID, name)
	url, err := h.media.Upload(c.Request().Context(), key, contentType, src)
	if err != nil {
		c.Logger().Errorf("Failed to upload %s for owner %s: %v", name, ownerID, err)
		return respondError(c, http.StatusBadGateway, msgUploadMediaFail)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		jsonKeyURL: url,
		jsonKeyKey: key,
	})
}
