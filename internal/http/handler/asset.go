package handler

import (
	"errors"
	"net/http"
	"strings"

	"client-vault/internal/audit"
	"client-vault/internal/auth"
	"client-vault/internal/domain/asset"
	apperrors "client-vault/pkg/errors"
	"client-vault/pkg/validator"

	"github.com/labstack/echo/v4"
)

type AssetHandler struct {
	assetRepo AssetRepository
	media     MediaStore
	audit     AuditRecorder
}

func NewAssetHandler(assetRepo AssetRepository, media MediaStore, recorder AuditRecorder) *AssetHandler {
	return &AssetHandler{
		assetRepo: assetRepo,
		media:     media,
		audit:     auditOrDiscard(recorder),
	}
}

type CreateAssetRequest struct {
	OwnerID string     `json:"ownerId"`
	Title   string     `json:"title"`
	Type    asset.Type `json:"type"`
	URL     string     `json:"url"`
	Format  string     `json:"format"`
	Size    int64      `json:"size"`
}

func (h *AssetHandler) ListAssets(c echo.Context) error {
	ownerID, err := resolveOwner(c, c.QueryParam(queryOwnerID))
	if err != nil {
		return handleHTTPError(c, err)
	}

	assets, err := h.assetRepo.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		c.Logger().Errorf("Failed to list assets for owner %s: %v", ownerID, err)
		return respondError(c, http.StatusInternalServerError, msgListAssetsFail)
	}

	if assets == nil {
		assets = []*asset.Asset{}
	}
	return c.JSON(http.StatusOK, assets)
}

func (h *AssetHandler) CreateAsset(c echo.Context) error {
	var req CreateAssetRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	ownerID, err := resolveOwner(c, req.OwnerID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	req.Title = strings.TrimSpace(req.Title)
	req.URL = strings.TrimSpace(req.URL)
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))

	if err := validator.AssetTitle(req.Title); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	if !req.Type.Valid() {
		return respondError(c, http.StatusBadRequest, msgInvalidAssetType)
	}

	if err := validator.AssetURL(req.URL); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	if req.Size < 0 {
		return respondError(c, http.StatusBadRequest, msgInvalidAssetSize)
	}

	if req.Format == "" {
		req.Format = asset.Format(req.Title)
	}

	input := asset.CreateAssetInput{
		OwnerID: ownerID,
		Title:   req.Title,
		Type:    req.Type,
		URL:     req.URL,
		Format:  req.Format,
		Size:    req.Size,
	}
	if key, ok := h.media.KeyForURL(req.URL); ok {
		if !ownsObject(ownerID, key) {
			return respondError(c, http.StatusBadRequest, msgForeignMediaURL)
		}
		input.StorageKey = key
	}

	created, err := h.assetRepo.Create(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusNotFound, msgOwnerNotFound)
		}
		c.Logger().Errorf("Failed to create asset for owner %s: %v", ownerID, err)
		return respondError(c, http.StatusInternalServerError, msgCreateAssetFail)
	}

	h.audit.Record(c, audit.ActionCreate, audit.ResourceAsset, created.ID, audit.StatusSuccess, map[string]any{
		"owner_id": created.OwnerID,
		"title":    created.Title,
	})
	return c.JSON(http.StatusCreated, created)
}

func (h *AssetHandler) DeleteAsset(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, msgUserNotAuthenticated)
	}

	ctx := c.Request().Context()
	assetID := c.Param(paramID)

	existing, err := h.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusNotFound, msgAssetNotFound)
		}
		return RespondWithMappedError(c, err)
	}

	if !auth.IsAdmin(c) && existing.OwnerID != userID.String() {
		h.audit.Record(c, audit.ActionDelete, audit.ResourceAsset, assetID, audit.StatusDenied, nil)
		return SafeErrorResponse(c, apperrors.Forbidden(msgOwnerForbidden), http.StatusNotFound, msgAssetNotFound)
	}

	if err := h.assetRepo.Delete(ctx, assetID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusNotFound, msgAssetNotFound)
		}
		c.Logger().Errorf("Failed to delete asset %s: %v", assetID, err)
		return respondError(c, http.StatusInternalServerError, msgDeleteAssetFail)
	}

	switch {
	case existing.StorageKey == "":
	case !ownsObject(existing.OwnerID, existing.StorageKey):
		c.Logger().Warnf("Asset %s deleted; object %s is outside the owner's prefix and was kept", assetID, existing.StorageKey)
	default:
		if err := h.media.DeleteObject(ctx, existing.StorageKey); err != nil {
			c.Logger().Warnf("Asset %s deleted but object %s was kept: %v", assetID, existing.StorageKey, err)
		}
	}

	h.audit.Record(c, audit.ActionDelete, audit.ResourceAsset, assetID, audit.StatusSuccess, map[string]any{
		"owner_id": existing.OwnerID,
		"title":    existing.Title,
	})
	return c.NoContent(http.StatusNoContent)
}

// ownsObject reports whether key sits under the owner's media prefix.
func ownsObject(ownerID, key string) bool {
	return ownerID != "" && strings.HasPrefix(key, ownerID+"/")
}
