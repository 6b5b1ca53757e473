package postgres

import (
	"context"
	"errors"

	"client-vault/internal/domain/asset"
	apperrors "client-vault/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const assetColumns = `id::text, owner_id::text, title, type, url, format, size, storage_key, created_at`

type AssetRepository struct {
	db *DB
}

func NewAssetRepository(db *DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func scanAsset(row pgx.Row) (*asset.Asset, error) {
	a := &asset.Asset{}
	err := row.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Type, &a.URL, &a.Format, &a.Size, &a.StorageKey, &a.CreatedAt)
	return a, err
}

func (r *AssetRepository) Create(ctx context.Context, input asset.CreateAssetInput) (*asset.Asset, error) {
	query := `
		INSERT INTO assets (owner_id, title, type, url, format, size, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + assetColumns

	ownerID, err := uuid.Parse(input.OwnerID)
	if err != nil {
		return nil, apperrors.NotFound(errUserNotFound)
	}

	a, err := scanAsset(r.db.Pool.QueryRow(ctx, query,
		ownerID, input.Title, string(input.Type), input.URL, input.Format, input.Size, input.StorageKey,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedCreateAsset(err)
	}

	return a, nil
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (*asset.Asset, error) {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NotFound(errAssetNotFound)
	}

	a, err := scanAsset(r.db.Pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, assetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errAssetNotFound)
		}
		return nil, errFailedGetAsset(err)
	}

	return a, nil
}

func (r *AssetRepository) ListByOwner(ctx context.Context, ownerID string) ([]*asset.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE owner_id = $1 ORDER BY created_at DESC, id`

	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return []*asset.Asset{}, nil
	}

	rows, err := r.db.Pool.Query(ctx, query, owner)
	if err != nil {
		return nil, errFailedListAssets(err)
	}
	defer rows.Close()

	assets := []*asset.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, errFailedScanAsset(err)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListAssets(err)
	}

	return assets, nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.NotFound(errAssetNotFound)
	}

	result, err := r.db.Pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, assetID)
	if err != nil {
		return errFailedDeleteAsset(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errAssetNotFound)
	}

	return nil
}
