package postgres

import (
	"context"
	"errors"

	"client-vault/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// FindOrCreateGoogleUser resolves a Google sign-in to a local account inside
// one transaction: match by google id, else link to an existing account with
// the same email, else create a fresh client account.
func (r *UserRepository) FindOrCreateGoogleUser(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, input.GoogleID))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, errFailedGetUser(err)
	}

	linkQuery := `
		UPDATE users SET google_id = $1, updated_at = NOW()
		WHERE email = $2
		RETURNING ` + userColumns
	u, err = scanUser(tx.QueryRow(ctx, linkQuery, input.GoogleID, input.Email))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, errFailedLinkGoogleAccount(err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		insertQuery := `
			INSERT INTO users (username, email, password_hash, company_name, google_id)
			VALUES ($1, $2, '', $3, $4)
			RETURNING ` + userColumns
		u, err = scanUser(tx.QueryRow(ctx, insertQuery, input.Username, input.Email, input.CompanyName, input.GoogleID))
		if err != nil {
			if isUniqueViolation(err) {
				return nil, mapUserConflict(err)
			}
			return nil, errFailedCreateUser(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return u, nil
}
