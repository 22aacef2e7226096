package db

import (
	"context"
	"time"

	"github.com/kitforge/backend/internal/model"
)

const supersedeResetsQuery = `
	UPDATE password_resets
	SET status = 'SUPERSEDED'
	WHERE user_id = $1 AND status = 'PENDING'
`

// CreatePasswordReset stores a new pending reset and supersedes the user's older ones.
func (db *Postgres) CreatePasswordReset(ctx context.Context, r model.PasswordReset) (*model.PasswordReset, error) {
	if r.Status == "" {
		r.Status = model.ResetPending
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, supersedeResetsQuery, r.UserID); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO password_resets (user_id, token, email, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := tx.QueryRow(ctx, query, r.UserID, r.Token, r.Email, string(r.Status), r.ExpiresAt, r.CreatedAt).Scan(&r.ID); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *Postgres) GetPasswordResetByToken(ctx context.Context, token string) (*model.PasswordReset, error) {
	query := `
		SELECT id, user_id, token, email, status, expires_at, created_at, used_at
		FROM password_resets
		WHERE token = $1
	`
	var r model.PasswordReset
	var status string
	err := db.Pool.QueryRow(ctx, query, token).Scan(
		&r.ID,
		&r.UserID,
		&r.Token,
		&r.Email,
		&status,
		&r.ExpiresAt,
		&r.CreatedAt,
		&r.UsedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	r.Status = model.ResetStatus(status)
	return &r, nil
}

// ConsumePasswordReset marks the reset used, stores the new hash, retires any other
// pending reset and revokes every refresh token of the user.
// Returns ErrAlreadyConsumed if the reset is no longer pending.
func (db *Postgres) ConsumePasswordReset(ctx context.Context, resetID, userID int64, passwordHash string, at time.Time) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE password_resets
		SET status = 'USED', used_at = $2
		WHERE id = $1 AND status = 'PENDING'
	`, resetID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrAlreadyConsumed
	}

	tag, err = tx.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, userID, passwordHash, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, supersedeResetsQuery, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, revokeAllRefreshTokensQuery, userID, at); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
