package db

import (
	"context"
	"time"

	"github.com/kitforge/backend/internal/model"
)

const revokeAllRefreshTokensQuery = `
	UPDATE refresh_tokens
	SET is_revoked = TRUE, revoked_at = $2
	WHERE user_id = $1 AND is_revoked = FALSE
`

func (db *Postgres) InsertRefreshToken(ctx context.Context, t model.NewRefreshToken, at time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, session_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.Pool.Exec(ctx, query, t.UserID, t.SessionID, t.Token, t.ExpiresAt, at)
	return translate(err)
}

func (db *Postgres) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `
		SELECT id, user_id, session_id, token, is_revoked, revoked_at, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`
	var rt model.RefreshToken
	err := db.Pool.QueryRow(ctx, query, token).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.SessionID,
		&rt.Token,
		&rt.IsRevoked,
		&rt.RevokedAt,
		&rt.ExpiresAt,
		&rt.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &rt, nil
}

// RotateRefreshToken revokes oldID and stores next atomically. The revoke is
// conditional on the row still being live, so two concurrent rotations of the
// same token cannot both succeed; the loser gets ErrAlreadyConsumed.
func (db *Postgres) RotateRefreshToken(ctx context.Context, oldID int64, next model.NewRefreshToken, at time.Time) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET is_revoked = TRUE, revoked_at = $2
		WHERE id = $1 AND is_revoked = FALSE
	`, oldID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrAlreadyConsumed
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, session_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, next.UserID, next.SessionID, next.Token, next.ExpiresAt, at); err != nil {
		return translate(err)
	}

	return tx.Commit(ctx)
}

// RevokeRefreshToken is idempotent: unknown or already revoked tokens are not an error.
func (db *Postgres) RevokeRefreshToken(ctx context.Context, token string, at time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET is_revoked = TRUE, revoked_at = $2
		WHERE token = $1 AND is_revoked = FALSE
	`, token, at)
	return err
}

func (db *Postgres) RevokeAllRefreshTokens(ctx context.Context, userID int64, at time.Time) error {
	_, err := db.Pool.Exec(ctx, revokeAllRefreshTokensQuery, userID, at)
	return err
}
