package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kitforge/backend/internal/db"
	"github.com/kitforge/backend/internal/model"
)

const revokeAllRefreshTokensQuery = `
	UPDATE refresh_tokens
	SET is_revoked = 1, revoked_at = ?
	WHERE user_id = ? AND is_revoked = 0
`

const insertRefreshTokenQuery = `
	INSERT INTO refresh_tokens (user_id, session_id, token, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?)
`

func (s *Storage) InsertRefreshToken(ctx context.Context, t model.NewRefreshToken, at time.Time) error {
	_, err := s.db.ExecContext(ctx, insertRefreshTokenQuery, t.UserID, t.SessionID, t.Token, t.ExpiresAt, at)
	return translate(err)
}

func (s *Storage) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `
		SELECT id, user_id, session_id, token, is_revoked, revoked_at, expires_at, created_at
		FROM refresh_tokens
		WHERE token = ?
	`
	var rt model.RefreshToken
	err := s.db.QueryRowContext(ctx, query, token).Scan(
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

// RotateRefreshToken revokes oldID only if it is still live, then stores next.
func (s *Storage) RotateRefreshToken(ctx context.Context, oldID int64, next model.NewRefreshToken, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE refresh_tokens
			SET is_revoked = 1, revoked_at = ?
			WHERE id = ? AND is_revoked = 0
		`, at, oldID)
		if err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		if err := expectOne(res, db.ErrAlreadyConsumed); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insertRefreshTokenQuery, next.UserID, next.SessionID, next.Token, next.ExpiresAt, at)
		return translate(err)
	})
}

func (s *Storage) RevokeRefreshToken(ctx context.Context, token string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET is_revoked = 1, revoked_at = ?
		WHERE token = ? AND is_revoked = 0
	`, at, token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *Storage) RevokeAllRefreshTokens(ctx context.Context, userID int64, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, revokeAllRefreshTokensQuery, at, userID); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}
