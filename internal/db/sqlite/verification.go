package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kitforge/backend/internal/db"
	"github.com/kitforge/backend/internal/model"
)

const (
	supersedeVerificationsQuery = `UPDATE email_verifications SET status = 'SUPERSEDED' WHERE user_id = ? AND status = 'PENDING'`
	supersedeResetsQuery        = `UPDATE password_resets SET status = 'SUPERSEDED' WHERE user_id = ? AND status = 'PENDING'`
)

func (s *Storage) CreateEmailVerification(ctx context.Context, v model.EmailVerification) (*model.EmailVerification, error) {
	if v.Status == "" {
		v.Status = model.VerificationPending
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, supersedeVerificationsQuery, v.UserID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO email_verifications (user_id, token, email, status, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, v.UserID, v.Token, v.Email, string(v.Status), v.ExpiresAt, v.CreatedAt)
		if err != nil {
			return translate(err)
		}
		if v.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read verification id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Storage) GetEmailVerificationByToken(ctx context.Context, token string) (*model.EmailVerification, error) {
	var v model.EmailVerification
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, email, status, expires_at, created_at, verified_at
		FROM email_verifications
		WHERE token = ?
	`, token).Scan(&v.ID, &v.UserID, &v.Token, &v.Email, &status, &v.ExpiresAt, &v.CreatedAt, &v.VerifiedAt)
	if err != nil {
		return nil, translate(err)
	}
	v.Status = model.VerificationStatus(status)
	return &v, nil
}

func (s *Storage) MarkEmailVerified(ctx context.Context, verificationID, userID int64, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE email_verifications
			SET status = 'VERIFIED', verified_at = ?
			WHERE id = ? AND status = 'PENDING'
		`, at, verificationID)
		if err != nil {
			return err
		}
		if err := expectOne(res, db.ErrAlreadyConsumed); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, `
			UPDATE users
			SET is_email_verified = 1, email_verified_at = ?, updated_at = ?
			WHERE id = ?
		`, at, at, userID)
		if err != nil {
			return err
		}
		if err := expectOne(res, db.ErrNotFound); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, supersedeVerificationsQuery, userID)
		return err
	})
}

func (s *Storage) CreatePasswordReset(ctx context.Context, r model.PasswordReset) (*model.PasswordReset, error) {
	if r.Status == "" {
		r.Status = model.ResetPending
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, supersedeResetsQuery, r.UserID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO password_resets (user_id, token, email, status, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.UserID, r.Token, r.Email, string(r.Status), r.ExpiresAt, r.CreatedAt)
		if err != nil {
			return translate(err)
		}
		if r.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read reset id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Storage) GetPasswordResetByToken(ctx context.Context, token string) (*model.PasswordReset, error) {
	var r model.PasswordReset
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, email, status, expires_at, created_at, used_at
		FROM password_resets
		WHERE token = ?
	`, token).Scan(&r.ID, &r.UserID, &r.Token, &r.Email, &status, &r.ExpiresAt, &r.CreatedAt, &r.UsedAt)
	if err != nil {
		return nil, translate(err)
	}
	r.Status = model.ResetStatus(status)
	return &r, nil
}

func (s *Storage) ConsumePasswordReset(ctx context.Context, resetID, userID int64, passwordHash string, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE password_resets
			SET status = 'USED', used_at = ?
			WHERE id = ? AND status = 'PENDING'
		`, at, resetID)
		if err != nil {
			return err
		}
		if err := expectOne(res, db.ErrAlreadyConsumed); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, at, userID)
		if err != nil {
			return err
		}
		if err := expectOne(res, db.ErrNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, supersedeResetsQuery, userID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, revokeAllRefreshTokensQuery, at, userID)
		return err
	})
}
