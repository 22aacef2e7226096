package db

import (
	"context"
	"time"

	"github.com/kitforge/backend/internal/model"
)

const supersedeVerificationsQuery = `
	UPDATE email_verifications
	SET status = 'SUPERSEDED'
	WHERE user_id = $1 AND status = 'PENDING'
`

// CreateEmailVerification stores a new pending link and supersedes the user's older ones,
// so only the latest link can verify.
func (db *Postgres) CreateEmailVerification(ctx context.Context, v model.EmailVerification) (*model.EmailVerification, error) {
	if v.Status == "" {
		v.Status = model.VerificationPending
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, supersedeVerificationsQuery, v.UserID); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO email_verifications (user_id, token, email, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := tx.QueryRow(ctx, query, v.UserID, v.Token, v.Email, string(v.Status), v.ExpiresAt, v.CreatedAt).Scan(&v.ID); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &v, nil
}

func (db *Postgres) GetEmailVerificationByToken(ctx context.Context, token string) (*model.EmailVerification, error) {
	query := `
		SELECT id, user_id, token, email, status, expires_at, created_at, verified_at
		FROM email_verifications
		WHERE token = $1
	`
	var v model.EmailVerification
	var status string
	err := db.Pool.QueryRow(ctx, query, token).Scan(
		&v.ID,
		&v.UserID,
		&v.Token,
		&v.Email,
		&status,
		&v.ExpiresAt,
		&v.CreatedAt,
		&v.VerifiedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	v.Status = model.VerificationStatus(status)
	return &v, nil
}

// MarkEmailVerified flips a pending verification and its user in one transaction.
// Returns ErrAlreadyConsumed when the row is no longer pending.
func (db *Postgres) MarkEmailVerified(ctx context.Context, verificationID, userID int64, at time.Time) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE email_verifications
		SET status = 'VERIFIED', verified_at = $2
		WHERE id = $1 AND status = 'PENDING'
	`, verificationID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrAlreadyConsumed
	}

	tag, err = tx.Exec(ctx, `
		UPDATE users
		SET is_email_verified = TRUE, email_verified_at = $2, updated_at = $2
		WHERE id = $1
	`, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, supersedeVerificationsQuery, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
