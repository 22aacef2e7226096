package db

import (
	"context"
	"time"

	"github.com/kitforge/backend/internal/model"
)

const userColumns = `id, email, username, password_hash, first_name, last_name, avatar, role,
	is_active, is_email_verified, email_verified_at, last_login_at, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Avatar,
		&role,
		&user.IsActive,
		&user.IsEmailVerified,
		&user.EmailVerifiedAt,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	return &user, nil
}

func (db *Postgres) CreateUser(ctx context.Context, u model.NewUser, at time.Time) (*model.User, error) {
	var verifiedAt *time.Time
	if u.IsEmailVerified {
		verifiedAt = &at
	}
	query := `
		INSERT INTO users (email, username, password_hash, first_name, last_name, role, is_email_verified, email_verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING ` + userColumns
	user, err := scanUser(db.Pool.QueryRow(ctx, query,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		string(u.Role),
		u.IsEmailVerified,
		verifiedAt,
		at,
	))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(db.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (db *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(db.Pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (db *Postgres) UpdateUserProfile(ctx context.Context, userID int64, upd model.ProfileUpdate, at time.Time) (*model.User, error) {
	query := `
		UPDATE users
		SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			username = COALESCE($4, username),
			avatar = COALESCE($5, avatar),
			updated_at = $6
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(db.Pool.QueryRow(ctx, query, userID, upd.FirstName, upd.LastName, upd.Username, upd.Avatar, at))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (db *Postgres) UpdateUserLastLogin(ctx context.Context, userID int64, at time.Time) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *Postgres) SetUserActive(ctx context.Context, userID int64, active bool, at time.Time) (*model.User, error) {
	query := `UPDATE users SET is_active = $2, updated_at = $3 WHERE id = $1 RETURNING ` + userColumns
	user, err := scanUser(db.Pool.QueryRow(ctx, query, userID, active, at))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// ReplacePassword stores a new hash and revokes every refresh token of the user in one transaction.
func (db *Postgres) ReplacePassword(ctx context.Context, userID int64, passwordHash string, at time.Time) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, userID, passwordHash, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, revokeAllRefreshTokensQuery, userID, at); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (db *Postgres) ListUsers(ctx context.Context, page model.PageRequest) (model.Page[model.User], error) {
	result := model.Page[model.User]{PageRequest: page, Items: []model.User{}}

	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&result.Total); err != nil {
		return result, err
	}

	rows, err := db.Pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, page.Limit, page.Offset())
	if err != nil {
		return result, err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, *user)
	}
	return result, rows.Err()
}
