package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kitforge/backend/internal/db"
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

func (s *Storage) CreateUser(ctx context.Context, u model.NewUser, at time.Time) (*model.User, error) {
	var verifiedAt *time.Time
	if u.IsEmailVerified {
		verifiedAt = &at
	}
	query := `
		INSERT INTO users (email, username, password_hash, first_name, last_name, role, is_email_verified, email_verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + userColumns
	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		string(u.Role),
		u.IsEmailVerified,
		verifiedAt,
		at,
		at,
	))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *Storage) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = ?`, arg))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *Storage) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return s.getUser(ctx, "id", userID)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, "username", username)
}

func (s *Storage) UpdateUserProfile(ctx context.Context, userID int64, upd model.ProfileUpdate, at time.Time) (*model.User, error) {
	query := `
		UPDATE users
		SET
			first_name = COALESCE(?, first_name),
			last_name = COALESCE(?, last_name),
			username = COALESCE(?, username),
			avatar = COALESCE(?, avatar),
			updated_at = ?
		WHERE id = ?
		RETURNING ` + userColumns
	user, err := scanUser(s.db.QueryRowContext(ctx, query, upd.FirstName, upd.LastName, upd.Username, upd.Avatar, at, userID))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *Storage) UpdateUserLastLogin(ctx context.Context, userID int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, at, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return expectOne(res, db.ErrNotFound)
}

func (s *Storage) SetUserActive(ctx context.Context, userID int64, active bool, at time.Time) (*model.User, error) {
	query := `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ? RETURNING ` + userColumns
	user, err := scanUser(s.db.QueryRowContext(ctx, query, active, at, userID))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *Storage) ReplacePassword(ctx context.Context, userID int64, passwordHash string, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, at, userID)
		if err != nil {
			return err
		}
		if err := expectOne(res, db.ErrNotFound); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, revokeAllRefreshTokensQuery, at, userID)
		return err
	})
}

func (s *Storage) ListUsers(ctx context.Context, page model.PageRequest) (model.Page[model.User], error) {
	result := model.Page[model.User]{PageRequest: page, Items: []model.User{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`, page.Limit, page.Offset())
	if err != nil {
		return result, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return result, fmt.Errorf("failed to scan user: %w", err)
		}
		result.Items = append(result.Items, *user)
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}
