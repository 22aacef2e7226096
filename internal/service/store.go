package service

import (
	"context"
	"time"

	"github.com/kitforge/backend/internal/model"
)

// CredentialStore is satisfied by both db.Postgres and sqlite.Storage.
type CredentialStore interface {
	CreateUser(ctx context.Context, u model.NewUser, at time.Time) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, userID int64, upd model.ProfileUpdate, at time.Time) (*model.User, error)
	UpdateUserLastLogin(ctx context.Context, userID int64, at time.Time) error
	SetUserActive(ctx context.Context, userID int64, active bool, at time.Time) (*model.User, error)
	ReplacePassword(ctx context.Context, userID int64, passwordHash string, at time.Time) error
	ListUsers(ctx context.Context, page model.PageRequest) (model.Page[model.User], error)

	InsertLoginLog(ctx context.Context, entry model.LoginLog) error
	ListLoginLogs(ctx context.Context, userID int64, page model.PageRequest) (model.Page[model.LoginLog], error)

	CreateEmailVerification(ctx context.Context, v model.EmailVerification) (*model.EmailVerification, error)
	GetEmailVerificationByToken(ctx context.Context, token string) (*model.EmailVerification, error)
	MarkEmailVerified(ctx context.Context, verificationID, userID int64, at time.Time) error

	CreatePasswordReset(ctx context.Context, r model.PasswordReset) (*model.PasswordReset, error)
	GetPasswordResetByToken(ctx context.Context, token string) (*model.PasswordReset, error)
	ConsumePasswordReset(ctx context.Context, resetID, userID int64, passwordHash string, at time.Time) error

	InsertRefreshToken(ctx context.Context, t model.NewRefreshToken, at time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID int64, next model.NewRefreshToken, at time.Time) error
	RevokeRefreshToken(ctx context.Context, token string, at time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID int64, at time.Time) error

	Ping(ctx context.Context) error
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg model.Email) error
}
