package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kitforge/backend/internal/db"
	"github.com/kitforge/backend/internal/model"
)

// UserService backs the admin endpoints.
type UserService struct {
	store CredentialStore
	log   *slog.Logger
	now   func() time.Time
}

func NewUserService(store CredentialStore, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{store: store, log: log.With("component", "users"), now: time.Now}
}

func (s *UserService) ListUsers(ctx context.Context, page model.PageRequest) (model.Page[model.PublicUser], error) {
	users, err := s.store.ListUsers(ctx, page)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to list users", "error", err)
		return model.Page[model.PublicUser]{PageRequest: page}, internalError("list users", err)
	}

	items := make([]model.PublicUser, 0, len(users.Items))
	for i := range users.Items {
		items = append(items, users.Items[i].Public())
	}
	return model.Page[model.PublicUser]{Items: items, Total: users.Total, PageRequest: users.PageRequest}, nil
}

// SetUserActive toggles the active flag. Deactivation also revokes every refresh
// token of the user; outstanding access tokens die at the next gate check.
func (s *UserService) SetUserActive(ctx context.Context, actorID, userID int64, active bool) (*model.PublicUser, error) {
	if actorID == userID && !active {
		return nil, validationError("administrators cannot deactivate their own account")
	}

	now := s.now().UTC()
	user, err := s.store.SetUserActive(ctx, userID, active, now)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.ErrorContext(ctx, "failed to update user status", "user_id", userID, "error", err)
		return nil, internalError("set user active", err)
	}

	if !active {
		if err := s.store.RevokeAllRefreshTokens(ctx, userID, now); err != nil {
			s.log.ErrorContext(ctx, "failed to revoke sessions of deactivated user", "user_id", userID, "error", err)
			return nil, internalError("revoke refresh tokens", err)
		}
	}

	s.log.InfoContext(ctx, "user status changed", "user_id", userID, "actor_id", actorID, "active", active)
	public := user.Public()
	return &public, nil
}
