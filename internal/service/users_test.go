package service

import (
	"context"
	"testing"

	"github.com/kitforge/backend/internal/logging"
	"github.com/kitforge/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersHidesHashes(t *testing.T) {
	f := newAuthFixture(t)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		f.register(t, email)
	}
	users := NewUserService(f.store, logging.Discard())

	page, err := users.ListUsers(context.Background(), model.NewPageRequest(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Pagination().TotalPages)
}

func TestSetUserActive(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.register(t, "admin@x.com")
	user := f.register(t, "a@x.com")
	session := f.login(t, "a@x.com")
	users := NewUserService(f.store, logging.Discard())

	_, err := users.SetUserActive(context.Background(), admin.ID, admin.ID, false)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.SetUserActive(context.Background(), admin.ID, 999, false)
	assert.ErrorIs(t, err, ErrUserNotFound)

	updated, err := users.SetUserActive(context.Background(), admin.ID, user.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = f.svc.Refresh(context.Background(), session.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = f.svc.Authenticate(context.Background(), session.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrAccountDisabled)

	updated, err = users.SetUserActive(context.Background(), admin.ID, user.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	f.login(t, "a@x.com")
}
