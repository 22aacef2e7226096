package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kitforge/backend/internal/db"
	"github.com/kitforge/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func strPtr(s string) *string { return &s }

func createTestUser(t *testing.T, s *Storage, email string) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.NewUser{
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}, now)
	require.NoError(t, err)
	return u
}

func TestUserStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	created, err := s.CreateUser(ctx, model.NewUser{
		Email:        "ada@example.com",
		Username:     strPtr("ada"),
		PasswordHash: "hash",
		FirstName:    strPtr("Ada"),
		Role:         model.RoleAdmin,
	}, now)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.IsActive)
	assert.False(t, created.IsEmailVerified)
	assert.Nil(t, created.EmailVerifiedAt)
	assert.Nil(t, created.LastName)
	assert.Equal(t, model.RoleAdmin, created.Role)

	byEmail, err := s.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byName, err := s.GetUserByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byID, err := s.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, now.Equal(byID.CreatedAt))

	_, err = s.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUserStorage_Duplicates(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	_, err := s.CreateUser(ctx, model.NewUser{Email: "a@x.com", Username: strPtr("taken"), PasswordHash: "h", Role: model.RoleUser}, now)
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, model.NewUser{Email: "a@x.com", PasswordHash: "h", Role: model.RoleUser}, now)
	assert.ErrorIs(t, err, db.ErrDuplicateEmail)

	_, err = s.CreateUser(ctx, model.NewUser{Email: "b@x.com", Username: strPtr("taken"), PasswordHash: "h", Role: model.RoleUser}, now)
	assert.ErrorIs(t, err, db.ErrDuplicateUsername)

	other := createTestUser(t, s, "c@x.com")
	_, err = s.UpdateUserProfile(ctx, other.ID, model.ProfileUpdate{Username: strPtr("taken")}, now)
	assert.ErrorIs(t, err, db.ErrDuplicateUsername)
}

func TestUserStorage_UpdateProfileKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	u, err := s.CreateUser(ctx, model.NewUser{Email: "a@x.com", FirstName: strPtr("Old"), LastName: strPtr("Name"), PasswordHash: "h", Role: model.RoleUser}, now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	updated, err := s.UpdateUserProfile(ctx, u.ID, model.ProfileUpdate{FirstName: strPtr("New")}, later)
	require.NoError(t, err)
	assert.Equal(t, "New", *updated.FirstName)
	assert.Equal(t, "Name", *updated.LastName)
	assert.True(t, later.Equal(updated.UpdatedAt))

	_, err = s.UpdateUserProfile(ctx, 999, model.ProfileUpdate{FirstName: strPtr("x")}, later)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUserStorage_ListAndActivate(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		createTestUser(t, s, email)
	}

	page, err := s.ListUsers(ctx, model.NewPageRequest(2, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c@x.com", page.Items[0].Email)

	u, err := s.SetUserActive(ctx, page.Items[0].ID, false, now)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	require.NoError(t, s.UpdateUserLastLogin(ctx, u.ID, now))
	assert.ErrorIs(t, s.UpdateUserLastLogin(ctx, 999, now), db.ErrNotFound)
}

func TestTokenStorage_RotateOnce(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")

	require.NoError(t, s.InsertRefreshToken(ctx, model.NewRefreshToken{UserID: u.ID, SessionID: "s1", Token: "t1", ExpiresAt: now.Add(time.Hour)}, now))
	old, err := s.GetRefreshToken(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, old.IsRevoked)

	next := model.NewRefreshToken{UserID: u.ID, SessionID: "s1", Token: "t2", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, s.RotateRefreshToken(ctx, old.ID, next, now))

	err = s.RotateRefreshToken(ctx, old.ID, model.NewRefreshToken{UserID: u.ID, SessionID: "s1", Token: "t3", ExpiresAt: now.Add(time.Hour)}, now)
	assert.ErrorIs(t, err, db.ErrAlreadyConsumed)

	_, err = s.GetRefreshToken(ctx, "t3")
	assert.ErrorIs(t, err, db.ErrNotFound, "losing rotation must not leave a token behind")

	revoked, err := s.GetRefreshToken(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked.IsRevoked)
	require.NotNil(t, revoked.RevokedAt)
}

func TestTokenStorage_ConcurrentRotation(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")

	require.NoError(t, s.InsertRefreshToken(ctx, model.NewRefreshToken{UserID: u.ID, SessionID: "s", Token: "root", ExpiresAt: now.Add(time.Hour)}, now))
	root, err := s.GetRefreshToken(ctx, "root")
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := model.NewRefreshToken{UserID: u.ID, SessionID: "s", Token: "child-" + string(rune('a'+i)), ExpiresAt: now.Add(time.Hour)}
			results <- s.RotateRefreshToken(ctx, root.ID, next, now)
		}(i)
	}
	wg.Wait()
	close(results)

	var ok, consumed int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, db.ErrAlreadyConsumed):
			consumed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, consumed)
}

func TestTokenStorage_RevokeAll(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")

	for _, tok := range []string{"a", "b"} {
		require.NoError(t, s.InsertRefreshToken(ctx, model.NewRefreshToken{UserID: u.ID, SessionID: tok, Token: tok, ExpiresAt: now.Add(time.Hour)}, now))
	}
	require.NoError(t, s.RevokeRefreshToken(ctx, "a", now))
	require.NoError(t, s.RevokeRefreshToken(ctx, "a", now))
	require.NoError(t, s.RevokeRefreshToken(ctx, "missing", now))

	require.NoError(t, s.RevokeAllRefreshTokens(ctx, u.ID, now))
	b, err := s.GetRefreshToken(ctx, "b")
	require.NoError(t, err)
	assert.True(t, b.IsRevoked)
}

func TestVerificationStorage_MarkVerifiedOnce(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")

	v, err := s.CreateEmailVerification(ctx, model.EmailVerification{UserID: u.ID, Token: "vt", Email: u.Email, ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)
	assert.NotZero(t, v.ID)

	require.NoError(t, s.MarkEmailVerified(ctx, v.ID, u.ID, now))
	assert.ErrorIs(t, s.MarkEmailVerified(ctx, v.ID, u.ID, now), db.ErrAlreadyConsumed)

	got, err := s.GetEmailVerificationByToken(ctx, "vt")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationVerified, got.Status)
	require.NotNil(t, got.VerifiedAt)

	user, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
	require.NotNil(t, user.EmailVerifiedAt)
}

func TestResetStorage_ConsumeRevokesSessions(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")
	require.NoError(t, s.InsertRefreshToken(ctx, model.NewRefreshToken{UserID: u.ID, SessionID: "s", Token: "rt", ExpiresAt: now.Add(time.Hour)}, now))

	r, err := s.CreatePasswordReset(ctx, model.PasswordReset{UserID: u.ID, Token: "pr", Email: u.Email, ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)

	require.NoError(t, s.ConsumePasswordReset(ctx, r.ID, u.ID, "new-hash", now))
	assert.ErrorIs(t, s.ConsumePasswordReset(ctx, r.ID, u.ID, "other", now), db.ErrAlreadyConsumed)

	user, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.PasswordHash)

	rt, err := s.GetRefreshToken(ctx, "rt")
	require.NoError(t, err)
	assert.True(t, rt.IsRevoked)

	got, err := s.GetPasswordResetByToken(ctx, "pr")
	require.NoError(t, err)
	assert.Equal(t, model.ResetUsed, got.Status)
}

func TestResetStorage_OnlyLatestLinkStaysPending(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")

	first, err := s.CreatePasswordReset(ctx, model.PasswordReset{UserID: u.ID, Token: "pr1", Email: u.Email, ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)
	second, err := s.CreatePasswordReset(ctx, model.PasswordReset{UserID: u.ID, Token: "pr2", Email: u.Email, ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)

	got, err := s.GetPasswordResetByToken(ctx, "pr1")
	require.NoError(t, err)
	assert.Equal(t, model.ResetSuperseded, got.Status)
	assert.ErrorIs(t, s.ConsumePasswordReset(ctx, first.ID, u.ID, "old-link", now), db.ErrAlreadyConsumed)

	require.NoError(t, s.ConsumePasswordReset(ctx, second.ID, u.ID, "new-hash", now))
	user, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.PasswordHash)
}

func TestResetStorage_ConsumeRetiresOtherPending(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")

	r, err := s.CreatePasswordReset(ctx, model.PasswordReset{UserID: u.ID, Token: "pr", Email: u.Email, ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)
	// A row left pending outside CreatePasswordReset.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO password_resets (user_id, token, email, status, expires_at, created_at)
		VALUES (?, 'stray', ?, 'PENDING', ?, ?)
	`, u.ID, u.Email, now.Add(time.Hour), now)
	require.NoError(t, err)

	require.NoError(t, s.ConsumePasswordReset(ctx, r.ID, u.ID, "new-hash", now))

	stray, err := s.GetPasswordResetByToken(ctx, "stray")
	require.NoError(t, err)
	assert.Equal(t, model.ResetSuperseded, stray.Status)
}

func TestVerificationStorage_OnlyLatestLinkStaysPending(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")

	first, err := s.CreateEmailVerification(ctx, model.EmailVerification{UserID: u.ID, Token: "vt1", Email: u.Email, ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)
	_, err = s.CreateEmailVerification(ctx, model.EmailVerification{UserID: u.ID, Token: "vt2", Email: u.Email, ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)

	got, err := s.GetEmailVerificationByToken(ctx, "vt1")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationSuperseded, got.Status)
	assert.ErrorIs(t, s.MarkEmailVerified(ctx, first.ID, u.ID, now), db.ErrAlreadyConsumed)

	latest, err := s.GetEmailVerificationByToken(ctx, "vt2")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationPending, latest.Status)
}

func TestReplacePassword(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")
	require.NoError(t, s.InsertRefreshToken(ctx, model.NewRefreshToken{UserID: u.ID, SessionID: "s", Token: "rt", ExpiresAt: now.Add(time.Hour)}, now))

	require.NoError(t, s.ReplacePassword(ctx, u.ID, "h2", now))
	rt, err := s.GetRefreshToken(ctx, "rt")
	require.NoError(t, err)
	assert.True(t, rt.IsRevoked)

	assert.ErrorIs(t, s.ReplacePassword(ctx, 999, "h2", now), db.ErrNotFound)
}

func TestLoginLogStorage_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)
	u := createTestUser(t, s, "a@x.com")

	reason := model.ReasonInvalidPassword
	require.NoError(t, s.InsertLoginLog(ctx, model.LoginLog{UserID: u.ID, Method: model.LoginMethodPassword, IsSuccess: false, FailureReason: &reason, CreatedAt: now}))
	require.NoError(t, s.InsertLoginLog(ctx, model.LoginLog{UserID: u.ID, Method: model.LoginMethodPassword, IsSuccess: true, IPAddress: "10.0.0.1", CreatedAt: now.Add(time.Minute)}))

	page, err := s.ListLoginLogs(ctx, u.ID, model.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].IsSuccess)
	assert.Equal(t, "10.0.0.1", page.Items[0].IPAddress)
	assert.Nil(t, page.Items[0].FailureReason)
	require.NotNil(t, page.Items[1].FailureReason)
	assert.Equal(t, model.ReasonInvalidPassword, *page.Items[1].FailureReason)
}

func TestStorage_DriverErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	s := NewFromDB(sqlDB)

	mock.ExpectExec("INSERT INTO login_logs").WillReturnError(errors.New("disk full"))
	err = s.InsertLoginLog(context.Background(), model.LoginLog{UserID: 1, Method: model.LoginMethodPassword, CreatedAt: now})
	assert.ErrorContains(t, err, "disk full")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE refresh_tokens").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	err = s.RotateRefreshToken(context.Background(), 1, model.NewRefreshToken{UserID: 1, Token: "x"}, now)
	assert.ErrorIs(t, err, db.ErrAlreadyConsumed)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("locked"))
	_, err = s.ListUsers(context.Background(), model.NewPageRequest(1, 10))
	assert.ErrorContains(t, err, "locked")

	assert.NoError(t, mock.ExpectationsWereMet())
}
