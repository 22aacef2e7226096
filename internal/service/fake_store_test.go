package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kitforge/backend/internal/db"
	"github.com/kitforge/backend/internal/model"
)

// fakeStore is an in-memory CredentialStore with the same conditional-update
// semantics as the SQL stores.
type fakeStore struct {
	mu            sync.Mutex
	nextID        int64
	users         map[int64]*model.User
	logs          []model.LoginLog
	verifications []*model.EmailVerification
	resets        []*model.PasswordReset
	tokens        []*model.RefreshToken

	failLoginLog bool
	failGet      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]*model.User{}}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

func (f *fakeStore) CreateUser(_ context.Context, u model.NewUser, at time.Time) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, db.ErrDuplicateEmail
		}
		if u.Username != nil && existing.Username != nil && *existing.Username == *u.Username {
			return nil, db.ErrDuplicateUsername
		}
	}
	user := &model.User{
		ID:              f.id(),
		Email:           u.Email,
		Username:        u.Username,
		PasswordHash:    u.PasswordHash,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		IsActive:        true,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	if u.IsEmailVerified {
		user.EmailVerifiedAt = &at
	}
	f.users[user.ID] = user
	return cloneUser(user), nil
}

func (f *fakeStore) GetUserByID(_ context.Context, userID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return cloneUser(u), nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	for _, u := range f.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username != nil && *u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) UpdateUserProfile(_ context.Context, userID int64, upd model.ProfileUpdate, at time.Time) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if upd.Username != nil {
		for _, other := range f.users {
			if other.ID != userID && other.Username != nil && *other.Username == *upd.Username {
				return nil, db.ErrDuplicateUsername
			}
		}
		u.Username = upd.Username
	}
	if upd.FirstName != nil {
		u.FirstName = upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = upd.LastName
	}
	if upd.Avatar != nil {
		u.Avatar = upd.Avatar
	}
	u.UpdatedAt = at
	return cloneUser(u), nil
}

func (f *fakeStore) UpdateUserLastLogin(_ context.Context, userID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (f *fakeStore) SetUserActive(_ context.Context, userID int64, active bool, at time.Time) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = at
	return cloneUser(u), nil
}

func (f *fakeStore) ReplacePassword(_ context.Context, userID int64, hash string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.PasswordHash = hash
	f.revokeAllLocked(userID, at)
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context, page model.PageRequest) (model.Page[model.User], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return model.Page[model.User]{Items: paginate(all, page), Total: int64(len(all)), PageRequest: page}, nil
}

func paginate[T any](items []T, page model.PageRequest) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (f *fakeStore) InsertLoginLog(_ context.Context, entry model.LoginLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLoginLog {
		return errors.New("login_logs unavailable")
	}
	entry.ID = f.id()
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeStore) ListLoginLogs(_ context.Context, userID int64, page model.PageRequest) (model.Page[model.LoginLog], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []model.LoginLog
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].UserID == userID {
			mine = append(mine, f.logs[i])
		}
	}
	return model.Page[model.LoginLog]{Items: paginate(mine, page), Total: int64(len(mine)), PageRequest: page}, nil
}

func (f *fakeStore) userLogs(userID int64) []model.LoginLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LoginLog
	for _, l := range f.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out
}

func (f *fakeStore) CreateEmailVerification(_ context.Context, v model.EmailVerification) (*model.EmailVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supersedeVerificationsLocked(v.UserID)
	v.ID = f.id()
	row := v
	f.verifications = append(f.verifications, &row)
	return &v, nil
}

func (f *fakeStore) GetEmailVerificationByToken(_ context.Context, tok string) (*model.EmailVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.verifications {
		if v.Token == tok {
			c := *v
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) MarkEmailVerified(_ context.Context, verificationID, userID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.verifications {
		if v.ID != verificationID {
			continue
		}
		if v.Status != model.VerificationPending {
			return db.ErrAlreadyConsumed
		}
		u, ok := f.users[userID]
		if !ok {
			return db.ErrNotFound
		}
		v.Status = model.VerificationVerified
		v.VerifiedAt = &at
		u.IsEmailVerified = true
		u.EmailVerifiedAt = &at
		f.supersedeVerificationsLocked(userID)
		return nil
	}
	return db.ErrAlreadyConsumed
}

func (f *fakeStore) CreatePasswordReset(_ context.Context, r model.PasswordReset) (*model.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supersedeResetsLocked(r.UserID)
	r.ID = f.id()
	row := r
	f.resets = append(f.resets, &row)
	return &r, nil
}

func (f *fakeStore) GetPasswordResetByToken(_ context.Context, tok string) (*model.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.resets {
		if r.Token == tok {
			c := *r
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) ConsumePasswordReset(_ context.Context, resetID, userID int64, hash string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.resets {
		if r.ID != resetID {
			continue
		}
		if r.Status != model.ResetPending {
			return db.ErrAlreadyConsumed
		}
		u, ok := f.users[userID]
		if !ok {
			return db.ErrNotFound
		}
		r.Status = model.ResetUsed
		r.UsedAt = &at
		u.PasswordHash = hash
		f.supersedeResetsLocked(userID)
		f.revokeAllLocked(userID, at)
		return nil
	}
	return db.ErrAlreadyConsumed
}

func (f *fakeStore) supersedeVerificationsLocked(userID int64) {
	for _, v := range f.verifications {
		if v.UserID == userID && v.Status == model.VerificationPending {
			v.Status = model.VerificationSuperseded
		}
	}
}

func (f *fakeStore) supersedeResetsLocked(userID int64) {
	for _, r := range f.resets {
		if r.UserID == userID && r.Status == model.ResetPending {
			r.Status = model.ResetSuperseded
		}
	}
}

func (f *fakeStore) InsertRefreshToken(_ context.Context, t model.NewRefreshToken, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertTokenLocked(t, at)
}

func (f *fakeStore) insertTokenLocked(t model.NewRefreshToken, at time.Time) error {
	for _, existing := range f.tokens {
		if existing.Token == t.Token {
			return db.ErrDuplicate
		}
	}
	f.tokens = append(f.tokens, &model.RefreshToken{
		ID:        f.id(),
		UserID:    t.UserID,
		SessionID: t.SessionID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: at,
	})
	return nil
}

func (f *fakeStore) GetRefreshToken(_ context.Context, tok string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.Token == tok {
			c := *t
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) RotateRefreshToken(_ context.Context, oldID int64, next model.NewRefreshToken, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ID == oldID {
			if t.IsRevoked {
				return db.ErrAlreadyConsumed
			}
			t.IsRevoked = true
			t.RevokedAt = &at
			return f.insertTokenLocked(next, at)
		}
	}
	return db.ErrAlreadyConsumed
}

func (f *fakeStore) RevokeRefreshToken(_ context.Context, tok string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.Token == tok && !t.IsRevoked {
			t.IsRevoked = true
			t.RevokedAt = &at
		}
	}
	return nil
}

func (f *fakeStore) RevokeAllRefreshTokens(_ context.Context, userID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeAllLocked(userID, at)
	return nil
}

func (f *fakeStore) revokeAllLocked(userID int64, at time.Time) {
	for _, t := range f.tokens {
		if t.UserID == userID && !t.IsRevoked {
			t.IsRevoked = true
			t.RevokedAt = &at
		}
	}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) userCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *fakeStore) verificationsFor(userID int64) []model.EmailVerification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.EmailVerification
	for _, v := range f.verifications {
		if v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out
}

func (f *fakeStore) resetsFor(userID int64) []model.PasswordReset {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PasswordReset
	for _, r := range f.resets {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []model.Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg model.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []model.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Email(nil), m.sent...)
}
