package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kitforge/backend/internal/db"
	"github.com/kitforge/backend/internal/model"
	"github.com/kitforge/backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	VerificationTTL  = 24 * time.Hour
	PasswordResetTTL = time.Hour

	defaultBcryptCost  = 12
	defaultMailTimeout = 15 * time.Second
	tokenTypeBearer    = "Bearer"
)

// ClientInfo is the request metadata recorded in login logs.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type AuthOptions struct {
	BcryptCost  int
	AppName     string
	BaseURL     string
	MailTimeout time.Duration
}

type Option func(*AuthService)

// WithClock overrides the time source; the token issuer should share it.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) {
		s.now = now
	}
}

type AuthService struct {
	store  CredentialStore
	issuer *token.Issuer
	mailer Mailer
	log    *slog.Logger
	opts   AuthOptions
	now    func() time.Time

	mailWG sync.WaitGroup
}

func NewAuthService(store CredentialStore, issuer *token.Issuer, mailer Mailer, log *slog.Logger, opts AuthOptions, options ...Option) (*AuthService, error) {
	if store == nil || issuer == nil || mailer == nil {
		return nil, fmt.Errorf("%w: store, issuer and mailer are required", ErrMisconfigured)
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = defaultBcryptCost
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range", ErrMisconfigured, opts.BcryptCost)
	}
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = defaultMailTimeout
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if log == nil {
		log = slog.Default()
	}

	s := &AuthService{
		store:  store,
		issuer: issuer,
		mailer: mailer,
		log:    log.With("component", "auth"),
		opts:   opts,
		now:    time.Now,
	}
	for _, o := range options {
		o(s)
	}
	return s, nil
}

// Wait blocks until queued emails are sent or ctx is done.
func (s *AuthService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.mailWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, client ClientInfo) (*model.PublicUser, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	firstName, err := normalizeName("firstName", req.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := normalizeName("lastName", req.LastName)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, s.internal(ctx, "lookup user by email", err)
	}
	if username != nil {
		if _, err := s.store.GetUserByUsername(ctx, *username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, db.ErrNotFound) {
			return nil, s.internal(ctx, "lookup user by username", err)
		}
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	now := s.clock()
	user, err := s.store.CreateUser(ctx, model.NewUser{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         model.RoleUser,
	}, now)
	if err != nil {
		// Lost a race against a concurrent registration.
		if conflict := conflictFor(err); conflict != nil {
			return nil, conflict
		}
		return nil, s.internal(ctx, "create user", err)
	}

	s.recordLogin(ctx, user.ID, model.LoginMethodRegistration, false, model.ReasonRegistrationPending, client)

	if err := s.sendVerification(ctx, user); err != nil {
		// The account exists; the user can ask for a new link.
		s.log.ErrorContext(ctx, "failed to create email verification", "user_id", user.ID, "error", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	public := user.Public()
	return &public, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*model.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// No user row to attach a login log to.
			s.log.WarnContext(ctx, "login failed", "reason", model.ReasonUserNotFound, "ip", client.IP)
			return nil, ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "lookup user by email", err)
	}

	if !user.IsActive {
		s.recordLogin(ctx, user.ID, model.LoginMethodPassword, false, model.ReasonAccountDeactivated, client)
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordLogin(ctx, user.ID, model.LoginMethodPassword, false, model.ReasonInvalidPassword, client)
		return nil, ErrInvalidCredentials
	}

	now := s.clock()
	if err := s.store.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		return nil, s.internal(ctx, "update last login", err)
	}
	user.LastLoginAt = &now

	pair, refresh, err := s.issueTokens(user, uuid.NewString())
	if err != nil {
		return nil, s.internal(ctx, "issue tokens", err)
	}
	if err := s.store.InsertRefreshToken(ctx, refresh, now); err != nil {
		return nil, s.internal(ctx, "store refresh token", err)
	}

	s.recordLogin(ctx, user.ID, model.LoginMethodPassword, true, "", client)

	return &model.LoginResponse{
		User:   user.Public(),
		Tokens: *pair,
	}, nil
}

// Refresh redeems a refresh token exactly once and returns a new pair for the same session.
// Absent, revoked, expired and already-rotated tokens are indistinguishable to the caller.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrTokenInvalid
	}

	claims, err := s.issuer.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	record, err := s.store.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, s.internal(ctx, "lookup refresh token", err)
	}

	now := s.clock()
	if record.IsRevoked || !now.Before(record.ExpiresAt) || record.UserID != claims.UserID {
		return nil, ErrTokenInvalid
	}

	user, err := s.store.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, s.internal(ctx, "lookup user", err)
	}
	if !user.IsActive {
		s.log.WarnContext(ctx, "refresh rejected for deactivated user", "user_id", user.ID)
		return nil, ErrTokenInvalid
	}

	pair, next, err := s.issueTokens(user, record.SessionID)
	if err != nil {
		return nil, s.internal(ctx, "issue tokens", err)
	}

	if err := s.store.RotateRefreshToken(ctx, record.ID, next, now); err != nil {
		if errors.Is(err, db.ErrAlreadyConsumed) {
			s.log.WarnContext(ctx, "refresh token redeemed concurrently", "user_id", user.ID, "session_id", record.SessionID)
			return nil, ErrTokenInvalid
		}
		return nil, s.internal(ctx, "rotate refresh token", err)
	}

	return pair, nil
}

// Logout never fails for the caller.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return
	}
	if err := s.store.RevokeRefreshToken(ctx, refreshToken, s.clock()); err != nil {
		s.log.ErrorContext(ctx, "failed to revoke refresh token", "error", err)
	}
}

func (s *AuthService) VerifyEmail(ctx context.Context, verificationToken string) error {
	verificationToken = strings.TrimSpace(verificationToken)
	if verificationToken == "" {
		return ErrTokenInvalid
	}

	if _, err := s.issuer.Verify(verificationToken, token.KindEmailVerification); err != nil {
		return fromTokenError(err)
	}

	v, err := s.store.GetEmailVerificationByToken(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrTokenInvalid
		}
		return s.internal(ctx, "lookup email verification", err)
	}

	now := s.clock()
	if !now.Before(v.ExpiresAt) {
		return ErrTokenExpired
	}
	switch v.Status {
	case model.VerificationVerified:
		return nil
	case model.VerificationPending:
	default:
		// Replaced by a newer link.
		return ErrTokenInvalid
	}

	if err := s.store.MarkEmailVerified(ctx, v.ID, v.UserID, now); err != nil {
		if errors.Is(err, db.ErrAlreadyConsumed) {
			return s.verificationRace(ctx, verificationToken)
		}
		return s.internal(ctx, "mark email verified", err)
	}

	s.log.InfoContext(ctx, "email verified", "user_id", v.UserID)
	return nil
}

// verificationRace resolves a verification that lost a concurrent update:
// success if the same link won, invalid if a newer link superseded it.
func (s *AuthService) verificationRace(ctx context.Context, verificationToken string) error {
	v, err := s.store.GetEmailVerificationByToken(ctx, verificationToken)
	if err != nil {
		return s.internal(ctx, "reload email verification", err)
	}
	if v.Status == model.VerificationVerified {
		return nil
	}
	return ErrTokenInvalid
}

func (s *AuthService) ResendVerification(ctx context.Context, userID int64) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}
	if err := s.sendVerification(ctx, user); err != nil {
		return s.internal(ctx, "create email verification", err)
	}
	return nil
}

// ChangePassword stores the new hash and signs the user out everywhere.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidPassword
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return validationError("new password must differ from the current password")
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return s.internal(ctx, "hash password", err)
	}
	if err := s.store.ReplacePassword(ctx, userID, hash, s.clock()); err != nil {
		return s.internal(ctx, "replace password", err)
	}

	s.log.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

// ForgotPassword always succeeds for the caller so it cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.log.ErrorContext(ctx, "failed to lookup user for password reset", "error", err)
		}
		return
	}
	if !user.IsActive {
		return
	}

	tok, expiresAt, err := s.issuer.IssuePurposeToken(user.ID, user.Email, token.KindPasswordReset, PasswordResetTTL)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to issue password reset token", "user_id", user.ID, "error", err)
		return
	}
	if _, err := s.store.CreatePasswordReset(ctx, model.PasswordReset{
		UserID:    user.ID,
		Token:     tok,
		Email:     user.Email,
		Status:    model.ResetPending,
		ExpiresAt: expiresAt,
		CreatedAt: s.clock(),
	}); err != nil {
		s.log.ErrorContext(ctx, "failed to store password reset", "user_id", user.ID, "error", err)
		return
	}

	s.dispatch(ctx, s.passwordResetEmail(user, tok, expiresAt))
}

func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	resetToken = strings.TrimSpace(resetToken)
	if resetToken == "" {
		return ErrTokenInvalid
	}
	if _, err := s.issuer.Verify(resetToken, token.KindPasswordReset); err != nil {
		return fromTokenError(err)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	r, err := s.store.GetPasswordResetByToken(ctx, resetToken)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrTokenInvalid
		}
		return s.internal(ctx, "lookup password reset", err)
	}

	now := s.clock()
	if !now.Before(r.ExpiresAt) {
		return ErrTokenExpired
	}
	if r.Status != model.ResetPending {
		return ErrTokenInvalid
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return s.internal(ctx, "hash password", err)
	}
	if err := s.store.ConsumePasswordReset(ctx, r.ID, r.UserID, hash, now); err != nil {
		if errors.Is(err, db.ErrAlreadyConsumed) {
			return ErrTokenInvalid
		}
		return s.internal(ctx, "consume password reset", err)
	}

	s.log.InfoContext(ctx, "password reset", "user_id", r.UserID)
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*model.PublicUser, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.PublicUser, error) {
	var upd model.ProfileUpdate
	var err error
	if upd.FirstName, err = normalizeName("firstName", req.FirstName); err != nil {
		return nil, err
	}
	if upd.LastName, err = normalizeName("lastName", req.LastName); err != nil {
		return nil, err
	}
	if upd.Username, err = normalizeUsername(req.Username); err != nil {
		return nil, err
	}
	if req.Avatar != nil {
		avatar := strings.TrimSpace(*req.Avatar)
		upd.Avatar = &avatar
	}

	if upd.Empty() {
		return s.GetProfile(ctx, userID)
	}

	if upd.Username != nil {
		owner, err := s.store.GetUserByUsername(ctx, *upd.Username)
		switch {
		case err == nil && owner.ID != userID:
			return nil, ErrUsernameTaken
		case err != nil && !errors.Is(err, db.ErrNotFound):
			return nil, s.internal(ctx, "lookup user by username", err)
		}
	}

	user, err := s.store.UpdateUserProfile(ctx, userID, upd, s.clock())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if conflict := conflictFor(err); conflict != nil {
			return nil, conflict
		}
		return nil, s.internal(ctx, "update profile", err)
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) LoginHistory(ctx context.Context, userID int64, page model.PageRequest) (model.Page[model.LoginLog], error) {
	result, err := s.store.ListLoginLogs(ctx, userID, page)
	if err != nil {
		return result, s.internal(ctx, "list login logs", err)
	}
	return result, nil
}

// Authenticate resolves a bearer access token to the current state of its user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.AuthUser, error) {
	claims, err := s.issuer.Verify(accessToken, token.KindAccess)
	if err != nil {
		return nil, fromTokenError(err)
	}
	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return model.NewAuthUser(user, claims.SessionID), nil
}

// EnsureAdmin creates a verified ADMIN account unless the email is already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, fmt.Errorf("%w: admin email and password are required", ErrMisconfigured)
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			s.log.WarnContext(ctx, "admin email belongs to a non-admin account", "user_id", existing.ID)
		}
		return false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return false, err
	}

	if err := validatePassword(password); err != nil {
		return false, err
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return false, err
	}

	user, err := s.store.CreateUser(ctx, model.NewUser{
		Email:           email,
		PasswordHash:    hash,
		Role:            model.RoleAdmin,
		IsEmailVerified: true,
	}, s.clock())
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}

	s.log.InfoContext(ctx, "admin account created", "user_id", user.ID)
	return true, nil
}

func (s *AuthService) issueTokens(user *model.User, sessionID string) (*model.TokenPair, model.NewRefreshToken, error) {
	accessToken, accessExp, err := s.issuer.IssueAccessToken(user.ID, user.Email, user.Role, sessionID)
	if err != nil {
		return nil, model.NewRefreshToken{}, err
	}
	refreshToken, refreshExp, err := s.issuer.IssueRefreshToken(user.ID, user.Email, user.Role, sessionID)
	if err != nil {
		return nil, model.NewRefreshToken{}, err
	}

	pair := &model.TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		TokenType:             tokenTypeBearer,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
	}
	row := model.NewRefreshToken{
		UserID:    user.ID,
		SessionID: sessionID,
		Token:     refreshToken,
		ExpiresAt: refreshExp,
	}
	return pair, row, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *model.User) error {
	tok, expiresAt, err := s.issuer.IssuePurposeToken(user.ID, user.Email, token.KindEmailVerification, VerificationTTL)
	if err != nil {
		return err
	}
	if _, err := s.store.CreateEmailVerification(ctx, model.EmailVerification{
		UserID:    user.ID,
		Token:     tok,
		Email:     user.Email,
		Status:    model.VerificationPending,
		ExpiresAt: expiresAt,
		CreatedAt: s.clock(),
	}); err != nil {
		return err
	}
	s.dispatch(ctx, s.verificationEmail(user, tok, expiresAt))
	return nil
}

// dispatch sends msg in the background; delivery failures are logged only.
func (s *AuthService) dispatch(ctx context.Context, msg model.Email) {
	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.MailTimeout)
		defer cancel()
		if err := s.mailer.Send(sendCtx, msg); err != nil {
			s.log.Warn("failed to send email", "subject", msg.Subject, "error", err)
		}
	}()
}

func (s *AuthService) recordLogin(ctx context.Context, userID int64, method model.LoginMethod, success bool, reason string, client ClientInfo) {
	entry := model.LoginLog{
		UserID:    userID,
		Method:    method,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		IsSuccess: success,
		CreatedAt: s.clock(),
	}
	if reason != "" {
		entry.FailureReason = &reason
	}
	if err := s.store.InsertLoginLog(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "failed to write login log", "user_id", userID, "error", err)
	}
}

func (s *AuthService) loadUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.internal(ctx, "lookup user", err)
	}
	return user, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) internal(ctx context.Context, op string, err error) error {
	s.log.ErrorContext(ctx, "auth operation failed", "op", op, "error", err)
	return internalError(op, err)
}

func (s *AuthService) clock() time.Time {
	return s.now().UTC()
}
