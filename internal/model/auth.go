package model

import "time"

type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

type User struct {
	ID              int64
	Email           string
	Username        *string
	PasswordHash    string
	FirstName       *string
	LastName        *string
	Avatar          *string
	Role            Role
	IsActive        bool
	IsEmailVerified bool
	EmailVerifiedAt *time.Time
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Public strips the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Avatar:          u.Avatar,
		Role:            u.Role,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		EmailVerifiedAt: u.EmailVerifiedAt,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

type PublicUser struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	Username        *string    `json:"username"`
	FirstName       *string    `json:"firstName"`
	LastName        *string    `json:"lastName"`
	Avatar          *string    `json:"avatar"`
	Role            Role       `json:"role"`
	IsActive        bool       `json:"isActive"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt"`
	LastLoginAt     *time.Time `json:"lastLoginAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// AuthUser is the authorization context the request gate attaches to a request.
type AuthUser struct {
	ID              int64
	Email           string
	Username        *string
	FirstName       *string
	LastName        *string
	Avatar          *string
	Role            Role
	IsActive        bool
	IsEmailVerified bool
	SessionID       string
}

func NewAuthUser(u *User, sessionID string) *AuthUser {
	return &AuthUser{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Avatar:          u.Avatar,
		Role:            u.Role,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		SessionID:       sessionID,
	}
}

type NewUser struct {
	Email           string
	Username        *string
	PasswordHash    string
	FirstName       *string
	LastName        *string
	Role            Role
	IsEmailVerified bool
}

// ProfileUpdate carries only the fields being changed; nil means untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Username  *string
	Avatar    *string
}

func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Username == nil && p.Avatar == nil
}

type LoginMethod string

const (
	LoginMethodPassword     LoginMethod = "PASSWORD"
	LoginMethodRegistration LoginMethod = "REGISTRATION"
)

// LoginLog failure reasons.
const (
	ReasonRegistrationPending = "REGISTRATION_PENDING_VERIFICATION"
	ReasonUserNotFound        = "USER_NOT_FOUND"
	ReasonAccountDeactivated  = "ACCOUNT_DEACTIVATED"
	ReasonInvalidPassword     = "INVALID_PASSWORD"
)

type LoginLog struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"userId"`
	Method        LoginMethod `json:"method"`
	IPAddress     string      `json:"ipAddress"`
	UserAgent     string      `json:"userAgent"`
	IsSuccess     bool        `json:"isSuccess"`
	FailureReason *string     `json:"failureReason"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type VerificationStatus string

const (
	VerificationPending    VerificationStatus = "PENDING"
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationSuperseded VerificationStatus = "SUPERSEDED"
)

type EmailVerification struct {
	ID         int64
	UserID     int64
	Token      string
	Email      string
	Status     VerificationStatus
	ExpiresAt  time.Time
	CreatedAt  time.Time
	VerifiedAt *time.Time
}

type ResetStatus string

const (
	ResetPending    ResetStatus = "PENDING"
	ResetUsed       ResetStatus = "USED"
	ResetSuperseded ResetStatus = "SUPERSEDED"
)

type PasswordReset struct {
	ID        int64
	UserID    int64
	Token     string
	Email     string
	Status    ResetStatus
	ExpiresAt time.Time
	CreatedAt time.Time
	UsedAt    *time.Time
}

type RefreshToken struct {
	ID        int64
	UserID    int64
	SessionID string
	Token     string
	IsRevoked bool
	RevokedAt *time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
}

type NewRefreshToken struct {
	UserID    int64
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// HTTP payloads

type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email,max=254"`
	Password  string  `json:"password" binding:"required"`
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Username  *string `json:"username" binding:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Username  *string `json:"username" binding:"omitempty"`
	Avatar    *string `json:"avatar" binding:"omitempty,url,max=2048"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type TokenPair struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	TokenType             string    `json:"tokenType"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

type LoginResponse struct {
	User   PublicUser `json:"user"`
	Tokens TokenPair  `json:"tokens"`
}

type SessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *PublicUser `json:"user,omitempty"`
}

type AvatarUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	AvatarURL string    `json:"avatarUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}
