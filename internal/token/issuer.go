// Package token issues and verifies the signed bearer tokens used by the auth flows.
//
// Access and refresh tokens are signed with distinct secrets so that leaking one
// cannot forge the other. Purpose-scoped tokens (email verification, password reset)
// carry an explicit purpose claim that Verify enforces.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kitforge/backend/internal/model"
)

type Kind string

const (
	KindAccess            Kind = "access"
	KindRefresh           Kind = "refresh"
	KindEmailVerification Kind = "email_verification"
	KindPasswordReset     Kind = "password_reset"
)

var (
	ErrExpired         = errors.New("token expired")
	ErrInvalid         = errors.New("token invalid")
	ErrPurposeMismatch = errors.New("token purpose mismatch")
	ErrMisconfigured   = errors.New("token issuer config invalid")
)

type Claims struct {
	UserID    int64      `json:"userId"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
	Purpose   Kind       `json:"purpose"`
	jwt.RegisteredClaims
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	// PurposeSecret falls back to AccessSecret when empty.
	PurposeSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type Option func(*Issuer)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	purposeSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

func NewIssuer(cfg Config, opts ...Option) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("%w: access and refresh secrets are required", ErrMisconfigured)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrMisconfigured)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: lifetimes must be positive", ErrMisconfigured)
	}

	purpose := cfg.PurposeSecret
	if purpose == "" {
		purpose = cfg.AccessSecret
	}

	i := &Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		purposeSecret: []byte(purpose),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) IssueAccessToken(userID int64, email string, role model.Role, sessionID string) (string, time.Time, error) {
	return i.sign(Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		SessionID: sessionID,
		Purpose:   KindAccess,
	}, i.accessTTL)
}

func (i *Issuer) IssueRefreshToken(userID int64, email string, role model.Role, sessionID string) (string, time.Time, error) {
	return i.sign(Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		SessionID: sessionID,
		Purpose:   KindRefresh,
	}, i.refreshTTL)
}

func (i *Issuer) IssuePurposeToken(userID int64, email string, purpose Kind, ttl time.Duration) (string, time.Time, error) {
	if purpose != KindEmailVerification && purpose != KindPasswordReset {
		return "", time.Time{}, fmt.Errorf("%w: unsupported purpose %q", ErrMisconfigured, purpose)
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: ttl must be positive", ErrMisconfigured)
	}
	return i.sign(Claims{
		UserID:  userID,
		Email:   email,
		Purpose: purpose,
	}, ttl)
}

// Verify checks signature, expiry and purpose. A token signed for one purpose is
// rejected for any other even when signature and expiry are valid.
func (i *Issuer) Verify(tokenStr string, expected Kind) (*Claims, error) {
	secret := i.secretFor(expected)
	if secret == nil {
		return nil, ErrInvalid
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !token.Valid {
		return nil, ErrInvalid
	}

	if claims.Purpose != expected {
		return nil, ErrPurposeMismatch
	}
	if claims.UserID <= 0 || claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return nil, ErrInvalid
	}
	return claims, nil
}

func (i *Issuer) sign(claims Claims, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    i.issuer,
		Subject:   strconv.FormatInt(claims.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secretFor(claims.Purpose))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (i *Issuer) secretFor(kind Kind) []byte {
	switch kind {
	case KindAccess:
		return i.accessSecret
	case KindRefresh:
		return i.refreshSecret
	case KindEmailVerification, KindPasswordReset:
		return i.purposeSecret
	default:
		return nil
	}
}
