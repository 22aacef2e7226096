package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kitforge/backend/internal/model"
)

const avatarUploadTTL = 15 * time.Minute

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Presigner hands out direct-to-bucket upload URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PublicURL(key string) string
}

type AvatarService struct {
	presigner Presigner
	log       *slog.Logger
	now       func() time.Time
}

// NewAvatarService accepts a nil presigner; uploads then report FEATURE_UNAVAILABLE.
func NewAvatarService(presigner Presigner, log *slog.Logger) *AvatarService {
	if log == nil {
		log = slog.Default()
	}
	return &AvatarService{presigner: presigner, log: log.With("component", "avatar"), now: time.Now}
}

func (s *AvatarService) Enabled() bool {
	return s.presigner != nil
}

func (s *AvatarService) CreateUploadURL(ctx context.Context, userID int64, contentType string) (*model.AvatarUploadResponse, error) {
	if s.presigner == nil {
		return nil, ErrFeatureUnavailable
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, validationError("unsupported avatar content type %q", contentType)
	}

	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), ext)
	uploadURL, err := s.presigner.PresignPut(ctx, key, contentType, avatarUploadTTL)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to presign avatar upload", "user_id", userID, "error", err)
		return nil, internalError("presign avatar upload", err)
	}

	return &model.AvatarUploadResponse{
		UploadURL: uploadURL,
		AvatarURL: s.presigner.PublicURL(key),
		Key:       key,
		ExpiresAt: s.now().UTC().Add(avatarUploadTTL),
	}, nil
}
