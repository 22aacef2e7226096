package client

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kitforge/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minioConfig() config.StorageConfig {
	return config.StorageConfig{
		Bucket:    "avatars",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}
}

func TestS3PresignerPathStyle(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), minioConfig())
	require.NoError(t, err)

	raw, err := p.PresignPut(context.Background(), "avatars/1/a.png", "image/png", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/avatars/avatars/1/a.png", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	assert.Equal(t, "http://127.0.0.1:9000/avatars/avatars/1/a.png", p.PublicURL("avatars/1/a.png"))
}

func TestS3PresignerPublicURL(t *testing.T) {
	cfg := minioConfig()
	cfg.PublicURL = "https://cdn.kit.dev/"
	p, err := NewS3Presigner(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.kit.dev/k.png", p.PublicURL("k.png"))

	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", defaultPublicURL(config.StorageConfig{Bucket: "b", Region: "eu-west-1"}))
}

func TestS3PresignerRequiresBucket(t *testing.T) {
	_, err := NewS3Presigner(context.Background(), config.StorageConfig{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestS3PresignerErrors(t *testing.T) {
	origLoad, origPresign := loadDefaultAWSConfig, presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		presignPutObject = origPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}
	_, err := NewS3Presigner(context.Background(), minioConfig())
	assert.ErrorContains(t, err, "no region")

	loadDefaultAWSConfig = origLoad
	p, err := NewS3Presigner(context.Background(), minioConfig())
	require.NoError(t, err)

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		assert.Equal(t, "image/png", aws.ToString(in.ContentType))
		return nil, errors.New("presign-put-fail")
	}
	_, err = p.PresignPut(context.Background(), "k", "image/png", time.Minute)
	assert.True(t, strings.Contains(err.Error(), "presign-put-fail"))
}
