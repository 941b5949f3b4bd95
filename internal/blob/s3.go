// Package blob issues presigned URLs for profile avatars kept in an
// S3-compatible bucket. Clients upload and download directly; the server
// never proxies the bytes.
package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// DefaultExpiry bounds how long a presigned URL stays valid.
const DefaultExpiry = 15 * time.Minute

// Config selects the bucket and credentials. An empty Endpoint means AWS.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// presigner is the part of *s3.PresignClient the store uses.
type presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Store presigns avatar uploads and downloads.
type Store struct {
	presign presigner
	bucket  string
	expiry  time.Duration
}

// NewS3Store builds a store for cfg. Path-style addressing is forced so
// MinIO and other S3-compatible servers work.
func NewS3Store(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsConfig, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})
	return &Store{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  DefaultExpiry,
	}, nil
}

// Upload is a presigned PUT the client performs itself.
type Upload struct {
	URL         string    `json:"upload_url"`
	Method      string    `json:"method"`
	ObjectKey   string    `json:"object_key"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// avatarExtensions are the accepted avatar content types.
var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarKey returns a fresh object key for an avatar of userID, or an error
// if contentType is not an accepted image type.
func AvatarKey(userID uuid.UUID, contentType string) (string, error) {
	ext, ok := avatarExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported avatar content type %q", contentType)
	}
	return "avatars/" + userID.String() + "/" + uuid.NewString() + ext, nil
}

// OwnsKey reports whether key lies under userID's avatar prefix.
func OwnsKey(userID uuid.UUID, key string) bool {
	return strings.HasPrefix(key, "avatars/"+userID.String()+"/")
}

// PresignAvatarUpload returns a PUT URL for a new avatar of userID.
func (s *Store) PresignAvatarUpload(ctx context.Context, userID uuid.UUID, contentType string) (*Upload, error) {
	key, err := AvatarKey(userID, contentType)
	if err != nil {
		return nil, err
	}
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return nil, fmt.Errorf("presigning upload for %s: %w", key, err)
	}
	return &Upload{
		URL:         req.URL,
		Method:      req.Method,
		ObjectKey:   key,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(s.expiry).UTC(),
	}, nil
}

// PresignDownload returns a GET URL for key.
func (s *Store) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presigning download for %s: %w", key, err)
	}
	return req.URL, nil
}
