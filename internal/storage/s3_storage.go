// Package storage issues presigned S3 upload URLs so clients upload
// design files and images straight to the bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appconfig "github.com/jerseylab/jerseylab-backend/config"
)

const presignExpiry = 15 * time.Minute

var ErrContentTypeNotAllowed = errors.New("content type not allowed")

// Folders and the content types each accepts.
var folderContentTypes = map[string][]string{
	"designs":  {"image/jpeg", "image/png", "image/webp", "image/svg+xml", "application/pdf"},
	"products": {"image/jpeg", "image/png", "image/webp"},
}

// DefaultFolder receives uploads that name no folder.
const DefaultFolder = "designs"

type PresignedURLResponse struct {
	UploadURL string    `json:"upload_url"`
	FileURL   string    `json:"file_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Presigner hands out upload URLs.
type Presigner interface {
	PresignUpload(ctx context.Context, filename, contentType, folder string) (*PresignedURLResponse, error)
}

type S3Storage struct {
	presign func(ctx context.Context, input *s3.PutObjectInput) (string, error)
	bucket  string
	region  string
	baseURL string
}

func NewS3Storage(cfg appconfig.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region:      cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		}
	} else {
		// default credential chain: environment, shared config, IAM role
		awsCfg, err = config.LoadDefaultConfig(context.Background(), config.WithRegion(cfg.Region))
		if err != nil {
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	presignClient := s3.NewPresignClient(s3.NewFromConfig(awsCfg))
	return &S3Storage{
		presign: func(ctx context.Context, input *s3.PutObjectInput) (string, error) {
			req, err := presignClient.PresignPutObject(ctx, input, s3.WithPresignExpires(presignExpiry))
			if err != nil {
				return "", err
			}
			return req.URL, nil
		},
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// PresignUpload validates the content type for folder and returns a PUT
// URL valid for fifteen minutes together with the public file URL.
func (s *S3Storage) PresignUpload(ctx context.Context, filename, contentType, folder string) (*PresignedURLResponse, error) {
	if folder == "" {
		folder = DefaultFolder
	}
	if err := ValidateContentType(folder, contentType); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))

	url, err := s.presign(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResponse{
		UploadURL: url,
		FileURL:   s.fileURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(presignExpiry).UTC(),
	}, nil
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ValidateContentType reports whether folder accepts contentType.
func ValidateContentType(folder, contentType string) error {
	allowed, ok := folderContentTypes[folder]
	if !ok {
		return fmt.Errorf("%w: unknown folder %q", ErrContentTypeNotAllowed, folder)
	}
	for _, t := range allowed {
		if strings.EqualFold(contentType, t) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrContentTypeNotAllowed, contentType)
}
