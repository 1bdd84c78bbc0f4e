package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/cancerinfo/cms/config"
	"github.com/cancerinfo/cms/internal/logger"
)

// AvatarPrefix is the key prefix under which profile pictures are stored.
const AvatarPrefix = "profile_pics/"

// Store persists media objects under slash-separated keys.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewAvatarKey returns a fresh key for a PNG avatar.
func NewAvatarKey() string {
	return AvatarPrefix + uuid.NewString() + ".png"
}

// NewStore builds the store selected by cfg.MediaBackend.
func NewStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (Store, error) {
	switch cfg.MediaBackend {
	case config.MediaS3:
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("Using S3 media store", "bucket", s3cfg.BucketName, "region", s3cfg.Region)
		return NewS3Store(s3cfg.Client, s3cfg.BucketName, s3cfg.ObjectURL), nil
	case config.MediaLocal:
		log.Info("Using local media store", "root", cfg.MediaRoot)
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
	}
}

// LocalStore keeps objects on the filesystem under Root and serves them from
// BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{Root: root, BaseURL: baseURL}
}

func (s *LocalStore) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean[1:])), nil
}

func (s *LocalStore) Save(_ context.Context, key string, data []byte, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

// Delete removes the object. A missing object is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	return s.BaseURL + strings.TrimPrefix(key, "/")
}

// ObjectAPI is the subset of the S3 client used by S3Store.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Store struct {
	client ObjectAPI
	bucket string
	urlFor func(key string) string
}

func NewS3Store(client ObjectAPI, bucket string, urlFor func(string) string) *S3Store {
	return &S3Store{client: client, bucket: bucket, urlFor: urlFor}
}

func (s *S3Store) Save(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3Store) URL(key string) string {
	return s.urlFor(key)
}
