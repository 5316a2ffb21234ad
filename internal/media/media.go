package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotConfigured возвращается, когда хранилище медиа не подключено.
var ErrNotConfigured = errors.New("media storage is not configured")

// Uploader сохраняет файл и возвращает его публичный URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
}

// Config - параметры подключения к MinIO.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL - базовый адрес для ссылок; по умолчанию схема + Endpoint.
	PublicURL string
}

// MinIO реализует Uploader поверх MinIO/S3.
type MinIO struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIO подключается к MinIO и создает бакет, если его нет.
func NewMinIO(ctx context.Context, cfg Config) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Printf("created media bucket %s", cfg.Bucket)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}

	return &MinIO{client: client, bucket: cfg.Bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (m *MinIO) Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	object := ObjectName(filename)
	_, err := m.client.PutObject(ctx, m.bucket, object, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", object, err)
	}
	return fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, object), nil
}

// ObjectName дает файлу уникальное имя, сохраняя расширение.
func ObjectName(filename string) string {
	return "content/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
}

// IsVideo сообщает, что MIME-тип относится к видео.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}

// IsImage сообщает, что MIME-тип относится к изображению.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
