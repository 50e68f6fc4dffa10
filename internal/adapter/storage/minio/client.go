// internal/adapter/storage/minio/client.go
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "github.com/GoArmGo/MovieApp/internal/config"
	"github.com/GoArmGo/MovieApp/internal/domain"
)

// Client реализует ports.FileStorage поверх MinIO (S3-совместимого хранилища).
// Альтернатива локальному диску, выбирается через FILE_BACKEND=minio.
type Client struct {
	s3Client   *s3.Client
	uploader   *manager.Uploader
	bucketName string
	logger     *slog.Logger
}

// NewClient создает и инициализирует MinIO-клиент, используя переданную конфигурацию.
// Бакет создается, если его еще нет.
func NewClient(cfg *appconfig.Config, logger *slog.Logger) (*Client, error) {
	scheme := "http"
	if cfg.MinioUseSSL {
		scheme = "https"
	}
	endpointURL := fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)

	cfgAws, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.MinioAccessKeyID, cfg.MinioSecretAccessKey, ""),
		),
		awsconfig.WithRegion(cfg.MinioRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for MinIO: %w", err)
	}

	s3Client := s3.NewFromConfig(cfgAws, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL)
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(s3Client)

	// Проверяем существование бакета
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.MinioBucketName),
	})
	if err != nil {
		logger.Info("bucket not found, creating", "bucket", cfg.MinioBucketName)

		_, createErr := s3Client.CreateBucket(context.Background(), &s3.CreateBucketInput{
			Bucket: aws.String(cfg.MinioBucketName),
			CreateBucketConfiguration: &types.CreateBucketConfiguration{
				LocationConstraint: types.BucketLocationConstraint(cfg.MinioRegion),
			},
		})
		if createErr != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.MinioBucketName, createErr)
		}

		waiter := s3.NewBucketExistsWaiter(s3Client)
		if err := waiter.Wait(context.Background(), &s3.HeadBucketInput{
			Bucket: aws.String(cfg.MinioBucketName),
		}, 30*time.Second); err != nil {
			return nil, fmt.Errorf("failed waiting for bucket '%s' to be created: %w", cfg.MinioBucketName, err)
		}

		logger.Info("bucket created successfully", "bucket", cfg.MinioBucketName)
	}

	return &Client{
		s3Client:   s3Client,
		uploader:   uploader,
		bucketName: cfg.MinioBucketName,
		logger:     logger,
	}, nil
}

// contentTypeForKey определяет MIME-тип по расширению ключа
func contentTypeForKey(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Save загружает содержимое reader в бакет под ключом key
func (c *Client) Save(ctx context.Context, key string, reader io.Reader) (string, error) {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentTypeForKey(key)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s to bucket %s: %w", key, c.bucketName, err)
	}

	c.logger.Info("file uploaded to MinIO", "key", key, "bucket", c.bucketName)
	return key, nil
}

// Open получает содержимое файла из MinIO.
// Ключи объектов в S3 не интерпретируются как пути файловой системы,
// поэтому дополнительного ограничения корня здесь не требуется.
func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			c.logger.Warn("object not found in MinIO", "key", key)
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file %s from bucket %s: %w", key, c.bucketName, err)
	}
	return output.Body, nil
}

// Remove удаляет файл из MinIO
func (c *Client) Remove(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s from bucket %s: %w", key, c.bucketName, err)
	}
	return nil
}
