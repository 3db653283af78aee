// internal/adapter/storage/minio/client.go
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config параметры подключения к MinIO.
type Config struct {
	Endpoint        string // host:port без схемы
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
	// PublicURL базовый адрес для ссылок на объекты; по умолчанию endpoint/bucket.
	PublicURL string
}

func (c Config) endpointURL() string {
	if c.UseSSL {
		return "https://" + c.Endpoint
	}
	return "http://" + c.Endpoint
}

// BaseURL адрес, к которому добавляется ключ объекта в ответах API.
func (c Config) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	return c.endpointURL() + "/" + c.BucketName
}

// Client представляет собой клиент для взаимодействия с MinIO (S3-совместимым хранилищем).
type Client struct {
	s3Client   *s3.Client
	uploader   *manager.Uploader
	bucketName string
	baseURL    string
	logger     *slog.Logger
}

// NewMinioClient создает клиент и при необходимости создает бакет.
func NewMinioClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" {
		return nil, errors.New("minio: endpoint, credentials and bucket name must be set")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for MinIO: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.endpointURL())
		o.UsePathStyle = true
	})

	c := &Client{
		s3Client:   s3Client,
		uploader:   manager.NewUploader(s3Client),
		bucketName: cfg.BucketName,
		baseURL:    cfg.BaseURL(),
		logger:     logger,
	}

	if err := c.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, region string) error {
	headCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.s3Client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)})
	if err == nil {
		c.logger.Info("bucket already exists", "bucket", c.bucketName)
		return nil
	}

	c.logger.Warn("bucket not found, creating", "bucket", c.bucketName)

	input := &s3.CreateBucketInput{Bucket: aws.String(c.bucketName)}
	if region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("create bucket %q: %w", c.bucketName, err)
	}

	waiter := s3.NewBucketExistsWaiter(c.s3Client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucketName)}, 30*time.Second); err != nil {
		return fmt.Errorf("wait for bucket %q: %w", c.bucketName, err)
	}

	c.logger.Info("bucket created", "bucket", c.bucketName)
	return nil
}

// UploadFile загружает объект в бакет.
func (c *Client) UploadFile(ctx context.Context, objectKey string, body io.Reader, contentType string) error {
	start := time.Now()

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		c.logger.Error("failed to upload object", "key", objectKey, "error", err)
		return fmt.Errorf("upload %s to bucket %s: %w", objectKey, c.bucketName, err)
	}

	c.logger.Info("object uploaded",
		"key", objectKey,
		"content_type", contentType,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteFile удаляет объект. Отсутствие объекта не считается ошибкой.
func (c *Client) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		c.logger.Error("failed to delete object", "key", objectKey, "error", err)
		return fmt.Errorf("delete %s from bucket %s: %w", objectKey, c.bucketName, err)
	}

	c.logger.Info("object deleted", "key", objectKey)
	return nil
}

// PublicURL строит ссылку на объект.
func (c *Client) PublicURL(objectKey string) string {
	if objectKey == "" {
		return ""
	}
	return c.baseURL + "/" + objectKey
}
