// Package s3service provides S3 operations for the scheme recommendation engine
package s3service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	appConfig "scheme-recommendation-engine/internal/config"
	"scheme-recommendation-engine/internal/utils"
)

// Service handles S3 operations for catalog snapshots.
type Service struct {
	client     *s3.Client
	bucketName string
}

// NewService creates a new S3 service.
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	return &Service{
		client:     s3.NewFromConfig(cfg),
		bucketName: appCfg.S3Bucket,
	}, nil
}

// FetchCatalog downloads a catalog JSON snapshot from S3.
func (s *Service) FetchCatalog(ctx context.Context, key string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		utils.Logger.Error("Failed to fetch catalog from S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to fetch catalog %s: %w", key, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog body: %w", err)
	}

	utils.Logger.Info("Fetched catalog snapshot from S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)

	return data, nil
}

// UploadCatalog uploads a catalog JSON snapshot to S3, used by the seed
// tooling to publish a new catalog version.
func (s *Service) UploadCatalog(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		utils.Logger.Error("Failed to upload catalog to S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upload catalog %s: %w", key, err)
	}

	utils.Logger.Info("Uploaded catalog snapshot to S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)

	return nil
}
