// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/compranet/compras-backend/internal/config"
)

// StorageService archives ingested spreadsheets to S3 so the original
// upload can be recovered after a disputed import. Without AWS
// credentials it is a no-op.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// ArchiveSpreadsheet stores the raw upload under uploads/YYYY/MM/.
// Returns the object key, or "" when archiving is disabled.
func (s *StorageService) ArchiveSpreadsheet(filename string, content []byte) (string, error) {
	if s.s3Client == nil {
		return "", nil
	}

	key := s.generateKey(filename)

	contentType := "application/octet-stream"
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		contentType = "text/csv"
	}

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return key, nil
}

func (s *StorageService) generateKey(filename string) string {
	now := time.Now()
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	return fmt.Sprintf("uploads/%d/%02d/%s-%s%s", now.Year(), now.Month(), base, uuid.New().String()[:8], ext)
}
