// Package blob stores payment screenshots.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

type imageUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryStore uploads images to Cloudinary and returns their secure URL
type CloudinaryStore struct {
	upload imageUploader
	logger *zap.Logger
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string, logger *zap.Logger) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials not set")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}

	return &CloudinaryStore{upload: &cld.Upload, logger: logger}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, mimeType, folder string) (string, error) {
	result, err := s.upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("upload image: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", errors.New("upload image: no url returned")
	}

	s.logger.Info("Image uploaded",
		zap.String("folder", folder),
		zap.String("mime_type", mimeType),
		zap.Int("bytes", len(data)),
		zap.String("public_id", result.PublicID))

	return result.SecureURL, nil
}
