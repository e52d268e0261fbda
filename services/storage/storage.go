package storage

import (
	"context"
	"fmt"

	"fundilink/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// StorageService stores completion-photo evidence for bookings.
type StorageService interface {
	// UploadFile uploads a local file into destFolder and returns the
	// permanent public identifier.
	UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error)
	// DeleteFile removes a previously uploaded file by its public ID.
	DeleteFile(ctx context.Context, publicID string) error
	// DownloadURL constructs a public URL for a stored file.
	DownloadURL(publicID string) (string, error)
}

// CloudinaryStorage implements StorageService on Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage initializes the Cloudinary client from the
// CLOUDINARY_URL credential string.
func NewCloudinaryStorage() (*CloudinaryStorage, error) {
	url := config.AppConfig.CloudinaryURL
	if url == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, localFilePath, uploader.UploadParams{Folder: destFolder})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	if result.PublicID == "" {
		return "", fmt.Errorf("upload returned no public ID")
	}
	return result.PublicID, nil
}

func (s *CloudinaryStorage) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", publicID, err)
	}
	return nil
}

func (s *CloudinaryStorage) DownloadURL(publicID string) (string, error) {
	img, err := s.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve asset %s: %w", publicID, err)
	}
	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("failed to build URL for %s: %w", publicID, err)
	}
	return url, nil
}
