package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// BlobConfig holds Azure Blob Storage configuration
type BlobConfig struct {
	ConnectionString string
	ContainerName    string
}

// BlobStore uploads exported files to an Azure Blob Storage container
type BlobStore struct {
	client    *azblob.Client
	container string
}

// NewBlobStore creates a client from a storage account connection string
func NewBlobStore(cfg BlobConfig) (*BlobStore, error) {
	if cfg.ConnectionString == "" {
		return nil, errors.New("connection string is required")
	}
	if cfg.ContainerName == "" {
		return nil, errors.New("container name is required")
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Blob client: %w", err)
	}

	return &BlobStore{
		client:    client,
		container: cfg.ContainerName,
	}, nil
}

// Upload writes data as a block blob named name
func (s *BlobStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := s.client.UploadBuffer(ctx, s.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob: %w", err)
	}

	return nil
}

// Container returns the container uploads go to
func (s *BlobStore) Container() string {
	return s.container
}
