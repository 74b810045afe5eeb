package factory

import (
	"fmt"
	"time"

	"github.com/arthurrgg8-lgtm/lazzybiointel-go/internal/storage"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// StorageConfig carries the backend-specific settings the factory needs.
type StorageConfig struct {
	FetchTimeout     time.Duration
	MaxImageBytes    int64
	AzureAccountName string
	AzureAccountKey  string
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType, cfg StorageConfig) (storage.ImageFetcher, error)
}

type storageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType, cfg StorageConfig) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(cfg.FetchTimeout, cfg.MaxImageBytes), nil
	case AzureStorage:
		if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" {
			return nil, fmt.Errorf("azure storage requires account name and key")
		}
		return storage.NewAzureStorage(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.MaxImageBytes)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
