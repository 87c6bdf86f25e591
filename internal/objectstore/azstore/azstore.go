// Package azstore puts uploaded files into Azure Blob Storage containers.
package azstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"todoTracker/internal/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"go.uber.org/zap"
)

type Store struct {
	client     *azblob.Client
	serviceURL string
}

// New builds a client from a storage account connection string. Retries are off.
func New(connectionString string, timeout time.Duration) (*Store, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry:     policy.RetryOptions{MaxRetries: -1},
			Transport: &http.Client{Timeout: timeout},
		},
	})
	if err != nil {
		logger.Error("Azure: failed to create blob client", err)
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	serviceURL := strings.TrimRight(client.URL(), "/")
	logger.Info("Azure: blob client ready", zap.String("service_url", serviceURL))
	return &Store{client: client, serviceURL: serviceURL}, nil
}

func (s *Store) Put(ctx context.Context, container, key string, body io.Reader, contentType string) error {
	start := time.Now()

	_, err := s.client.UploadStream(ctx, container, key, body, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("uploading %s to container %s: %w", key, container, err)
	}

	logger.Debug("Azure: blob stored",
		zap.String("container", container),
		zap.String("key", key),
		zap.Duration("ms", time.Since(start)))
	return nil
}

func (s *Store) URL(container, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.serviceURL, container, key)
}
