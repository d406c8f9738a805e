package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobStorage is a shared key data plane client of one storage account.
type BlobStorage struct {
	accountName string
	client      *azblob.Client
}

func (s *StorageAccount) BlobStorage(ctx context.Context) (*BlobStorage, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	cred, err := azblob.NewSharedKeyCredential(s.Name(), keys[0].Value)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}
	var options *azblob.ClientOptions
	if armOptions := s.accounts.manager.client.Options(); armOptions != nil {
		options = &azblob.ClientOptions{ClientOptions: armOptions.ClientOptions}
	}
	client, err := azblob.NewClientWithSharedKeyCredential(s.BlobEndpoint(), cred, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
	}
	return &BlobStorage{accountName: s.Name(), client: client}, nil
}

// UploadBlob uploads content to a blob of an existing container.
func (s *StorageAccount) UploadBlob(ctx context.Context, containerName, blobName string, content []byte) error {
	blobs, err := s.BlobStorage(ctx)
	if err != nil {
		return err
	}
	return blobs.UploadBlob(ctx, containerName, blobName, content)
}

func (b *BlobStorage) Client() *azblob.Client {
	return b.client
}

func (b *BlobStorage) CreateContainer(ctx context.Context, containerName string) error {
	_, err := b.client.CreateContainer(ctx, containerName, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "ContainerAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create container: %w", err)
	}
	log.Printf("Created container %s in %s\n", containerName, b.accountName)
	return nil
}

func (b *BlobStorage) UploadBlob(ctx context.Context, containerName, blobName string, content []byte) error {
	_, err := b.client.UploadBuffer(ctx, containerName, blobName, content, nil)
	if err != nil {
		return fmt.Errorf("failed to upload blob %s/%s: %w", containerName, blobName, err)
	}
	return nil
}

// DownloadBlob returns nil content for a missing blob.
func (b *BlobStorage) DownloadBlob(ctx context.Context, containerName, blobName string) ([]byte, error) {
	resp, err := b.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "BlobNotFound" {
			return nil, nil
		}
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}

func (b *BlobStorage) DeleteBlob(ctx context.Context, containerName, blobName string) error {
	_, err := b.client.DeleteBlob(ctx, containerName, blobName, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "BlobNotFound" {
			return nil
		}
		return err
	}
	return nil
}

func (b *BlobStorage) ListBlobs(ctx context.Context, containerName, prefix string) ([]string, error) {
	var blobs []string
	options := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		options.Prefix = to.Ptr(prefix)
	}
	pager := b.client.NewListBlobsFlatPager(containerName, options)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, blob := range resp.Segment.BlobItems {
			blobs = append(blobs, *blob.Name)
		}
	}
	return blobs, nil
}
