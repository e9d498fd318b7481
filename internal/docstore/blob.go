package docstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobStore keeps each document as a blob in one container.
type BlobStore struct {
	client    *azblob.Client
	container string
}

var _ Store = (*BlobStore)(nil)

func NewBlobStore(container string) (*BlobStore, error) {
	accountName, ok := os.LookupEnv("AZURE_STORAGE_ACCOUNT_NAME")
	if !ok {
		return nil, fmt.Errorf("AZURE_STORAGE_ACCOUNT_NAME could not be found")
	}
	accountKey, ok := os.LookupEnv("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY")
	if !ok {
		return nil, fmt.Errorf("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY could not be found")
	}

	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(fmt.Sprintf("https://%s.blob.core.windows.net/", accountName), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobStore{client: client, container: container}, nil
}

func (bs *BlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	stream, err := bs.client.DownloadStream(ctx, bs.container, key, &azblob.DownloadStreamOptions{})
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return stream.Body, nil
}

func (bs *BlobStore) Put(ctx context.Context, key, value string, opts PutOptions) error {
	if opts.Condition == PutIfNoneMatch {
		// UploadStream has no clean if-none-match path on this client; an
		// existence probe is good enough for single-writer chats.
		exists, err := bs.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyExists
		}
	}
	_, err := bs.client.UploadStream(ctx, bs.container, key, strings.NewReader(value), &azblob.UploadStreamOptions{})
	return err
}

func (bs *BlobStore) Delete(ctx context.Context, key string) error {
	_, err := bs.client.DeleteBlob(ctx, bs.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (bs *BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	body, err := bs.Get(ctx, key)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	_ = body.Close()
	return true, nil
}

func (bs *BlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pager := bs.client.NewListBlobsFlatPager(bs.container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get next page of blobs: %w", err)
		}
		for _, blob := range page.Segment.BlobItems {
			keys = append(keys, strings.TrimPrefix(*blob.Name, prefix))
		}
	}
	return keys, nil
}
