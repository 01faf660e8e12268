package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
)

// OpenFunc opens the file identified by key for reading. The caller is responsible
// for closing it.
type OpenFunc func(context.Context, string) (io.ReadCloser, error)

// BucketOpener returns an OpenFunc that reads keys from bucket.
func BucketOpener(bucket *blob.Bucket) OpenFunc {

	return func(ctx context.Context, key string) (io.ReadCloser, error) {

		r, err := bucket.NewReader(ctx, key, nil)

		if err != nil {
			return nil, fmt.Errorf("Failed to open %s for reading, %w", key, err)
		}

		return r, nil
	}
}

// DirectoryOpener returns an OpenFunc that reads keys as file names relative to dir.
// Keys are passed to the operating system unchanged so any name the file system
// allows can be read.
func DirectoryOpener(dir string) OpenFunc {

	return func(ctx context.Context, key string) (io.ReadCloser, error) {

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			// pass
		}

		path := filepath.Join(dir, key)

		fh, err := os.Open(path)

		if err != nil {
			return nil, fmt.Errorf("Failed to open %s for reading, %w", path, err)
		}

		return fh, nil
	}
}
