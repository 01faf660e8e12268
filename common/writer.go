package common

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/whosonfirst/go-writer/v3"
)

var writers = make(map[string]writer.Writer)
var writers_mu = new(sync.RWMutex)

// NewWriter returns a whosonfirst/go-writer.Writer instance. Instances
// are cached in memory for repeat lookups.
func NewWriter(ctx context.Context, uri string) (writer.Writer, error) {

	writers_mu.Lock()
	defer writers_mu.Unlock()

	wr, ok := writers[uri]

	if ok {
		return wr, nil
	}

	wr, err := writer.NewWriter(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create writer for '%s', %w", uri, err)
	}

	writers[uri] = wr
	return wr, nil
}

// NewFileSystemWriter returns a (cached) whosonfirst/go-writer.Writer instance that
// writes to the local directory dir.
func NewFileSystemWriter(ctx context.Context, dir string) (writer.Writer, error) {

	abs_dir, err := filepath.Abs(dir)

	if err != nil {
		return nil, fmt.Errorf("Failed to derive absolute path for %s, %w", dir, err)
	}

	uri := fmt.Sprintf("fs://%s", filepath.ToSlash(abs_dir))
	return NewWriter(ctx, uri)
}
