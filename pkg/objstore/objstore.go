package objstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotExist is returned by Get for a missing key.
var ErrNotExist = errors.New("objstore: object does not exist")

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is a minimal object storage client: whole-object get/put plus
// hierarchical prefix listing. Keys use "/" as the hierarchy delimiter.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// ListPrefixes emulates a directory listing: it returns the distinct
	// "child directories" directly under prefix, each ending in "/".
	ListPrefixes(ctx context.Context, prefix string) ([]string, error)
}
