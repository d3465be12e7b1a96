package cache

import (
	"context"
	"time"
)

// BlobStore keeps opaque key/value blobs such as the sales cart.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
