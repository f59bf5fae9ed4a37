package interfaces

import "context"

// CacheProvider stores joined documents keyed by a digest of their input.
// A miss is reported with ok == false and a nil error.
type CacheProvider interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
