// Package metadata is a small key/value store inside the client database,
// holding tokens, the signed-in username, and the sync watermark.
package metadata

import "context"

// Repository is a string key/value store. Get on a missing key returns
// "" with no error.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
