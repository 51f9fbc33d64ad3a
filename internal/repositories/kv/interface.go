// Package kv provides the key-value store that backs every persisted auth
// document (users, session tokens, reset tokens, the session snapshot).
//
// Backends: SQL (sqlite, postgres), in-memory and S3-compatible object
// storage. All of them share the Repository contract below.
package kv

import (
	"context"
)

// UpdateFunc receives the current value (nil when the key is absent) and
// returns the value to store. Returning a nil value deletes the key;
// returning an error aborts the update and leaves the key unchanged.
type UpdateFunc func(current []byte) ([]byte, error)

// Repository is a string-keyed store of opaque values.
//
// Contract:
//   - Get returns (nil, nil) when the key does not exist.
//   - Delete of a missing key is not an error.
//   - Update performs a read-modify-write of one key. SQL backends run it
//     in a transaction; the memory backend under its lock; the S3 backend
//     without isolation.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
