// Package kvstore provides the persisted key-value backing store used by the
// summary cache. Implementations can be in-memory (default), SQLite, or
// distributed (Valkey).
package kvstore

import "context"

// Store is a minimal string-oriented key-value store. Absent keys are
// signalled with ok=false rather than an error.
type Store interface {
	GetString(ctx context.Context, key string) (value string, ok bool, err error)
	SetString(ctx context.Context, key, value string) error
	GetStringList(ctx context.Context, key string) (values []string, ok bool, err error)
	SetStringList(ctx context.Context, key string, values []string) error
	Remove(ctx context.Context, key string) error
}
