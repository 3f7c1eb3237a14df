// Package localstore persists small JSON values under fixed keys, the way a
// browser keeps local storage.
package localstore

import (
	"context"
	"fmt"
)

// Store is a key/value store of JSON documents.
type Store interface {
	// Get decodes the value under key into v. It reports false when the
	// key is absent.
	Get(ctx context.Context, key string, v any) (bool, error)
	// Set stores v under key.
	Set(ctx context.Context, key string, v any) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is the FileStore document.
	Path string
	// RedisAddr and RedisPrefix configure the RedisStore.
	RedisAddr   string
	RedisPrefix string
}

// Open returns the backend named by cfg.Backend; empty means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return OpenFile(cfg.Path)
	case BackendRedis:
		return DialRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
