package domain

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a KeyValueStore when the key has never been written
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is durable client-local storage: one opaque value per key
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}
