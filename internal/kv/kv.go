// Package kv holds the persisted key/value record storage, used to keep
// small serialized records (like the workout cycle state) between restarts.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("item not found")

type Store interface {
	// GetItem returns ErrNotFound when there is no value under the key.
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
}
