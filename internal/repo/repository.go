package repo

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("repo: key not found")

// Storage is the persistence port for the widget: a flat key/value space
// holding opaque documents. Swap in any adapter (memory, file, postgres, redis).
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
