// Package storage defines the key/value persistence the entity collections are
// written to. Each collection is stored whole, as one JSON document per key.
package storage

import (
	"context"
	"errors"
)

// Collection keys.
const (
	KeyUsers       = "users"
	KeyRoles       = "roles"
	KeyPermissions = "permissions"
)

var (
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
	ErrEmptyKey      = errors.New("storage: empty key")
)

// KV is a flat string-keyed byte store. Get reports found=false for a
// missing key rather than an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
