package storage

import (
	"context"
	"fmt"
)

type quotaKV struct {
	KV
	maxBytes int64
}

// WithQuota caps the total size of all stored values. A Set that would push
// the total past maxBytes fails with ErrQuotaExceeded and leaves the previous
// value in place. maxBytes <= 0 disables the cap.
func WithQuota(kv KV, maxBytes int64) KV {
	if maxBytes <= 0 {
		return kv
	}
	return &quotaKV{KV: kv, maxBytes: maxBytes}
}

func (q *quotaKV) Set(ctx context.Context, key string, value []byte) error {
	used, err := q.usageExcluding(ctx, key)
	if err != nil {
		return err
	}
	if used+int64(len(value)) > q.maxBytes {
		return fmt.Errorf("%w: writing %q needs %d bytes, %d of %d in use",
			ErrQuotaExceeded, key, len(value), used, q.maxBytes)
	}
	return q.KV.Set(ctx, key, value)
}

func (q *quotaKV) usageExcluding(ctx context.Context, skip string) (int64, error) {
	keys, err := q.KV.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("storage: list keys: %w", err)
	}
	var total int64
	for _, k := range keys {
		if k == skip {
			continue
		}
		v, ok, err := q.KV.Get(ctx, k)
		if err != nil {
			return 0, fmt.Errorf("storage: read %q: %w", k, err)
		}
		if ok {
			total += int64(len(v))
		}
	}
	return total, nil
}
