// Package collection implements the ordered, whole-document entity store the
// user, role and permission repositories are built on. A Store keeps the
// collection in memory and rewrites the full JSON array under its key after
// every mutation.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/storage"
	"github.com/frahmantamala/access-admin/pkg/logger"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("collection: record not found")

type Option[T any] func(*Store[T])

// WithClock overrides time.Now for timestamp stamping.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) { s.now = now }
}

// WithIDGenerator overrides uuid.NewString for new and backfilled ids.
func WithIDGenerator[T any](newID func() string) Option[T] {
	return func(s *Store[T]) { s.newID = newID }
}

// WithStamp sets the function that records the save time on a record.
func WithStamp[T any](stamp func(T, time.Time) T) Option[T] {
	return func(s *Store[T]) { s.stamp = stamp }
}

// WithBackfill enables id repair on load: records with an empty or repeated
// id get a fresh one and the repaired collection is written back at once.
func WithBackfill[T any](setID func(T, string) T) Option[T] {
	return func(s *Store[T]) { s.setID = setID }
}

func WithLogger[T any](lg *slog.Logger) Option[T] {
	return func(s *Store[T]) { s.logger = lg }
}

type Store[T any] struct {
	mu sync.Mutex

	kv    storage.KV
	key   string
	id    func(T) string
	stamp func(T, time.Time) T
	setID func(T, string) T
	now   func() time.Time
	newID func() string

	logger *slog.Logger

	items  []T
	loaded bool
	dirty  bool
}

func New[T any](kv storage.KV, key string, id func(T) string, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		kv:    kv,
		key:   key,
		id:    id,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.LoggerWrapper()
	}
	s.logger = s.logger.With("collection", key)
	return s
}

// Load replaces the in-memory collection with the persisted one. A missing
// key loads as an empty collection.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// List returns the in-memory collection without touching storage.
func (s *Store[T]) List() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// All returns the collection, loading it from storage on first use only.
func (s *Store[T]) All(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// Get returns the record with the given id from memory.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Upsert stamps the record, replaces the record with the same id in place
// or appends it, then persists the whole collection.
func (s *Store[T]) Upsert(ctx context.Context, item T) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return s.snapshot(), err
	}

	id := s.id(item)
	if id == "" {
		if s.setID == nil {
			return s.snapshot(), internal.NewValidationFieldError("id", "Identifier is required.", internal.ErrCodeValidationFailed)
		}
		id = s.newID()
		item = s.setID(item, id)
	}
	if s.stamp != nil {
		item = s.stamp(item, s.now())
	}

	next := make([]T, len(s.items), len(s.items)+1)
	copy(next, s.items)
	if i := s.indexOf(id); i >= 0 {
		next[i] = item
	} else {
		next = append(next, item)
	}
	s.items = next

	return s.commit(ctx)
}

// Remove drops the record with the given id. Removing an unknown id is a
// no-op and does not write.
func (s *Store[T]) Remove(ctx context.Context, id string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return s.snapshot(), err
	}

	if s.indexOf(id) < 0 {
		return s.snapshot(), nil
	}

	next := make([]T, 0, len(s.items))
	for _, it := range s.items {
		if s.id(it) != id {
			next = append(next, it)
		}
	}
	s.items = next

	return s.commit(ctx)
}

// Update applies fn to the record with the given id in place, stamps it and
// persists. fn returning an error aborts without changes.
func (s *Store[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return s.snapshot(), err
	}

	i := s.indexOf(id)
	if i < 0 {
		return s.snapshot(), ErrNotFound
	}

	updated, err := fn(s.items[i])
	if err != nil {
		return s.snapshot(), err
	}
	if s.stamp != nil {
		updated = s.stamp(updated, s.now())
	}

	next := make([]T, len(s.items))
	copy(next, s.items)
	next[i] = updated
	s.items = next

	return s.commit(ctx)
}

// UpdateWhere applies fn to every record; records for which fn reports a
// change are stamped. Storage is written only when something changed.
func (s *Store[T]) UpdateWhere(ctx context.Context, fn func(T) (T, bool)) ([]T, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return s.snapshot(), 0, err
	}

	changed := 0
	next := make([]T, len(s.items))
	now := s.now()
	for i, it := range s.items {
		updated, ok := fn(it)
		if !ok {
			next[i] = it
			continue
		}
		if s.stamp != nil {
			updated = s.stamp(updated, now)
		}
		next[i] = updated
		changed++
	}
	if changed == 0 {
		return s.snapshot(), 0, nil
	}
	s.items = next

	items, err := s.commit(ctx)
	return items, changed, err
}

// Flush rewrites the in-memory collection if an earlier write failed.
func (s *Store[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	_, err := s.commit(ctx)
	return err
}

// Dirty reports whether the in-memory collection holds changes that did not
// reach storage.
func (s *Store[T]) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Store[T]) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

func (s *Store[T]) load(ctx context.Context) error {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return internal.NewPersistenceError("Failed to read "+s.key, internal.ErrCodeStorageReadFailed, err)
	}

	var items []T
	if found && len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return internal.NewPersistenceError("Stored "+s.key+" are not valid JSON", internal.ErrCodeStorageCorrupt, err)
		}
	}

	backfilled := 0
	if s.setID != nil {
		items, backfilled = s.backfill(items)
	}

	s.items = items
	s.loaded = true
	s.dirty = false

	s.logger.Debug("collection loaded", "count", len(items))

	if backfilled > 0 {
		s.logger.Info("backfilled record identifiers", "count", backfilled)
		if _, err := s.commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store[T]) backfill(items []T) ([]T, int) {
	seen := make(map[string]struct{}, len(items))
	changed := 0
	for i, it := range items {
		id := s.id(it)
		if _, dup := seen[id]; id == "" || dup {
			if dup {
				s.logger.Warn("duplicate record identifier reassigned", "id", id)
			}
			id = s.newID()
			items[i] = s.setID(it, id)
			changed++
		}
		seen[id] = struct{}{}
	}
	return items, changed
}

// commit writes s.items. On failure the in-memory state is kept and marked
// dirty so a later Flush or mutation can retry.
func (s *Store[T]) commit(ctx context.Context) ([]T, error) {
	if err := s.persist(ctx); err != nil {
		s.dirty = true
		s.logger.Error("failed to persist collection", "error", err, "count", len(s.items))
		return s.snapshot(), err
	}
	s.dirty = false
	return s.snapshot(), nil
}

func (s *Store[T]) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return internal.NewPersistenceError("Failed to serialize "+s.key, internal.ErrCodeStorageWriteFailed, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		if errors.Is(err, storage.ErrQuotaExceeded) {
			return internal.NewPersistenceError("Storage is full; "+s.key+" were not saved", internal.ErrCodeStorageQuotaExceeded, err)
		}
		return internal.NewPersistenceError(fmt.Sprintf("Failed to save %s", s.key), internal.ErrCodeStorageWriteFailed, err)
	}
	return nil
}

func (s *Store[T]) indexOf(id string) int {
	for i, it := range s.items {
		if s.id(it) == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) snapshot() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
