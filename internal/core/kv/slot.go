package kv

import (
	"context"
	"errors"
	"time"
)

// Slot is a single typed value stored under one key.
type Slot[T any] struct {
	store Store
	key   string
}

// NewSlot returns the slot stored under scope:name.
func NewSlot[T any](store Store, scope, name string) *Slot[T] {
	return &Slot[T]{store: store, key: Key(scope, name)}
}

// Key returns the store key of the slot.
func (s *Slot[T]) Key() string { return s.key }

// Load returns the stored value. ok is false when nothing is stored or the
// value expired.
func (s *Slot[T]) Load(ctx context.Context) (v T, ok bool, err error) {
	err = s.store.Get(ctx, s.key, &v)
	switch {
	case errors.Is(err, ErrNotFound):
		var zero T
		return zero, false, nil
	case err != nil:
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// Store replaces the value.
func (s *Slot[T]) Store(ctx context.Context, v T) error {
	return s.store.Set(ctx, s.key, v)
}

// StoreFor replaces the value until ttl has passed.
func (s *Slot[T]) StoreFor(ctx context.Context, v T, ttl time.Duration) error {
	return s.store.SetTTL(ctx, s.key, v, ttl)
}

// Clear removes the value.
func (s *Slot[T]) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.key)
}
