package services

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/models"
	"storefront/internal/storage"
	"storefront/internal/transport"
)

var testKeys = storage.NewKeys("")

// flakyStore wraps a MemoryStore and fails operations on demand.
type flakyStore struct {
	*storage.MemoryStore
	failGet bool
	failSet bool
}

var errStorageDown = errors.New("storage unavailable")

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errStorageDown
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errStorageDown
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type fakeTransport struct {
	mu     sync.Mutex
	result *transport.LoginResult
	err    error
	calls  []models.Role
	hook   func(role models.Role)
}

func (f *fakeTransport) Login(_ context.Context, _ models.Credentials, role models.Role) (*transport.LoginResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, role)
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		hook(role)
	}
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	return &res, nil
}
