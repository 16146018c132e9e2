// Package db persists small pieces of player state that must survive a
// restart, such as whether the tutorial was completed.
package db

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var ErrUnknownBackend = errors.New("unknown store backend")

type Store interface {
	// Flag reports the stored value of key. A key never set reads as false.
	Flag(ctx context.Context, key string) (bool, error)
	SetFlag(ctx context.Context, key string, value bool) error
}

type Options struct {
	Backend  string
	Path     string
	Table    string
	Endpoint string
	Region   string
}

// Open returns the store selected by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Path), nil
	case "memory":
		return NewMemoryStore(), nil
	case "dynamodb":
		return NewDynamoStore(opts.Table, opts.Endpoint, opts.Region)
	}
	return nil, errors.Wrapf(ErrUnknownBackend, "%q", opts.Backend)
}

type MemoryStore struct {
	mu    sync.Mutex
	flags map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: make(map[string]bool)}
}

func (s *MemoryStore) Flag(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[key], nil
}

func (s *MemoryStore) SetFlag(_ context.Context, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = value
	return nil
}
