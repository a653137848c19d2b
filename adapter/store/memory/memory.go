// Package memory contains an in-memory [domain.Store] implementation keeping
// keys sorted.
package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
	"github.com/vinicius-lino-figueiredo/kvdoc/pkg/ctxsync"
)

type entry struct {
	key   string
	value []byte
}

type entryComparer struct{}

// CompareKeys implements bst.Comparer.
func (entryComparer) CompareKeys(a string, b string) (int, error) {
	return strings.Compare(a, b), nil
}

// CompareValues implements bst.Comparer.
func (entryComparer) CompareValues(a entry, b entry) (bool, error) {
	return a.key == b.key, nil
}

// Store implements [domain.Store] on a balanced search tree. Values are copied
// in and out, so callers can reuse their buffers. Store is safe for concurrent
// use.
type Store struct {
	mu   *ctxsync.Mutex
	tree bst.BST[string, entry]
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		mu:   ctxsync.NewMutex(),
		tree: avl.NewBST(true, 8, bst.Comparer[string, entry](entryComparer{})),
	}
}

// Set implements [domain.Store]. Writes are always acknowledged.
func (s *Store) Set(ctx context.Context, key string, value []byte) (bool, error) {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	if _, err := s.remove(key); err != nil {
		return false, err
	}
	if err := s.tree.Insert(key, entry{key: key, value: slices.Clone(value)}); err != nil {
		return false, err
	}
	return true, nil
}

// Get implements [domain.Store].
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return nil, false, err
	}
	defer s.mu.Unlock()

	e, ok, err := s.find(key)
	if err != nil || !ok {
		return nil, false, err
	}
	return slices.Clone(e.value), true, nil
}

// Delete removes key and reports whether it existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	return s.remove(key)
}

// Keys returns every stored key in ascending order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	keys := make([]string, 0, s.tree.GetNumberOfKeys())
	for e := range s.tree.GetAll() {
		keys = append(keys, e.key)
	}
	return keys, nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.GetNumberOfKeys()
}

func (s *Store) find(key string) (entry, bool, error) {
	node, err := s.tree.Search(key)
	if err != nil || node == nil {
		return entry{}, false, err
	}
	vals := node.Values()
	if len(vals) == 0 {
		return entry{}, false, nil
	}
	return vals[0], true, nil
}

func (s *Store) remove(key string) (bool, error) {
	e, ok, err := s.find(key)
	if err != nil || !ok {
		return false, err
	}
	if err := s.tree.Delete(key, &e); err != nil {
		return false, err
	}
	return true, nil
}

var _ domain.Store = (*Store)(nil)
