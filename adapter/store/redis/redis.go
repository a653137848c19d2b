// Package redis contains a [domain.Store] implementation backed by Redis.
package redis

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Store implements [domain.Store] with one Redis string per document. Keys can
// be namespaced with a prefix.
type Store struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewStore returns a Store using client. Documents never expire unless
// [WithTTL] is given.
func NewStore(client redis.Cmdable, options ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Set implements [domain.Store]. The write is acknowledged when Redis replies
// OK.
func (s *Store) Set(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := s.client.Set(ctx, s.key(key), value, s.ttl).Result()
	if err != nil {
		return false, err
	}
	return res == "OK", nil
}

// Get implements [domain.Store].
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Delete removes key and reports whether it existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Keys returns every key under the store prefix, without it, in ascending
// order. Without a prefix, every key of the database is returned.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	it := s.client.Scan(ctx, 0, globEscaper.Replace(s.prefix)+"*", scanCount).Iterator()
	for it.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(it.Val(), s.prefix))
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// globEscaper escapes the characters SCAN MATCH patterns give a meaning to.
var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

var _ domain.Store = (*Store)(nil)
