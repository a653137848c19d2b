package redis

import "time"

// DefaultPrefix is prepended to every key unless [WithPrefix] is given. Keys
// are stored as they are by default.
const DefaultPrefix = ""

const scanCount = 100

// Option configures a [Store] through the functional options pattern.
type Option func(*Store)

// WithPrefix sets the namespace prepended to every key, like "kvdoc:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL sets the expiration of written documents. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}
