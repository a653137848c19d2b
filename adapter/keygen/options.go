package keygen

import "io"

// Option configures behavior through the functional options pattern.
type Option func(*Random)

// WithReader sets the reader that will provide random bytes.
func WithReader(r io.Reader) Option {
	return func(igo *Random) {
		igo.reader = r
	}
}

// WithLength sets the length of generated keys. Non-positive lengths are
// ignored.
func WithLength(l int) Option {
	return func(igo *Random) {
		if l > 0 {
			igo.length = l
		}
	}
}
