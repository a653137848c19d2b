// Package keygen contains [domain.KeyGenerator] implementations.
package keygen

import (
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// DefaultLength is the length of keys generated by [NewRandom] unless
// [WithLength] is given.
const DefaultLength = 16

// Random implements [domain.KeyGenerator] with base64 encoded random bytes.
// The '+' and '/' characters are left out, so keys are alphanumeric.
type Random struct {
	reader io.Reader
	length int
}

// NewRandom returns a new Random.
func NewRandom(options ...Option) domain.KeyGenerator {
	r := Random{
		reader: rand.Reader,
		length: DefaultLength,
	}
	for _, option := range options {
		option(&r)
	}
	return &r
}

// GenerateKey implements [domain.KeyGenerator].
func (r *Random) GenerateKey() (string, error) {
	res := make([]byte, 0, r.length)
	buf := make([]byte, max(8, r.length*2))
	for len(res) < r.length {
		if _, err := io.ReadFull(r.reader, buf); err != nil {
			return "", err
		}
		for _, b := range []byte(base64.StdEncoding.EncodeToString(buf)) {
			switch b {
			case '+', '/', '=':
				continue
			}
			res = append(res, b)
			if len(res) == r.length {
				break
			}
		}
	}
	return string(res), nil
}
