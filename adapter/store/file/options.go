package file

import "os"

const (
	DefaultDirMode  os.FileMode = 0o755
	DefaultFileMode os.FileMode = 0o644
)

// Option configures a [Store] through the functional options pattern.
type Option func(*Store)

// WithDirMode sets the permissions of the directory, if it has to be created.
func WithDirMode(m os.FileMode) Option {
	return func(s *Store) {
		s.dirMode = m
	}
}

// WithFileMode sets the permissions of document files.
func WithFileMode(m os.FileMode) Option {
	return func(s *Store) {
		s.fileMode = m
	}
}
