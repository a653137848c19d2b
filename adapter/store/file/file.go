// Package file contains a [domain.Store] implementation keeping one file per
// key in a directory.
package file

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/dolmen-go/contextio"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Ext is the extension of document files.
const Ext = ".kvdoc"

// Store implements [domain.Store] on the file system. File names are the hex
// encoded keys, so any key is a valid name on every platform. Writes go to a
// temporary file that is renamed over the old one, so a crash never leaves a
// document half written.
type Store struct {
	dir      string
	dirMode  os.FileMode
	fileMode os.FileMode
	osOps    osOps
}

// NewStore returns a Store keeping its files in dir. The directory is created
// on the first write.
func NewStore(dir string, options ...Option) *Store {
	s := &Store{
		dir:      dir,
		dirMode:  DefaultDirMode,
		fileMode: DefaultFileMode,
		osOps:    &osImpl{},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, hex.EncodeToString([]byte(key))+Ext)
}

// Set implements [domain.Store].
func (s *Store) Set(ctx context.Context, key string, value []byte) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	if err := s.osOps.MkdirAll(s.dir, s.dirMode); err != nil {
		return false, err
	}

	filename := s.path(key)
	tempFilename := filename + "~"
	if err := s.writeFile(ctx, tempFilename, value); err != nil {
		_ = s.osOps.Remove(tempFilename)
		return false, err
	}
	if err := s.osOps.Rename(tempFilename, filename); err != nil {
		_ = s.osOps.Remove(tempFilename)
		return false, err
	}
	if err := s.flushDir(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) writeFile(ctx context.Context, filename string, value []byte) error {
	f, err := s.osOps.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.fileMode)
	if err != nil {
		return err
	}
	if _, err := contextio.NewWriter(ctx, f).Write(value); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// flushDir persists the rename. Directories cannot be synced on windows.
func (s *Store) flushDir() error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := s.osOps.OpenFile(s.dir, os.O_RDONLY, s.dirMode)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}

// Get implements [domain.Store].
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	f, err := s.osOps.OpenFile(s.path(key), os.O_RDONLY, s.fileMode)
	if err != nil {
		if s.osOps.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	b, err := io.ReadAll(contextio.NewReader(ctx, f))
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Delete removes key and reports whether it existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	if err := s.osOps.Remove(s.path(key)); err != nil {
		if s.osOps.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Keys returns every stored key in ascending order. Files not written by the
// store are skipped.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	entries, err := s.osOps.ReadDir(s.dir)
	if err != nil {
		if s.osOps.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), Ext)
		if !ok || e.IsDir() {
			continue
		}
		k, err := hex.DecodeString(name)
		if err != nil {
			continue
		}
		keys = append(keys, string(k))
	}
	slices.Sort(keys)
	return keys, nil
}

var _ domain.Store = (*Store)(nil)
