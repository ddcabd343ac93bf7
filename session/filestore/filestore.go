// Package filestore persists the session record as a JSON file per
// namespace under a base directory. The filesystem is abstracted behind
// afero so tests run against an in-memory fs.
package filestore

import (
	"context"
	"encoding/json"
	"io/fs"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/jrsteele09/go-auth-client/session"
)

var _ session.Store = (*Store)(nil)

// Store is a file-backed session.Store.
type Store struct {
	fs  afero.Fs
	dir string
}

// New creates a file store rooted at dir on the given filesystem.
func New(filesystem afero.Fs, dir string) *Store {
	return &Store{fs: filesystem, dir: dir}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) Load(_ context.Context, key string) (*session.Record, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "filestore.Load")
	}

	var record session.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "filestore.Load unmarshal")
	}
	return &record, nil
}

func (s *Store) Save(_ context.Context, key string, record *session.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "filestore.Save marshal")
	}
	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "filestore.Save mkdir")
	}
	// 0600: the record holds live credentials.
	if err := afero.WriteFile(s.fs, s.path(key), data, 0o600); err != nil {
		return errors.Wrap(err, "filestore.Save write")
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "filestore.Delete")
	}
	return nil
}
