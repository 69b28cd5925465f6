// Package localstore is a small file-backed key-value store holding the
// session's durable state: the catalog snapshot, the live cart, and the
// original-cart snapshot. Values are JSON, gzip-compressed on disk.
//
// Reads are forgiving: a missing, truncated, or otherwise undecodable entry
// is reported as absent, never as an error, because in-memory state stays
// authoritative for the session.
package localstore

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
)

// Well-known keys, carried over from the browser storage namespace.
const (
	KeyProducts     = "aymShopProducts"
	KeyCart         = "aymShopCart"
	KeyOriginalCart = "aymShopOriginalCart"
)

// Store persists values as one compressed JSON file per key under dir.
type Store struct {
	dir string
}

// Open ensures dir exists and returns a Store rooted there.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return &Store{dir: dir}, nil
}

// Put serializes v and writes it under key. The write goes through a
// temporary file and a rename so a crash never leaves a half-written entry.
func (s *Store) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "marshal %s", key)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	zw := pgzip.NewWriter(tmp)
	if _, err := zw.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", key)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "flush %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", key)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errors.Wrapf(err, "rename %s", key)
	}
	return nil
}

// Get reads the value stored under key into v. It returns false when the
// entry is missing or cannot be decoded.
func (s *Store) Get(key string, v any) bool {
	f, err := os.Open(s.path(key))
	if err != nil {
		return false
	}
	defer f.Close()

	zr, err := pgzip.NewReader(f)
	if err != nil {
		return false
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// Delete removes the entry for key, if any.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json.gz")
}
