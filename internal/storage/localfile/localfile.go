// Package localfile persists a cart to a single JSON file, the kiosk's
// equivalent of browser local storage: one key, read once at startup,
// rewritten after every mutation.
package localfile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/tdhoang/teahouse/internal/domain/order"
)

// Store reads and writes one cart snapshot at a fixed path.
type Store struct {
	path string
}

// New creates a Store for the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted cart. A missing file is an empty cart, not an
// error.
func (s *Store) Load() ([]order.LineItem, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read cart file")
	}

	var items []order.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "decode cart file")
	}
	return items, nil
}

// Save writes the full cart snapshot. The write goes to a temp file first and
// is renamed into place, so a crash mid-write never leaves a torn cart.
func (s *Store) Save(items []order.LineItem) error {
	if items == nil {
		items = []order.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create cart directory")
	}

	tmp, err := os.CreateTemp(dir, ".cart-*")
	if err != nil {
		return errors.Wrap(err, "create temp cart file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write cart file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close cart file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace cart file")
	}
	return nil
}
