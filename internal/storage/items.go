package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"factoriowiki/internal"
)

// ItemStore keeps one JSON document per item code in a directory.
type ItemStore struct {
	dir string
}

func NewItemStore(dir string) *ItemStore {
	return &ItemStore{dir: dir}
}

func (s *ItemStore) Dir() string { return s.dir }

// FileName is item_<code>.json with path separators replaced.
func FileName(code string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(code)
	return "item_" + safe + ".json"
}

func (s *ItemStore) Path(code string) string {
	return filepath.Join(s.dir, FileName(code))
}

// Load returns nil without error when the item has no file yet.
func (s *ItemStore) Load(code string) (*internal.ItemRecord, error) {
	path := s.Path(code)
	blob, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec internal.ItemRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &rec, nil
}

// Save writes the record with 4-space indentation and unescaped non-ASCII,
// replacing any previous file atomically.
func (s *ItemStore) Save(rec internal.ItemRecord) (string, error) {
	blob, err := Render(rec)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	path := s.Path(rec.ItemCode)
	tmp, err := os.CreateTemp(s.dir, FileName(rec.ItemCode)+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

// Render is the on-disk form of a record.
func Render(rec internal.ItemRecord) ([]byte, error) {
	compact, err := rec.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "    "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// List loads every item file, sorted by file name. Unreadable files are
// returned as an error naming the file.
func (s *ItemStore) List() ([]internal.ItemRecord, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "item_*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]internal.ItemRecord, 0, len(paths))
	for _, path := range paths {
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var rec internal.ItemRecord
		if err := json.Unmarshal(blob, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
