package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"factoriowiki/internal"
)

// Header written on every save. Reads also accept the English aliases.
var csvHeader = []string{"日本語アイテム名", "アイテムコード", "URL"}

var (
	nameColumns = []string{"日本語アイテム名", "name_ja", "name"}
	codeColumns = []string{"アイテムコード", "item_code", "code"}
	urlColumns  = []string{"url"}
)

// readCSV loads identities in file order. Stray quotes are read literally.
// Malformed rows, rows without a name or code and repeated codes are skipped
// with a warning.
func readCSV(path string) ([]internal.Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := readHeader(r)
	if errors.Is(err, io.EOF) {
		return []internal.Identity{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nameIdx := columnIndex(header, nameColumns)
	codeIdx := columnIndex(header, codeColumns)
	urlIdx := columnIndex(header, urlColumns)
	if nameIdx < 0 || codeIdx < 0 {
		return nil, fmt.Errorf("%s: header must contain name and code columns", path)
	}

	out := []internal.Identity{}
	seen := map[string]struct{}{}
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			slog.Warn("skipping malformed registry row", "path", path, "line", parseErr.StartLine, "err", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}

		id := internal.Identity{
			NameJA: valueAt(row, nameIdx),
			Code:   valueAt(row, codeIdx),
			URL:    valueAt(row, urlIdx),
		}
		if id.NameJA == "" || id.Code == "" {
			slog.Warn("skipping registry row without name or code", "path", path, "line", line)
			continue
		}
		if _, dup := seen[id.Code]; dup {
			slog.Warn("skipping duplicate registry code", "path", path, "line", line, "code", id.Code)
			continue
		}
		seen[id.Code] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// writeCSV replaces the file with a complete snapshot through a temp file
// and rename.
func writeCSV(path string, items []internal.Identity) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return err
	}
	for _, id := range items {
		if err := w.Write([]string{id.NameJA, id.Code, id.URL}); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		name = strings.TrimPrefix(name, "\ufeff")
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func columnIndex(header map[string]int, names []string) int {
	for _, n := range names {
		if idx, ok := header[strings.ToLower(n)]; ok {
			return idx
		}
	}
	return -1
}

func valueAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
