package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

// table is a fully read CSV file with a header index. Headers are matched
// case-insensitively after trimming, so "Bot" and "bot " both resolve to bot.
type table struct {
	source string
	path   string
	header []string
	cols   map[string]int
	rows   [][]string
}

func readTable(source, path string, required ...string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &SourceError{Source: source, Path: path, Err: ErrSourceMissing}
		}
		return nil, &SourceError{Source: source, Path: path, Err: err}
	}
	defer f.Close()

	t, err := parseTable(source, path, f)
	if err != nil {
		return nil, err
	}
	for _, col := range required {
		if _, ok := t.cols[col]; !ok {
			return nil, &SourceError{Source: source, Path: path, Err: fmt.Errorf("%w: %q", ErrMissingColumn, col)}
		}
	}
	return t, nil
}

func parseTable(source, path string, r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // spreadsheet exports pad rows unevenly
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return &table{source: source, path: path, cols: map[string]int{}}, nil
	}
	if err != nil {
		return nil, &SourceError{Source: source, Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	t := &table{
		source: source,
		path:   path,
		header: make([]string, len(header)),
		cols:   make(map[string]int, len(header)),
	}
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		key := headerKey(col)
		t.header[i] = key
		if _, dup := t.cols[key]; !dup {
			t.cols[key] = i
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &SourceError{Source: source, Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

func headerKey(col string) string {
	return strings.ToLower(strings.TrimSpace(col))
}

// get returns the trimmed cell for col, or "" when the column or cell is absent.
func (t *table) get(record []string, col string) string {
	if idx, ok := t.cols[headerKey(col)]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// raw returns the untrimmed cell.
func (t *table) raw(record []string, col string) string {
	if idx, ok := t.cols[headerKey(col)]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}

// marked reports whether a cell carries a truthy annotation mark.
func marked(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "x", "yes", "y", "true", "1":
		return true
	}
	return false
}

// splitPaths splits a multi-path cell on commas or semicolons, dropping empty
// segments and keeping order.
func splitPaths(cell string) []string {
	parts := strings.FieldsFunc(cell, func(r rune) bool { return r == ',' || r == ';' })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
