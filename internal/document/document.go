// Package document loads tabular documents from a directory tree.
//
// A document is a directory under the store root; each CSV file inside it is
// one table, named after the file without its extension. The first CSV
// record holds the column headers.
package document

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when no document exists for an id.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID is returned for ids that are empty or would escape the store root.
	ErrInvalidID = errors.New("invalid document id")
)

const tableExt = ".csv"

// Table is a named grid of string cells.
type Table struct {
	ID      string
	Columns []string
	Rows    [][]string
}

// Document is an opened, read-only tabular document.
type Document struct {
	name   string
	tables []*Table
}

// New builds a document from already-loaded tables. Tables keep the given order.
func New(name string, tables ...*Table) *Document {
	return &Document{name: name, tables: tables}
}

// Name returns the document name (its id in the store).
func (d *Document) Name() string {
	return d.name
}

// Tables returns the document's tables. Documents opened from a Store list
// them ordered by id.
func (d *Document) Tables() []*Table {
	return d.tables
}

// Table returns the table with the given id, or nil.
func (d *Document) Table(id string) *Table {
	for _, t := range d.tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Store opens documents rooted at a directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Open loads the document with the given id.
func (s *Store) Open(ctx context.Context, id string) (*Document, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read document %s; %w", id, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), tableExt) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	doc := &Document{name: id}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table, err := readTable(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load table %s of document %s; %w", name, id, err)
		}
		doc.tables = append(doc.tables, table)
	}

	return doc, nil
}

// List returns the ids of all documents in the store, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list documents; %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." ||
		strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func readTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	table := &Table{
		ID: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return table, nil
		}
		return nil, err
	}
	table.Columns = header

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}
