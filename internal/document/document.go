// Package document supplies page text and page tables for receipt extraction.
// It is the only place that knows about file formats.
package document

import (
	"context"
	"fmt"
	"strings"
)

// Table is one raw table: ordered rows of ordered cells. A nil cell is an empty slot.
type Table [][]*string

// Document is an opened source, addressed by 0-based page index.
type Document interface {
	PageCount() int
	PageText(i int) (string, error)
	PageTables(i int) ([]Table, error)
	Close() error
}

// Opener opens a path into a Document.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Page is one in-memory page.
type Page struct {
	Text   string
	Tables []Table
}

// Memory is a Document backed by already-decoded pages.
type Memory struct {
	Pages []Page
}

// NewMemory builds a Memory document with one page per text and no tables.
func NewMemory(pages ...string) *Memory {
	m := &Memory{Pages: make([]Page, len(pages))}
	for i, p := range pages {
		m.Pages[i] = Page{Text: p}
	}
	return m
}

// FromText splits already-extracted text on form feeds, the page separator pdftotext emits.
func FromText(text string) *Memory {
	text = strings.TrimSuffix(text, "\f")
	return NewMemory(strings.Split(text, "\f")...)
}

func (m *Memory) PageCount() int { return len(m.Pages) }

func (m *Memory) PageText(i int) (string, error) {
	if i < 0 || i >= len(m.Pages) {
		return "", fmt.Errorf("invalid page index %d (document has %d pages)", i, len(m.Pages))
	}
	return m.Pages[i].Text, nil
}

func (m *Memory) PageTables(i int) ([]Table, error) {
	if i < 0 || i >= len(m.Pages) {
		return nil, fmt.Errorf("invalid page index %d (document has %d pages)", i, len(m.Pages))
	}
	return m.Pages[i].Tables, nil
}

func (m *Memory) Close() error { return nil }

// Cell returns a pointer to s, for building tables literally.
func Cell(s string) *string { return &s }

// Row builds a table row from literal cells; "" becomes a nil cell.
func Row(cells ...string) []*string {
	row := make([]*string, len(cells))
	for i, c := range cells {
		if c != "" {
			row[i] = Cell(c)
		}
	}
	return row
}
