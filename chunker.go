package routesplit

import (
	"bytes"
	"fmt"
)

// DocumentFormat is the wrapper written around every chunk of record lines.
type DocumentFormat struct {
	Declaration string
	RootOpen    string
	RootClose   string
}

// DefaultFormat matches the wrapper of the raw exports.
var DefaultFormat = DocumentFormat{
	Declaration: `<?xml version="1.0" encoding="utf-8"?>`,
	RootOpen:    "<Document>",
	RootClose:   "</Document>",
}

// Document is one self-contained chunk: the format's declaration and root
// open, Lines verbatim, then the root close.
type Document struct {
	Index  int
	Name   string
	Lines  []string
	Format DocumentFormat
}

// Bytes renders the document, one line per row.
func (d Document) Bytes() []byte {
	size := len(d.Format.Declaration) + len(d.Format.RootOpen) + len(d.Format.RootClose) + 3
	for _, l := range d.Lines {
		size += len(l) + 1
	}

	var buf bytes.Buffer
	buf.Grow(size)
	buf.WriteString(d.Format.Declaration)
	buf.WriteByte('\n')
	buf.WriteString(d.Format.RootOpen)
	buf.WriteByte('\n')
	for _, l := range d.Lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	buf.WriteString(d.Format.RootClose)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// DocumentName is the name given to the document at index i.
func DocumentName(i int) string {
	return fmt.Sprintf("chunk-%04d.xml", i)
}

// Chunker re-wraps a record line stream into bounded documents.
type Chunker struct {
	format   DocumentFormat
	maxLines int
}

// NewChunker creates a Chunker that puts at most maxLines record lines in
// each document.
func NewChunker(format DocumentFormat, maxLines int) (*Chunker, error) {
	if maxLines < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, maxLines)
	}
	return &Chunker{format: format, maxLines: maxLines}, nil
}

// Chunk partitions lines into contiguous windows of maxLines (the last may be
// shorter) and wraps each window as a Document. Every window is closed exactly
// once, including a final window that is exactly full. Empty input yields no
// documents.
//
// The returned documents share backing storage with lines.
func (c *Chunker) Chunk(lines []string) []Document {
	windows := chunk(lines, c.maxLines)
	if len(windows) == 0 {
		return nil
	}

	docs := make([]Document, len(windows))
	for i, w := range windows {
		docs[i] = Document{
			Index:  i,
			Name:   DocumentName(i),
			Lines:  w,
			Format: c.format,
		}
	}
	return docs
}

// chunk splits a slice into sub-slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 || size <= 0 {
		return nil
	}

	numChunks := (len(items) + size - 1) / size
	result := make([][]T, 0, numChunks)

	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		result = append(result, items[i:end:end])
	}

	return result
}
