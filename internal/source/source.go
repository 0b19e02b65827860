// Package source reads raw export files and session lists from the filesystem.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/bjaus/routesplit"
)

// Dir yields the regular files of one directory as raw exports. Files are
// yielded in name order, which fixes the record line order of a run.
type Dir struct {
	path    string
	pattern string
}

// NewDir creates a Dir source. An empty pattern matches every file.
func NewDir(path, pattern string) *Dir {
	if pattern == "" {
		pattern = "*"
	}
	return &Dir{path: path, pattern: pattern}
}

// Names lists the matching file names in processing order. Subdirectories,
// non-regular files and dot-files are skipped.
func (d *Dir) Names() ([]string, error) {
	entries, err := os.ReadDir(d.path) // sorted by name
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ok, err := filepath.Match(d.pattern, e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Files reads each matching file in order. Reading stops at the first error
// or when ctx is done.
func (d *Dir) Files(ctx context.Context) iter.Seq2[routesplit.RawExportFile, error] {
	return func(yield func(routesplit.RawExportFile, error) bool) {
		names, err := d.Names()
		if err != nil {
			yield(routesplit.RawExportFile{}, fmt.Errorf("list %s: %w", d.path, err))
			return
		}

		for _, name := range names {
			if err := ctx.Err(); err != nil {
				yield(routesplit.RawExportFile{}, err)
				return
			}

			data, err := os.ReadFile(filepath.Join(d.path, name))
			if err != nil {
				yield(routesplit.RawExportFile{}, err)
				return
			}
			if !yield(routesplit.RawExportFile{Name: name, Data: data}, nil) {
				return
			}
		}
	}
}

// ReadSessions reads the session list file at path.
func ReadSessions(path string) ([]routesplit.SessionID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ids, err := ParseSessions(f)
	if err != nil {
		return nil, fmt.Errorf("read sessions %s: %w", path, err)
	}
	return ids, nil
}

// ParseSessions reads a CSV session list. The first row is a header; the
// session ID is the first column of every following row. Blank IDs are
// skipped. Order is preserved and duplicates are kept, so that the assigner
// can reject them.
func ParseSessions(r io.Reader) ([]routesplit.SessionID, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var ids []routesplit.SessionID
	header := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(row) == 0 {
			continue
		}
		if id := strings.TrimSpace(row[0]); id != "" {
			ids = append(ids, routesplit.SessionID(id))
		}
	}
	return ids, nil
}
