package sink

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bjaus/routesplit"
)

// Default file naming.
const (
	DefaultFilePrefix   = "rdnet_inbound_"
	ManifestFile        = "assignment.yaml"
	defaultFilePerm     = 0o644
	defaultWriteBufSize = 64 * 1024
)

// FileSink writes one record document per session plus a manifest into a
// directory. The directory is replaced as a whole: everything is written to a
// sibling staging directory first and swapped in only once every file is
// complete, so a failed Load leaves the previous contents untouched.
type FileSink struct {
	dir    string
	prefix string
	format routesplit.DocumentFormat
	meta   map[string]any
}

// NewFileSink creates a sink writing to dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{
		dir:    dir,
		prefix: DefaultFilePrefix,
		format: routesplit.DefaultFormat,
	}
}

// WithFormat overrides the document wrapper. Defaults to routesplit.DefaultFormat.
func (s *FileSink) WithFormat(f routesplit.DocumentFormat) *FileSink {
	s.format = f
	return s
}

// WithPrefix overrides the per-session file name prefix.
func (s *FileSink) WithPrefix(p string) *FileSink {
	s.prefix = p
	return s
}

// WithMeta sets extra values recorded in the manifest.
func (s *FileSink) WithMeta(meta map[string]any) *FileSink {
	s.meta = meta
	return s
}

// FileName returns the name of a session's document.
func (s *FileSink) FileName(id routesplit.SessionID) string {
	return s.prefix + string(id) + ".xml"
}

// Load writes res and swaps it into place.
func (s *FileSink) Load(ctx context.Context, res *routesplit.Result) error {
	st, err := s.Stage(ctx, res)
	if err != nil {
		return err
	}
	if err := st.Commit(); err != nil {
		_ = st.Discard()
		return err
	}
	return nil
}

// Stage writes res into a staging directory next to the output directory.
// The output directory is not touched until Commit.
func (s *FileSink) Stage(ctx context.Context, res *routesplit.Result) (Staged, error) {
	for _, p := range res.Partitions {
		if err := checkSessionName(p.Session); err != nil {
			return nil, err
		}
	}

	parent := filepath.Dir(filepath.Clean(s.dir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, err
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(s.dir)+"-staging-*")
	if err != nil {
		return nil, err
	}

	if err := s.writeAll(ctx, staging, res); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}
	return &stagedDir{sink: s, path: staging}, nil
}

// stagedDir is a fully written staging directory awaiting the swap.
type stagedDir struct {
	sink *FileSink
	path string
}

// Commit swaps the staging directory into place.
func (d *stagedDir) Commit() error {
	return d.sink.swap(d.path)
}

// Discard removes the staging directory. It is a no-op after a successful
// Commit.
func (d *stagedDir) Discard() error {
	return os.RemoveAll(d.path)
}

func (s *FileSink) writeAll(ctx context.Context, dir string, res *routesplit.Result) error {
	for _, p := range res.Partitions {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := writeFile(filepath.Join(dir, s.FileName(p.Session)), func(w *bufio.Writer) error {
			return routesplit.WriteRecords(w, s.format, p.Records)
		})
		if err != nil {
			return err
		}
	}

	data, err := NewManifest(res, s.meta).Marshal()
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, ManifestFile), func(w *bufio.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// swap moves staging to s.dir, keeping the old directory until the rename has
// succeeded.
func (s *FileSink) swap(staging string) error {
	var backup string
	if _, err := os.Stat(s.dir); err == nil {
		backup = staging + ".old"
		if err := os.Rename(s.dir, backup); err != nil {
			return err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.Rename(staging, s.dir); err != nil {
		if backup != "" {
			_ = os.Rename(backup, s.dir)
		}
		return err
	}
	if backup != "" {
		return os.RemoveAll(backup)
	}
	return nil
}

func writeFile(path string, fn func(*bufio.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, defaultFilePerm)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(f, defaultWriteBufSize)
	if err := fn(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
