package gpxio

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrFileBusy is returned when another writer holds the output's temp file.
var ErrFileBusy = errors.New("output is being written by another writer")

func isGzip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}

// FileReader reads a file, transparently gunzipping *.gz files.
type FileReader struct {
	f      *os.File
	gzr    *gzip.Reader
	r      io.Reader
	closed bool
}

func NewFileReader(path string) (*FileReader, error) {
	fi, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fr := &FileReader{f: fi, r: bufio.NewReader(fi)}
	if isGzip(path) {
		gzr, err := gzip.NewReader(fr.r)
		if err != nil {
			_ = fi.Close()
			return nil, err
		}
		fr.gzr = gzr
		fr.r = gzr
	}
	return fr, nil
}

// Read satisfies the io.Reader interface.
func (g *FileReader) Read(p []byte) (int, error) {
	return g.r.Read(p)
}

func (g *FileReader) Path() string {
	return g.f.Name()
}

// Close satisfies the io.Closer interface.
// It closes the gzip reader, if any, and the file.
func (g *FileReader) Close() error {
	if g.closed {
		return nil
	}
	defer func() {
		g.closed = true
	}()
	if g.gzr != nil {
		if err := g.gzr.Close(); err != nil {
			_ = g.f.Close()
			return err
		}
	}
	return g.f.Close()
}

type FileWriterConfig struct {
	CompressionLevel int
	FilePerm         os.FileMode
	DirPerm          os.FileMode
}

func DefaultFileWriterConfig() *FileWriterConfig {
	return &FileWriterConfig{
		CompressionLevel: gzip.DefaultCompression,
		FilePerm:         0644,
		DirPerm:          0755,
	}
}

// FileWriter writes to a temporary file next to path and renames it
// into place on Close, so readers never see a partial file.
// Paths ending in .gz are gzipped.
type FileWriter struct {
	f       *os.File
	gzw     *gzip.Writer
	bw      *bufio.Writer
	w       io.Writer
	path    string
	written int64
	closed  bool
}

func NewFileWriter(path string, config *FileWriterConfig) (*FileWriter, error) {
	if config == nil {
		config = DefaultFileWriterConfig()
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPerm); err != nil {
		return nil, err
	}
	fi, err := os.OpenFile(path+".tmp", os.O_WRONLY|os.O_CREATE, config.FilePerm)
	if err != nil {
		return nil, err
	}
	// Two writers racing for the same output is a bug upstream; fail instead of interleaving.
	// The temp file is only truncated once the lock is held.
	if err := syscall.Flock(int(fi.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = fi.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrFileBusy, path, err)
	}
	if err := fi.Truncate(0); err != nil {
		_ = fi.Close()
		return nil, err
	}
	g := &FileWriter{f: fi, path: path}
	g.bw = bufio.NewWriter(fi)
	g.w = g.bw
	if isGzip(path) {
		gzw, err := gzip.NewWriterLevel(g.bw, config.CompressionLevel)
		if err != nil {
			_ = fi.Close()
			_ = os.Remove(fi.Name())
			return nil, err
		}
		g.gzw = gzw
		g.w = gzw
	}
	return g, nil
}

func (g *FileWriter) Write(p []byte) (int, error) {
	n, err := g.w.Write(p)
	g.written += int64(n)
	return n, err
}

// Written is the number of uncompressed bytes written.
func (g *FileWriter) Written() int64 {
	return g.written
}

func (g *FileWriter) Path() string {
	return g.path
}

// Close flushes, syncs, and moves the file into place.
func (g *FileWriter) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	if g.gzw != nil {
		if err := g.gzw.Close(); err != nil {
			g.discard()
			return err
		}
	}
	if err := g.bw.Flush(); err != nil {
		g.discard()
		return err
	}
	if err := g.f.Sync(); err != nil {
		g.discard()
		return err
	}
	if err := g.f.Close(); err != nil {
		_ = os.Remove(g.f.Name())
		return err
	}
	return os.Rename(g.f.Name(), g.path)
}

// Abort discards everything written.
func (g *FileWriter) Abort() {
	if g.closed {
		return
	}
	g.closed = true
	g.discard()
}

func (g *FileWriter) discard() {
	_ = g.f.Close()
	_ = os.Remove(g.f.Name())
}
