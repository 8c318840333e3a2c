package gpxio

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListGPX returns the *.gpx (and *.gpx.gz) files directly in dir, sorted by name.
func ListGPX(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ".gpx") || strings.HasSuffix(name, ".gpx.gz") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Zip writes every GPX file in dir into a deflated archive at dest.
// It returns how many files were archived and the archive size.
func Zip(dir, dest string) (count int, size int64, err error) {
	files, err := ListGPX(dir)
	if err != nil {
		return 0, 0, err
	}
	fw, err := NewFileWriter(dest, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			fw.Abort()
		}
	}()

	zw := zip.NewWriter(fw)
	for _, path := range files {
		if err = addZipFile(zw, path); err != nil {
			return 0, 0, fmt.Errorf("zip %s: %w", path, err)
		}
		count++
	}
	if err = zw.Close(); err != nil {
		return 0, 0, err
	}
	if err = fw.Close(); err != nil {
		return 0, 0, err
	}
	return count, fw.Written(), nil
}

func addZipFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(st)
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
