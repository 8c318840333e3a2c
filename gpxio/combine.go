package gpxio

import (
	"fmt"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"log/slog"
	"path/filepath"
	"strings"
)

// Stem is the file name without directory and GPX extensions.
func Stem(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range []string{".gpx.gz", ".gpx", ".gz"} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Combine reads every GPX file in dir and returns a document with one track per file,
// named after the file. Tracks are kept separate, not merged.
// Files that cannot be read are logged and left out. The file at exclude,
// typically the combined output itself, is skipped.
func Combine(dir, exclude string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := ListGPX(dir)
	if err != nil {
		return nil, err
	}
	excludeAbs, _ := filepath.Abs(exclude)

	doc := &Document{}
	for _, path := range files {
		if abs, _ := filepath.Abs(path); exclude != "" && abs == excludeAbs {
			continue
		}
		d, err := ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable GPX", "path", path, "error", err)
			continue
		}
		t, _ := d.Track()
		if len(t.Points) == 0 {
			logger.Warn("Skipping GPX without points", "path", path)
			continue
		}
		stem := Stem(path)
		doc.Tracks = append(doc.Tracks, &trackpoint.Track{
			Name:        stem,
			Description: "Route: " + stem,
			Extensions:  t.Extensions,
			Points:      t.Points,
		})
		for prefix, uri := range d.Namespaces {
			if doc.Namespaces == nil {
				doc.Namespaces = map[string]string{}
			}
			doc.Namespaces[prefix] = uri
		}
	}
	if len(doc.Tracks) == 0 {
		return nil, fmt.Errorf("no GPX tracks found in %s", dir)
	}
	return doc, nil
}
