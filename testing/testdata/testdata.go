package testdata

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// basepath is the root directory of this package.
var basepath string

func init() {
	_, currentFile, _, _ := runtime.Caller(0)
	basepath = filepath.Dir(currentFile)
}

// Path returns the absolute path the given relative file or directory path,
// relative to this testdata/ directory in the user's GOPATH.
// If rel is already absolute, it is returned unmodified.
// Taken from https://github.com/grpc/grpc-go/blob/master/testdata/testdata.go.
func Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}

	return filepath.Join(basepath, rel)
}

// GPX_Drive11 is a GPX 1.1 drive at about 10 m/s in two segments, with metadata,
// Garmin extensions, one speed spike, and one duplicated timestamp.
//   12 good points, 14 in total.
var GPX_Drive11 = "./gpx/drive_11.gpx"

// GPX_Waypoints10 is a GPX 1.0 file of three untimed waypoints 14 m apart.
var GPX_Waypoints10 = "./gpx/waypoints_10.gpx"

// GPX_RouteNoTime is a GPX 1.1 route of 20 untimed points.
var GPX_RouteNoTime = "./gpx/route_notime.gpx"

// GPX_Empty has a track with an empty segment.
var GPX_Empty = "./gpx/empty.gpx"

// GPX_Broken is truncated XML.
var GPX_Broken = "./gpx/broken.gpx"

// CopyTo copies the named fixtures into dir, keeping their base names.
// It returns the new paths.
func CopyTo(dir string, fixtures ...string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(fixtures))
	for _, fixture := range fixtures {
		dst := filepath.Join(dir, filepath.Base(fixture))
		if err := copyFile(Path(fixture), dst); err != nil {
			return nil, err
		}
		out = append(out, dst)
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
