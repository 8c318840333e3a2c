package gpxio

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
	"github.com/rotblauer/gpxreplay/common"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"time"
)

// GeoJSONOptions controls the preview export.
type GeoJSONOptions struct {
	// DisplayTolerance simplifies the preview line in degrees, for map display only.
	// Zero keeps every point and the per-point times.
	DisplayTolerance float64

	// Properties are added to the line feature.
	Properties map[string]interface{}
}

// EncodeGeoJSON renders a track as a FeatureCollection holding one LineString
// feature with the track's properties, plus Point features for its endpoints
// carrying the heading there in degrees.
func EncodeGeoJSON(t *trackpoint.Track, opts GeoJSONOptions) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	var geom orb.Geometry = t.Points.LineString()
	if len(t.Points) == 1 {
		geom = t.Points[0].Point()
	}
	if opts.DisplayTolerance > 0 && len(t.Points) > 2 {
		geom = simplify.DouglasPeucker(opts.DisplayTolerance).Simplify(geom)
	}

	line := geojson.NewFeature(geom)
	line.Properties["name"] = t.Name
	line.Properties["points"] = len(t.Points)
	line.Properties["distance_m"] = t.Points.Distance()
	line.Properties["duration_s"] = t.Points.Duration().Seconds()
	if opts.DisplayTolerance <= 0 {
		times := make([]string, len(t.Points))
		for i, tp := range t.Points {
			if tp.HasTime() {
				times[i] = tp.Time.UTC().Format(time.RFC3339Nano)
			}
		}
		line.Properties["coordTimes"] = times
	}
	for k, v := range opts.Properties {
		line.Properties[k] = v
	}
	fc.Append(line)

	if n := len(t.Points); n > 1 {
		for _, end := range []struct {
			role    string
			tp      trackpoint.TrackPoint
			heading float64
		}{
			{"start", t.Points[0], common.Bearing(t.Points[0].Point(), t.Points[1].Point())},
			{"end", t.Points[n-1], common.Bearing(t.Points[n-2].Point(), t.Points[n-1].Point())},
		} {
			f := geojson.NewFeature(end.tp.Point())
			f.Properties["role"] = end.role
			f.Properties["bearing"] = common.DecimalToFixed(end.heading, 1)
			if end.tp.HasTime() {
				f.Properties["time"] = end.tp.Time.UTC().Format(time.RFC3339Nano)
			}
			fc.Append(f)
		}
	}
	return fc.MarshalJSON()
}

// WriteGeoJSON writes the preview next to other output, atomically.
func WriteGeoJSON(path string, t *trackpoint.Track, opts GeoJSONOptions) (int64, error) {
	data, err := EncodeGeoJSON(t, opts)
	if err != nil {
		return 0, err
	}
	fw, err := NewFileWriter(path, nil)
	if err != nil {
		return 0, err
	}
	if _, err := fw.Write(data); err != nil {
		fw.Abort()
		return 0, err
	}
	if err := fw.Close(); err != nil {
		return 0, err
	}
	return fw.Written(), nil
}
