package simplify

import (
	"github.com/google/go-cmp/cmp"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"math"
	"math/rand"
	"testing"
	"time"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func line(n int, lat0, lon0, dLat, dLon float64) trackpoint.TrackPoints {
	tps := make(trackpoint.TrackPoints, n)
	for i := range tps {
		tps[i] = trackpoint.TrackPoint{
			Lat:  lat0 + float64(i)*dLat,
			Lon:  lon0 + float64(i)*dLon,
			Time: t0.Add(time.Duration(i) * time.Second),
		}
	}
	return tps
}

func TestSimplify_CollinearKeepsEndpoints(t *testing.T) {
	cases := []struct {
		name string
		tps  trackpoint.TrackPoints
	}{
		{"meridian", line(100, 10, 20, 0.0001, 0)},
		{"equator", line(100, 0, 20, 0, 0.0001)},
		{"diagonal", line(100, 0, 0, 0.0001, 0.0001)},
	}
	for _, c := range cases {
		out := Simplify(c.tps, 1)
		if len(out) != 2 {
			t.Errorf("%s: expected 2 points, got %d", c.name, len(out))
			continue
		}
		if !out[0].Equal(c.tps[0]) || !out[1].Equal(c.tps[len(c.tps)-1]) {
			t.Errorf("%s: endpoints changed", c.name)
		}
	}
}

func TestSimplify_KeepsCorner(t *testing.T) {
	// An L shape: 50 points east, then 50 points north.
	tps := append(line(50, 0, 0, 0, 0.0001), line(50, 0.0001, 0.0049, 0.0001, 0)...)
	out := Simplify(tps, 1)
	if len(out) != 3 {
		t.Fatalf("expected 3 points, got %d", len(out))
	}
	if !out[1].Equal(tps[49]) {
		t.Errorf("expected the corner, got %+v", out[1])
	}
}

func TestSimplify_Identity(t *testing.T) {
	tps := line(10, 0, 0, 0.0001, 0)
	for _, tol := range []float64{0, -1} {
		if diff := cmp.Diff(tps, Simplify(tps, tol)); diff != "" {
			t.Errorf("tolerance %v changed the track (-want +got):\n%s", tol, diff)
		}
	}
	short := line(2, 0, 0, 1, 1)
	if diff := cmp.Diff(short, Simplify(short, 100)); diff != "" {
		t.Errorf("two points changed (-want +got):\n%s", diff)
	}
}

func TestSimplify_Empty(t *testing.T) {
	if out := Simplify(nil, 1); len(out) != 0 {
		t.Errorf("expected empty, got %d", len(out))
	}
}

func TestDistanceToLine_HighLatitude(t *testing.T) {
	// At 60 degrees a degree of longitude is half as long as at the equator,
	// so the same angular offset is half as far.
	a := trackpoint.TrackPoint{Lat: 60, Lon: 0}
	b := trackpoint.TrackPoint{Lat: 60.01, Lon: 0}
	p := trackpoint.TrackPoint{Lat: 60.005, Lon: 0.0001}
	d := DistanceToLine(p, a, b)
	want := 0.0001 * metersPerDegree * math.Cos(60.005*math.Pi/180)
	if math.Abs(d-want) > 0.01 {
		t.Errorf("want %v, got %v", want, d)
	}

	eq := DistanceToLine(
		trackpoint.TrackPoint{Lat: 0.005, Lon: 0.0001},
		trackpoint.TrackPoint{Lat: 0, Lon: 0},
		trackpoint.TrackPoint{Lat: 0.01, Lon: 0},
	)
	if math.Abs(eq/d-2) > 0.01 {
		t.Errorf("expected equator distance to be twice the 60N distance: %v vs %v", eq, d)
	}
}

func TestDistanceToLine_Antimeridian(t *testing.T) {
	a := trackpoint.TrackPoint{Lat: 0, Lon: 179.99}
	b := trackpoint.TrackPoint{Lat: 0, Lon: -179.99}
	p := trackpoint.TrackPoint{Lat: 0.0001, Lon: 180}
	d := DistanceToLine(p, a, b)
	want := 0.0001 * metersPerDegree
	if math.Abs(d-want) > 0.01 {
		t.Errorf("want %v, got %v", want, d)
	}
}

func TestDistanceToLine_DegenerateSegment(t *testing.T) {
	a := trackpoint.TrackPoint{Lat: 0, Lon: 0}
	p := trackpoint.TrackPoint{Lat: 0, Lon: 0.001}
	if d := DistanceToLine(p, a, a); math.Abs(d-a.DistanceTo(p)) > 1e-9 {
		t.Errorf("expected point distance, got %v", d)
	}
}

func TestSimplify_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for trial := 0; trial < 50; trial++ {
		n := 3 + r.Intn(300)
		tps := make(trackpoint.TrackPoints, n)
		lat, lon := 50+r.Float64(), r.Float64()
		for i := range tps {
			lat += (r.Float64() - 0.5) * 0.0002
			lon += (r.Float64() - 0.5) * 0.0002
			tps[i] = trackpoint.TrackPoint{Lat: lat, Lon: lon, Time: t0.Add(time.Duration(i) * time.Second)}
		}
		tol := r.Float64() * 10
		once := Simplify(tps, tol)
		twice := Simplify(once, tol)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("trial %d: not idempotent (-once +twice):\n%s", trial, diff)
		}
		if !once[0].Equal(tps[0]) || !once[len(once)-1].Equal(tps[n-1]) {
			t.Fatalf("trial %d: endpoints not preserved", trial)
		}
	}
}
