package common

import (
	"errors"
	"github.com/paulmach/orb"
	"math"
	"testing"
	"time"
)

func TestHaversine(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{"same point", 45, 90, 45, 90, 0, 0},
		{"one degree of latitude", 0, 0, 1, 0, EarthRadius * math.Pi / 180, 1e-6},
		{"one degree of longitude at equator", 0, 0, 0, 1, EarthRadius * math.Pi / 180, 1e-6},
		{"across the antimeridian", 0, 179.9, 0, -179.9, 0.2 * EarthRadius * math.Pi / 180, 1e-6},
		{"antipodal", 0, 0, 0, 180, math.Pi * EarthRadius, 1e-6},
	}
	for _, c := range cases {
		got := Haversine(c.lat1, c.lon1, c.lat2, c.lon2)
		if math.Abs(got-c.want) > c.tolerance {
			t.Errorf("%s: got %f, want %f", c.name, got, c.want)
		}
	}
}

func TestDistanceIgnoresArgumentOrder(t *testing.T) {
	a := orb.Point{-93.25, 44.98}
	b := orb.Point{-93.26, 44.99}
	if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("asymmetric distance: %f != %f", d1, d2)
	}
}

func TestSpeed(t *testing.T) {
	s, err := Speed(100, 10*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if s != 10 {
		t.Errorf("got %f, want 10", s)
	}

	s, err = Speed(0, 0)
	if err != nil || s != 0 {
		t.Errorf("coincident points: got %f, %v", s, err)
	}

	s, err = Speed(5, 0)
	if !errors.Is(err, ErrDegenerateInterval) {
		t.Errorf("expected ErrDegenerateInterval, got %v", err)
	}
	if !math.IsInf(s, 1) {
		t.Errorf("expected +Inf, got %f", s)
	}
}

func TestBearing(t *testing.T) {
	north := Bearing(orb.Point{0, 0}, orb.Point{0, 1})
	if math.Abs(north) > 1e-9 {
		t.Errorf("north: got %f", north)
	}
	east := Bearing(orb.Point{0, 0}, orb.Point{1, 0})
	if math.Abs(east-90) > 1e-9 {
		t.Errorf("east: got %f", east)
	}
}

func TestWrapLonDelta(t *testing.T) {
	cases := []struct {
		from, to, want float64
	}{
		{0, 10, 10},
		{10, 0, -10},
		{179.9, -179.9, 0.2},
		{-179.9, 179.9, -0.2},
	}
	for _, c := range cases {
		if got := WrapLonDelta(c.from, c.to); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("WrapLonDelta(%v, %v) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestNormalizeLon(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, -180},
		{180.05, -179.95},
		{-180.05, 179.95},
		{540, 180},
	}
	for _, c := range cases {
		if got := NormalizeLon(c.in); math.Abs(math.Abs(got)-math.Abs(c.want)) > 1e-9 {
			t.Errorf("NormalizeLon(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDecimalToFixed(t *testing.T) {
	cases := []struct {
		in        float64
		precision int
		want      float64
	}{
		{1.23456789, 7, 1.2345679},
		{-1.23456785, 7, -1.2345679},
		{0.5, 0, 1},
		{-0.5, 0, -1},
		{12.345, 2, 12.35},
		{100, 3, 100},
	}
	for _, c := range cases {
		if got := DecimalToFixed(c.in, c.precision); got != c.want {
			t.Errorf("DecimalToFixed(%v, %d) = %v, want %v", c.in, c.precision, got, c.want)
		}
	}
}
