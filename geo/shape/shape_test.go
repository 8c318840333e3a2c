package shape

import (
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func sample() *trackpoint.Track {
	return &trackpoint.Track{
		Name:       "morning",
		Metadata:   &trackpoint.Metadata{Name: "file", Author: "someone", Extensions: trackpoint.Extensions("<m/>")},
		Extensions: trackpoint.Extensions("<t/>"),
		Points: trackpoint.TrackPoints{
			{
				Lat:        44.98516464233398,
				Lon:        -93.25930786132812,
				Elevation:  trackpoint.Float(246.0128),
				Time:       time.Date(2024, 11, 15, 22, 57, 43, 0, time.UTC),
				Extensions: trackpoint.Extensions("<speed>1.1</speed>"),
			},
		},
	}
}

func TestShape_Defaults(t *testing.T) {
	in := sample()
	out := Shape(in, Options{Precision: 7})
	require.Len(t, out.Points, 1)
	p := out.Points[0]
	assert.Equal(t, 44.9851646, p.Lat)
	assert.Equal(t, -93.2593079, p.Lon)
	assert.Nil(t, p.Elevation)
	assert.Nil(t, p.Extensions)
	assert.Nil(t, out.Extensions)
	assert.Nil(t, out.Metadata)
	assert.Equal(t, "morning", out.Name)

	// The input is untouched.
	assert.NotNil(t, in.Metadata)
	assert.NotNil(t, in.Points[0].Elevation)
	assert.Equal(t, 44.98516464233398, in.Points[0].Lat)
}

func TestShape_KeepAll(t *testing.T) {
	out := Shape(sample(), Options{Precision: 3, KeepElevation: true, KeepExtensions: true, KeepMetadata: true})
	p := out.Points[0]
	assert.Equal(t, 44.985, p.Lat)
	assert.Equal(t, -93.259, p.Lon)
	require.NotNil(t, p.Elevation)
	assert.Equal(t, 246.0128, *p.Elevation)
	assert.Equal(t, trackpoint.Extensions("<speed>1.1</speed>"), p.Extensions)
	require.NotNil(t, out.Metadata)
	assert.Equal(t, "someone", out.Metadata.Author)
	assert.Equal(t, trackpoint.Extensions("<m/>"), out.Metadata.Extensions)
}

func TestShape_MetadataWithoutExtensions(t *testing.T) {
	in := sample()
	out := Shape(in, Options{Precision: 7, KeepMetadata: true})
	require.NotNil(t, out.Metadata)
	assert.Nil(t, out.Metadata.Extensions)
	assert.NotNil(t, in.Metadata.Extensions)
}

func TestRoundPoints(t *testing.T) {
	in := trackpoint.TrackPoints{{Lat: 0.123456785, Lon: -0.123456785}}
	out := RoundPoints(in, 8)
	assert.Equal(t, 0.12345679, out[0].Lat)
	assert.Equal(t, -0.12345679, out[0].Lon)
	assert.Equal(t, 0.123456785, in[0].Lat)
}
