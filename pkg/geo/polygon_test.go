package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/roof-area/pkg/models"
)

func square(lat, lon, side float64) models.Polygon {
	return models.Polygon{Points: []models.GeoPoint{
		{Lat: lat, Lon: lon},
		{Lat: lat, Lon: lon + side},
		{Lat: lat + side, Lon: lon + side},
		{Lat: lat + side, Lon: lon},
	}}
}

func TestPolygonAreaSqM(t *testing.T) {
	// 0.001° square at the equator, about 111 m on a side
	side := 6378137.0 * math.Pi / 180 * 0.001
	area, err := PolygonAreaSqM(square(0, 0, 0.001))
	require.NoError(t, err)
	assert.InEpsilon(t, side*side, area, 0.01)

	// winding does not change the sign
	poly := square(0, 0, 0.001)
	reversed := models.Polygon{Points: []models.GeoPoint{poly.Points[3], poly.Points[2], poly.Points[1], poly.Points[0]}}
	rev, err := PolygonAreaSqM(reversed)
	require.NoError(t, err)
	assert.InDelta(t, area, rev, 1e-6)
}

func TestPolygonAreaSqMRejectsDegenerate(t *testing.T) {
	_, err := PolygonAreaSqM(models.Polygon{Points: []models.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}})
	assert.ErrorIs(t, err, ErrDegeneratePolygon)
}

func TestPolygonCentroid(t *testing.T) {
	c, err := PolygonCentroid(square(38.7, -9.14, 0.001))
	require.NoError(t, err)
	assert.InDelta(t, 38.7005, c.Lat, 1e-9)
	assert.InDelta(t, -9.1395, c.Lon, 1e-9)
}

func TestPolygonCentroidCollinear(t *testing.T) {
	line := models.Polygon{Points: []models.GeoPoint{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2},
	}}
	c, err := PolygonCentroid(line)
	require.NoError(t, err)
	assert.InDelta(t, 0, c.Lat, 1e-12)
	assert.InDelta(t, 1, c.Lon, 1e-12)
}

func TestToOrbPolygonIsClosed(t *testing.T) {
	p := ToOrbPolygon(square(1, 2, 0.5))
	require.Len(t, p, 1)
	ring := p[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])
	// lon/lat order
	assert.Equal(t, 2.0, ring[0][0])
	assert.Equal(t, 1.0, ring[0][1])
}
