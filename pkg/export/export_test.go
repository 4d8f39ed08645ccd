package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Rooftops: []*models.Rooftop{
			{
				ID: "r1",
				Coordinates: []models.GeoPoint{
					{Lat: 38.7100, Lon: -9.1400},
					{Lat: 38.7100, Lon: -9.1399},
					{Lat: 38.7101, Lon: -9.1399},
					{Lat: 38.7101, Lon: -9.1400},
					{Lat: 38.7100, Lon: -9.1400},
				},
				Area:       12,
				Confidence: 0.9,
				Centroid:   models.GeoPoint{Lat: 38.71005, Lon: -9.13995},
			},
			nil,
			{
				ID:         "r2",
				Area:       30,
				Confidence: 0.75,
				Centroid:   models.GeoPoint{Lat: 38.7200, Lon: -9.1500},
			},
		},
		Count: 2,
	}
}

func TestGeoJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GeoJSON(&buf, sampleResult(), geo.DefaultCapacityPerSqM))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	poly, ok := fc.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok, "footprint is exported as a polygon")
	require.Len(t, poly, 1)
	ring := poly[0]
	assert.Len(t, ring, 5)
	assert.True(t, ring.Closed())
	assert.Equal(t, orb.Point{-9.1400, 38.7100}, ring[0], "lon/lat order")

	props := fc.Features[0].Properties
	assert.Equal(t, "r1", props.MustString("id"))
	assert.Equal(t, 12.0, props.MustFloat64("area"))
	assert.Equal(t, 0.9, props.MustFloat64("confidence"))
	assert.InDelta(t, 1.8, props.MustFloat64("potential_capacity_kw"), 1e-9)

	pt, ok := fc.Features[1].Geometry.(orb.Point)
	require.True(t, ok, "centroid-only rooftop is exported as a point")
	assert.Equal(t, orb.Point{-9.15, 38.72}, pt)
}

func TestGeoJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GeoJSON(&buf, nil, geo.DefaultCapacityPerSqM))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}

func TestGeoJSONRejectsBadRooftop(t *testing.T) {
	result := &models.AnalysisResult{Rooftops: []*models.Rooftop{{
		ID:          "bad",
		Coordinates: []models.GeoPoint{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 2}},
		Area:        5,
	}}}

	err := GeoJSON(&bytes.Buffer{}, result, geo.DefaultCapacityPerSqM)
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrDegeneratePolygon)
	assert.Contains(t, err.Error(), "bad")
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleResult(), geo.DefaultCapacityPerSqM))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"id", "area_m2", "confidence", "centroid_lat", "centroid_lng", "potential_capacity_kw"}, records[0])
	assert.Equal(t, []string{"r1", "12", "0.9", "38.71005", "-9.13995", "1.7999999999999998"}, records[1])
	assert.Equal(t, "r2", records[2][0])
	assert.Equal(t, "4.5", records[2][5])
}

func TestCSVComputesMissingCentroid(t *testing.T) {
	result := sampleResult()
	result.Rooftops[0].Centroid = models.GeoPoint{}

	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, result, geo.DefaultCapacityPerSqM))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.NotEqual(t, "0", records[1][3])
	assert.NotEqual(t, "0", records[1][4])
}
