package postgis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "localhost", Port: 5432, User: "postgres", Password: "secret", Database: "geodb"}
	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=geodb sslmode=disable", cfg.DSN())

	cfg.ConnectionTimeout = 1500 * time.Millisecond
	assert.Contains(t, cfg.DSN(), "connect_timeout=2")
}

func TestClassify(t *testing.T) {
	err := classify(&pq.Error{Code: "42883", Message: "function st_makeenvelope does not exist"})
	assert.ErrorIs(t, err, ErrPostGISUnavailable)

	other := errors.New("connection reset")
	assert.Equal(t, other, classify(other))
}

// openOracle connects to ROOFAREA_POSTGIS_DSN or skips the test
func openOracle(t *testing.T) *AreaOracle {
	t.Helper()
	dsn := os.Getenv("ROOFAREA_POSTGIS_DSN")
	if dsn == "" {
		t.Skip("ROOFAREA_POSTGIS_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	o, err := NewAreaOracleFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { o.Close() })
	return o
}

func TestCompareAgainstPostGIS(t *testing.T) {
	o := openOracle(t)
	ctx := context.Background()

	box := models.BoundingBox{North: 38.72, South: 38.70, East: -9.13, West: -9.15}
	cmp, err := o.Compare(ctx, geo.NewCalculator(geo.Options{}), box)
	require.NoError(t, err)

	assert.InDelta(t, 3.86, cmp.ApproxSqKm, 0.01)
	assert.Less(t, cmp.RelativeError, 0.01, "approximation drifts for a city-sized box")
}

func TestPolygonAreaAgainstPostGIS(t *testing.T) {
	o := openOracle(t)

	poly := models.Polygon{Points: []models.GeoPoint{
		{Lat: 38.7100, Lon: -9.1400},
		{Lat: 38.7100, Lon: -9.1399},
		{Lat: 38.7101, Lon: -9.1399},
		{Lat: 38.7101, Lon: -9.1400},
	}}

	ref, err := o.PolygonAreaSqM(context.Background(), poly)
	require.NoError(t, err)

	approx, err := geo.PolygonAreaSqM(poly)
	require.NoError(t, err)
	assert.InEpsilon(t, ref, approx, 0.01)
}

func TestOracleRejectsInvalidInput(t *testing.T) {
	o := &AreaOracle{} // validation runs before any query

	_, err := o.BoundingBoxAreaSqKm(context.Background(), models.BoundingBox{North: 0, South: 1})
	assert.ErrorIs(t, err, geo.ErrInvalidBox)

	_, err = o.PolygonAreaSqM(context.Background(), models.Polygon{})
	assert.ErrorIs(t, err, geo.ErrDegeneratePolygon)
}
