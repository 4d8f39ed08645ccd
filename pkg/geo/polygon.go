package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"github.com/1F47E/roof-area/pkg/models"
)

// ToOrbPolygon converts a polygon into a closed orb ring in lon/lat order
func ToOrbPolygon(poly models.Polygon) orb.Polygon {
	ring := make(orb.Ring, 0, len(poly.Points)+1)
	for _, p := range poly.ClosedRing() {
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	return orb.Polygon{ring}
}

// PolygonAreaSqM returns the spherical area of a footprint in m²
func PolygonAreaSqM(poly models.Polygon) (float64, error) {
	if err := ValidatePolygon(poly); err != nil {
		return 0, err
	}
	area := math.Abs(orbgeo.Area(ToOrbPolygon(poly)))
	if math.IsNaN(area) || math.IsInf(area, 0) {
		return 0, &ComputationError{Op: "polygon area", Err: ErrInvalidArea}
	}
	return area, nil
}

// PolygonCentroid returns the planar area centroid of a footprint.
// Falls back to the vertex mean when the ring has no area.
func PolygonCentroid(poly models.Polygon) (models.GeoPoint, error) {
	if err := ValidatePolygon(poly); err != nil {
		return models.GeoPoint{}, err
	}
	c, area := planar.CentroidArea(ToOrbPolygon(poly))
	if area == 0 {
		var lat, lon float64
		for _, p := range poly.Points {
			lat += p.Lat
			lon += p.Lon
		}
		n := float64(len(poly.Points))
		return models.GeoPoint{Lat: lat / n, Lon: lon / n}, nil
	}
	return models.GeoPoint{Lat: c.Lat(), Lon: c.Lon()}, nil
}
