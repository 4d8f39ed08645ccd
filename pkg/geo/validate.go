package geo

import (
	"math"

	"github.com/1F47E/roof-area/pkg/models"
)

// ValidatePoint checks that p lies within the WGS84 degree ranges
func ValidatePoint(p models.GeoPoint) error {
	if err := checkLat("lat", p.Lat); err != nil {
		return err
	}
	return checkLon("lon", p.Lon)
}

func checkLat(field string, v float64) error {
	if math.IsNaN(v) || v < -90 || v > 90 {
		return invalid(ErrInvalidCoordinate, field, v, "latitude must be within [-90, 90]")
	}
	return nil
}

func checkLon(field string, v float64) error {
	if math.IsNaN(v) || v < -180 || v > 180 {
		return invalid(ErrInvalidCoordinate, field, v, "longitude must be within [-180, 180]")
	}
	return nil
}

// ValidateBox checks edge ranges, south <= north, that the box spans at
// most half the globe in longitude and, unless the policy allows it,
// west <= east.
func ValidateBox(box models.BoundingBox, policy AntimeridianPolicy) error {
	if err := checkLat("north", box.North); err != nil {
		return err
	}
	if err := checkLat("south", box.South); err != nil {
		return err
	}
	if err := checkLon("east", box.East); err != nil {
		return err
	}
	if err := checkLon("west", box.West); err != nil {
		return err
	}
	if box.South > box.North {
		return invalid(ErrInvalidBox, "south", box.South, "south edge is above the north edge")
	}
	if box.West > box.East && policy != AntimeridianNormalize {
		return invalid(ErrAntimeridian, "west", box.West, "west edge is east of the east edge")
	}
	// edge widths are great-circle arcs, which take the short way round
	if span := lonSpan(box); span > maxLonSpan {
		return invalid(ErrInvalidBox, "east", box.East, "longitude span exceeds 180 degrees")
	}
	return nil
}

// maxLonSpan is the widest box, in degrees of longitude, the edge-length
// approximation can measure
const maxLonSpan = 180.0

// lonSpan is the eastward longitude extent of box in [0, 360]. A box whose
// west edge is east of its east edge wraps across the antimeridian.
func lonSpan(box models.BoundingBox) float64 {
	span := box.East - box.West
	if span < 0 {
		span += 360
	}
	return span
}

// ValidatePolygon checks point ranges, the minimum of 3 points and that
// the ring is open (first point not repeated at the end).
func ValidatePolygon(poly models.Polygon) error {
	n := len(poly.Points)
	if n < 3 {
		return invalid(ErrDegeneratePolygon, "points", float64(n), "polygon needs at least 3 points")
	}
	for _, p := range poly.Points {
		if err := ValidatePoint(p); err != nil {
			return err
		}
	}
	if poly.Points[0] == poly.Points[n-1] {
		return invalid(ErrDegeneratePolygon, "points", float64(n), "first and last point must differ")
	}
	return nil
}
