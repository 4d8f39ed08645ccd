// Package geo computes selection areas on the sphere and summarizes
// rooftop footprints returned by the analysis backend. Everything here is
// pure: no I/O, no shared mutable state.
package geo

import (
	"errors"
	"math"

	"github.com/1F47E/roof-area/pkg/models"
)

const (
	// EarthRadius is the mean earth radius in meters
	EarthRadius = 6371000.0

	sqMetersPerSqKm = 1_000_000.0
)

// AntimeridianPolicy decides what happens to boxes whose west edge lies east of the east edge
type AntimeridianPolicy int

const (
	// AntimeridianReject fails validation for crossing boxes
	AntimeridianReject AntimeridianPolicy = iota
	// AntimeridianNormalize measures the width eastward from west, delta taken modulo 360
	AntimeridianNormalize
)

func (p AntimeridianPolicy) String() string {
	switch p {
	case AntimeridianNormalize:
		return "normalize"
	default:
		return "reject"
	}
}

// ParseAntimeridianPolicy maps a config value onto a policy
func ParseAntimeridianPolicy(s string) (AntimeridianPolicy, error) {
	switch s {
	case "", "reject":
		return AntimeridianReject, nil
	case "normalize":
		return AntimeridianNormalize, nil
	default:
		return AntimeridianReject, errors.New("antimeridian policy must be \"reject\" or \"normalize\"")
	}
}

// Options configures a Calculator
type Options struct {
	Antimeridian AntimeridianPolicy
}

// Calculator runs the area operations under a fixed set of options.
// The zero value rejects antimeridian-crossing boxes.
type Calculator struct {
	opts Options
}

// NewCalculator creates a calculator with the given options
func NewCalculator(opts Options) Calculator {
	return Calculator{opts: opts}
}

// Options returns the options the calculator was built with
func (c Calculator) Options() Options {
	return c.opts
}

var defaultCalculator = Calculator{}

// HaversineDistance returns the great-circle distance between two points in meters
func HaversineDistance(p1, p2 models.GeoPoint) (float64, error) {
	if err := ValidatePoint(p1); err != nil {
		return 0, err
	}
	if err := ValidatePoint(p2); err != nil {
		return 0, err
	}
	return haversine(p1.Lat, p1.Lon, p2.Lat, p2.Lon), nil
}

// BoundingBoxAreaSqKm approximates the box area with the default options
func BoundingBoxAreaSqKm(box models.BoundingBox) (float64, error) {
	return defaultCalculator.BoundingBoxAreaSqKm(box)
}

// AreaExceedsLimit is the admission gate: true only when area is strictly above the limit
func AreaExceedsLimit(areaSqKm, maxAreaSqKm float64) bool {
	return areaSqKm > maxAreaSqKm
}

// BoundingBoxAreaSqKm multiplies the south edge length by the west edge
// length. This is a rectangle-on-sphere approximation, good enough for a
// size guard but not for footprint area.
func (c Calculator) BoundingBoxAreaSqKm(box models.BoundingBox) (float64, error) {
	if err := ValidateBox(box, c.opts.Antimeridian); err != nil {
		return 0, err
	}

	delta := box.East - box.West
	if c.opts.Antimeridian == AntimeridianNormalize {
		delta = normalizeLonDelta(delta)
	}

	width := haversine(box.South, box.West, box.South, box.West+delta)
	height := haversine(box.South, box.West, box.North, box.West)

	area := width * height / sqMetersPerSqKm
	if math.IsNaN(area) || math.IsInf(area, 0) {
		return 0, &ComputationError{Op: "bounding box area", Err: ErrInvalidArea}
	}
	return area, nil
}

// normalizeLonDelta maps a longitude difference into [0, 360)
func normalizeLonDelta(delta float64) float64 {
	delta = math.Mod(delta, 360)
	if delta < 0 {
		delta += 360
	}
	return delta
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// a can drift a hair above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadius * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
